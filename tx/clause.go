// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewardpool/core"
)

type clauseBody struct {
	To     core.Address
	Method string
	Args   []byte
}

// Clause is the basic execution unit of a transaction.
// It calls Method of the built-in contract at To, with rlp encoded Args.
type Clause struct {
	body clauseBody
}

// NewClause create a new clause instance.
func NewClause(to core.Address, method string) *Clause {
	return &Clause{clauseBody{To: to, Method: method}}
}

// WithArgs create a new clause copy with args rlp encoded.
func (c *Clause) WithArgs(args ...any) (*Clause, error) {
	data, err := rlp.EncodeToBytes(args)
	if err != nil {
		return nil, err
	}
	newClause := *c
	newClause.body.Args = data
	return &newClause, nil
}

// MustWithArgs like WithArgs but panics on encoding error.
func (c *Clause) MustWithArgs(args ...any) *Clause {
	clause, err := c.WithArgs(args...)
	if err != nil {
		panic(err)
	}
	return clause
}

// To returns the target contract.
func (c *Clause) To() core.Address {
	return c.body.To
}

// Method returns the method name.
func (c *Clause) Method() string {
	return c.body.Method
}

// Args returns the rlp encoded argument list.
func (c *Clause) Args() []byte {
	return append([]byte(nil), c.body.Args...)
}

// DecodeArgs decodes the argument list into val, which should be a pointer to a struct.
func (c *Clause) DecodeArgs(val any) error {
	return rlp.DecodeBytes(c.body.Args, val)
}

// EncodeRLP implements rlp.Encoder
func (c *Clause) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder
func (c *Clause) DecodeRLP(s *rlp.Stream) error {
	var body clauseBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*c = Clause{body}
	return nil
}

func (c *Clause) String() string {
	return fmt.Sprintf(`
		(To:	%v
		 Method:	%v
		 Args:	0x%x)`, c.body.To, c.body.Method, c.body.Args)
}
