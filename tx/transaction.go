// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewardpool/core"
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Value
		origin      atomic.Value
		id          atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	ChainTag  byte
	Nonce     uint64
	Clauses   []*Clause
	Signature []byte
}

// ChainTag returns chain tag.
func (t *Transaction) ChainTag() byte {
	return t.body.ChainTag
}

// Nonce returns nonce value.
// It must equal the previous nonce of the origin plus one.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Clauses returns clauses in tx.
func (t *Transaction) Clauses() []*Clause {
	return append([]*Clause(nil), t.body.Clauses...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash core.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return cached.(core.Bytes32)
	}
	defer func() { t.cache.signingHash.Store(hash) }()

	return core.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			t.body.ChainTag,
			t.body.Nonce,
			t.body.Clauses,
		})
	})
}

// Origin extract address of tx originator from signature.
func (t *Transaction) Origin() (core.Address, error) {
	if cached := t.cache.origin.Load(); cached != nil {
		return cached.(core.Address), nil
	}
	if len(t.body.Signature) != 65 {
		return core.Address{}, secp256k1.ErrInvalidSignatureLen
	}

	pub, err := crypto.SigToPub(t.SigningHash().Bytes(), t.body.Signature)
	if err != nil {
		return core.Address{}, err
	}
	origin := core.Address(crypto.PubkeyToAddress(*pub))
	t.cache.origin.Store(origin)
	return origin, nil
}

// ID returns id of tx.
// ID = hash(signingHash, origin).
// It returns zero Bytes32 if origin not available.
func (t *Transaction) ID() (id core.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(core.Bytes32)
	}
	defer func() { t.cache.id.Store(id) }()

	origin, err := t.Origin()
	if err != nil {
		return
	}
	return core.Blake2b(t.SigningHash().Bytes(), origin.Bytes())
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{body: t.body}
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

// Decode parses raw bytes into a tx, rejecting trailing data.
func Decode(raw []byte) (*Transaction, error) {
	var t Transaction
	if err := rlp.DecodeBytes(raw, &t); err != nil {
		return nil, err
	}
	if len(t.body.Clauses) == 0 {
		return nil, errors.New("no clauses")
	}
	return &t, nil
}

func (t *Transaction) String() string {
	var (
		originStr = "N/A"
		id        core.Bytes32
	)
	if origin, err := t.Origin(); err == nil {
		originStr = origin.String()
		id = t.ID()
	}

	return fmt.Sprintf(`
	Tx(%v)
	From:		%v
	Clauses:	%v
	ChainTag:	%v
	Nonce:		%v
	Signature:	0x%x
`, id, originStr, t.body.Clauses, t.body.ChainTag, t.body.Nonce, t.body.Signature)
}
