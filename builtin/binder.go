// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"bytes"

	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin/access"
	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/staking"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/xenv"
)

// ErrNotToken is returned when a pool calls an address that hosts no token.
var ErrNotToken = reverts.NewRequireError("Builtin: NOT_A_TOKEN")

// Binder resolves pool collaborators by the code deployed at their address.
// Collaborators share env, so their events land in the calling clause.
type Binder struct {
	env *xenv.Environment
}

var _ staking.Binder = (*Binder)(nil)

// NewBinder create a new binder.
func NewBinder(env *xenv.Environment) *Binder {
	return &Binder{env}
}

func (b *Binder) hasCode(addr core.Address, code []byte) (bool, error) {
	cur, err := b.env.State().GetCode(addr)
	if err != nil {
		return false, err
	}
	return bytes.Equal(cur, code), nil
}

// Authorizer returns the access registry at addr. Addresses hosting anything
// else report no role and no interface.
func (b *Binder) Authorizer(addr core.Address) staking.Authorizer {
	return &authorizer{addr: addr, binder: b}
}

// Token returns the token at addr. Calls revert with ErrNotToken if addr hosts no token.
func (b *Binder) Token(addr core.Address) staking.Token {
	return &tokenRef{addr: addr, binder: b}
}

type authorizer struct {
	addr   core.Address
	binder *Binder
}

func (a *authorizer) resolve() (*access.Access, error) {
	ok, err := a.binder.hasCode(a.addr, access.Code)
	if err != nil || !ok {
		return nil, err
	}
	return access.New(a.addr, a.binder.env), nil
}

func (a *authorizer) HasRole(role core.Bytes32, account core.Address) (bool, error) {
	reg, err := a.resolve()
	if err != nil || reg == nil {
		return false, err
	}
	return reg.HasRole(role, account)
}

func (a *authorizer) SupportsInterface(id core.InterfaceID) (bool, error) {
	reg, err := a.resolve()
	if err != nil || reg == nil {
		return false, err
	}
	return reg.SupportsInterface(id), nil
}

type tokenRef struct {
	addr   core.Address
	binder *Binder
}

func (t *tokenRef) resolve() (*token.Token, error) {
	ok, err := t.binder.hasCode(t.addr, token.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotToken
	}
	return token.New(t.addr, t.binder.env), nil
}

func (t *tokenRef) BalanceOf(owner core.Address) (*uint256.Int, error) {
	tok, err := t.resolve()
	if err != nil {
		return nil, err
	}
	return tok.BalanceOf(owner)
}

func (t *tokenRef) Transfer(from, to core.Address, amount *uint256.Int) error {
	tok, err := t.resolve()
	if err != nil {
		return err
	}
	return tok.Transfer(from, to, amount)
}

func (t *tokenRef) TransferFrom(spender, from, to core.Address, amount *uint256.Int) error {
	tok, err := t.resolve()
	if err != nil {
		return err
	}
	return tok.TransferFrom(spender, from, to, amount)
}

func (t *tokenRef) Permit(owner, spender core.Address, value *uint256.Int, deadline uint64, sig []byte) error {
	tok, err := t.resolve()
	if err != nil {
		return err
	}
	return tok.Permit(owner, spender, value, deadline, sig)
}
