// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
)

var errMockBalance = errors.New("mock: not enough balance")

type mockToken struct {
	balances map[core.Address]*uint256.Int
	permits  int
	fail     error
}

func newMockToken() *mockToken {
	return &mockToken{balances: make(map[core.Address]*uint256.Int)}
}

func (m *mockToken) mint(to core.Address, amount *uint256.Int) {
	bal, _ := m.BalanceOf(to)
	m.balances[to] = bal.Add(bal, amount)
}

func (m *mockToken) BalanceOf(owner core.Address) (*uint256.Int, error) {
	if bal, ok := m.balances[owner]; ok {
		return new(uint256.Int).Set(bal), nil
	}
	return new(uint256.Int), nil
}

func (m *mockToken) Transfer(from, to core.Address, amount *uint256.Int) error {
	if m.fail != nil {
		return m.fail
	}
	bal, _ := m.BalanceOf(from)
	if bal.Lt(amount) {
		return errMockBalance
	}
	m.balances[from] = bal.Sub(bal, amount)
	m.mint(to, amount)
	return nil
}

func (m *mockToken) TransferFrom(_, from, to core.Address, amount *uint256.Int) error {
	return m.Transfer(from, to, amount)
}

func (m *mockToken) Permit(_, _ core.Address, _ *uint256.Int, _ uint64, _ []byte) error {
	m.permits++
	return nil
}

type mockAuthorizer struct {
	roles       map[core.Bytes32]map[core.Address]bool
	unsupported bool
}

func (m *mockAuthorizer) grant(role core.Bytes32, account core.Address) {
	if m.roles[role] == nil {
		m.roles[role] = make(map[core.Address]bool)
	}
	m.roles[role][account] = true
}

func (m *mockAuthorizer) HasRole(role core.Bytes32, account core.Address) (bool, error) {
	return m.roles[role][account], nil
}

func (m *mockAuthorizer) SupportsInterface(id core.InterfaceID) (bool, error) {
	return !m.unsupported && (id == core.IAccessControl || id == core.IERC165), nil
}

type mockBinder struct {
	authorizer *mockAuthorizer
	tokens     map[core.Address]*mockToken
}

func (m *mockBinder) Authorizer(core.Address) Authorizer {
	return m.authorizer
}

func (m *mockBinder) Token(addr core.Address) Token {
	return m.tokens[addr]
}
