// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
)

// Authorizer answers role checks for a pool.
type Authorizer interface {
	HasRole(role core.Bytes32, account core.Address) (bool, error)
	SupportsInterface(id core.InterfaceID) (bool, error)
}

// Token is the subset of token methods a pool calls.
type Token interface {
	BalanceOf(owner core.Address) (*uint256.Int, error)
	Transfer(from, to core.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to core.Address, amount *uint256.Int) error
	Permit(owner, spender core.Address, value *uint256.Int, deadline uint64, sig []byte) error
}

// Binder resolves collaborators deployed at the given addresses.
type Binder interface {
	Authorizer(addr core.Address) Authorizer
	Token(addr core.Address) Token
}
