// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
)

// Account is the per-staker record.
// Snapshot is the reward-per-token value Owed was last brought up to.
type Account struct {
	Balance  *uint256.Int
	Snapshot *uint256.Int
	Owed     *uint256.Int
}

func (a *Account) normalize() *Account {
	if a.Balance == nil {
		a.Balance = new(uint256.Int)
	}
	if a.Snapshot == nil {
		a.Snapshot = new(uint256.Int)
	}
	if a.Owed == nil {
		a.Owed = new(uint256.Int)
	}
	return a
}

// earned returns Owed plus what Balance accrued between Snapshot and rpt.
func (a *Account) earned(rpt *uint256.Int) (*uint256.Int, error) {
	delta, underflow := new(uint256.Int).SubOverflow(rpt, a.Snapshot)
	if underflow {
		return nil, solidity.ErrUnderflow
	}
	accrued, overflow := new(uint256.Int).MulDivOverflow(a.Balance, delta, core.FactorU256())
	if overflow {
		return nil, solidity.ErrOverflow
	}
	if _, overflow := accrued.AddOverflow(accrued, a.Owed); overflow {
		return nil, solidity.ErrOverflow
	}
	return accrued, nil
}
