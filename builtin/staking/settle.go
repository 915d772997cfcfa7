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

// advance returns the reward-per-token value at now.
// Reward unlocked while nothing is staked is not distributed.
func (s *Staking) advance(acc *accumulator, now uint64) (*uint256.Int, error) {
	rpt := new(uint256.Int).Set(acc.RPT)
	if acc.TotalStakes.IsZero() {
		return rpt, nil
	}
	unlocked, err := s.planner.DeltaReward(acc.LastUpdate, now)
	if err != nil {
		return nil, err
	}
	if unlocked.IsZero() {
		return rpt, nil
	}
	inc, overflow := new(uint256.Int).MulDivOverflow(unlocked, core.FactorU256(), acc.TotalStakes)
	if overflow {
		return nil, solidity.ErrOverflow
	}
	if _, overflow := rpt.AddOverflow(rpt, inc); overflow {
		return nil, solidity.ErrOverflow
	}
	return rpt, nil
}

// settle moves the accumulator to the current block time and, if addr is
// given, folds the account's accrued reward into Owed.
// The account is returned updated but not yet saved.
func (s *Staking) settle(addr *core.Address) (*Account, error) {
	now := s.env.BlockTime()

	acc, err := s.storage.getAccumulator()
	if err != nil {
		return nil, err
	}
	rpt, err := s.advance(acc, now)
	if err != nil {
		return nil, err
	}
	s.storage.rpt.Set(rpt)
	if err := s.storage.lastUpdate.Set(now); err != nil {
		return nil, err
	}

	if addr == nil {
		return nil, nil
	}
	account, err := s.storage.getAccount(*addr)
	if err != nil {
		return nil, err
	}
	owed, err := account.earned(rpt)
	if err != nil {
		return nil, err
	}
	account.Owed = owed
	account.Snapshot = rpt
	return account, nil
}

// PendingReward returns the reward addr could claim at the current block time.
func (s *Staking) PendingReward(addr core.Address) (*uint256.Int, error) {
	acc, err := s.storage.getAccumulator()
	if err != nil {
		return nil, err
	}
	rpt, err := s.advance(acc, s.env.BlockTime())
	if err != nil {
		return nil, err
	}
	account, err := s.storage.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.earned(rpt)
}
