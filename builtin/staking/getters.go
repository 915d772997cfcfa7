// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/core"
)

//
// Getters - no state change
//

func (s *Staking) Factor() *uint256.Int {
	return core.FactorU256()
}

func (s *Staking) Config() (Config, error) {
	return s.storage.config.Get()
}

func (s *Staking) Initialized() (bool, error) {
	return s.storage.initialized.Get()
}

func (s *Staking) TotalStakes() (*uint256.Int, error) {
	return s.storage.totalStakes.Get()
}

func (s *Staking) LastUpdateTime() (uint64, error) {
	return s.storage.lastUpdate.Get()
}

func (s *Staking) SnapshotRewardPerToken() (*uint256.Int, error) {
	return s.storage.rpt.Get()
}

func (s *Staking) PaidAmount() (*uint256.Int, error) {
	return s.storage.paid.Get()
}

func (s *Staking) Version() (uint64, error) {
	return s.storage.version.Get()
}

// Account returns the stored record of addr, without settlement.
func (s *Staking) Account(addr core.Address) (*Account, error) {
	return s.storage.getAccount(addr)
}

func (s *Staking) TotalRewardAmount() (*uint256.Int, error) {
	return s.planner.TotalRewardAmount()
}

func (s *Staking) IntervalsCount() (uint64, error) {
	return s.planner.Count()
}

func (s *Staking) Intervals(i uint64) (*planner.Interval, error) {
	return s.planner.IntervalAt(i)
}

// FindInterval returns the index of the interval governing time t.
func (s *Staking) FindInterval(t uint64) (uint64, bool, error) {
	index, _, ok, err := s.planner.Find(t)
	return index, ok, err
}

func (s *Staking) RewardAt(t uint64) (*uint256.Int, error) {
	return s.planner.RewardAt(t)
}

func (s *Staking) DeltaReward(t0, t1 uint64) (*uint256.Int, error) {
	return s.planner.DeltaReward(t0, t1)
}
