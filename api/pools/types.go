// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/core"
)

type Paused struct {
	Stake   bool `json:"stake"`
	Unstake bool `json:"unstake"`
	Claim   bool `json:"claim"`
}

// Pool is the state of a reward pool at the ledger head.
type Pool struct {
	Address                core.Address          `json:"address"`
	AccessRegistry         core.Address          `json:"accessRegistry"`
	StakeToken             core.Address          `json:"stakeToken"`
	RewardToken            core.Address          `json:"rewardToken"`
	Version                uint64                `json:"version"`
	TotalStakes            *math.HexOrDecimal256 `json:"totalStakes"`
	LastUpdateTime         uint64                `json:"lastUpdateTime"`
	SnapshotRewardPerToken *math.HexOrDecimal256 `json:"snapshotRewardPerToken"`
	PaidAmount             *math.HexOrDecimal256 `json:"paidAmount"`
	TotalRewardAmount      *math.HexOrDecimal256 `json:"totalRewardAmount"`
	UnlockedReward         *math.HexOrDecimal256 `json:"unlockedReward"`
	IntervalsCount         uint64                `json:"intervalsCount"`
	Paused                 Paused                `json:"paused"`
	Time                   uint64                `json:"time"`
}

type Interval struct {
	Index   uint64                `json:"index"`
	PrevSum *math.HexOrDecimal256 `json:"prevSum"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Start   uint64                `json:"start"`
	End     uint64                `json:"end"`
}

func convertInterval(index uint64, iv *planner.Interval) *Interval {
	return &Interval{
		Index:   index,
		PrevSum: utils.Amount(iv.PrevSum),
		Amount:  utils.Amount(iv.Amount),
		Start:   iv.Start,
		End:     iv.End,
	}
}

// Reward is the cumulative reward released by a pool at Time.
type Reward struct {
	Time   uint64                `json:"time"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Delta is the reward released between From and To.
type Delta struct {
	From   uint64                `json:"from"`
	To     uint64                `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Account is the stake record of an account, with its reward settled at Time.
type Account struct {
	Address       core.Address          `json:"address"`
	Balance       *math.HexOrDecimal256 `json:"balance"`
	Snapshot      *math.HexOrDecimal256 `json:"snapshot"`
	Owed          *math.HexOrDecimal256 `json:"owed"`
	PendingReward *math.HexOrDecimal256 `json:"pendingReward"`
	Time          uint64                `json:"time"`
}
