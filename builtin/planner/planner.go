// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package planner

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
)

var (
	ErrInvalidArg     = reverts.NewRequireError("StakingPlanner: INVALID_ARG")
	ErrInvalidStart   = reverts.NewRequireError("StakingPlanner: INVALID_START")
	ErrAlreadyStarted = reverts.NewRequireError("StakingPlanner: ALREADY_STARTED")
	ErrOutOfBound     = reverts.NewRequireError("StakingPlanner: OUT_OF_BOUND")
)

var slotIntervals = core.BytesToBytes32([]byte("planner-intervals"))

// Interval releases Amount linearly over [Start, End).
// PrevSum is the total amount of all preceding intervals.
type Interval struct {
	PrevSum *uint256.Int
	Amount  *uint256.Int
	Start   uint64
	End     uint64
}

// Total returns the cumulative amount released once the interval ends.
func (i *Interval) Total() *uint256.Int {
	return new(uint256.Int).Add(i.PrevSum, i.Amount)
}

// Params describes an interval to append.
type Params struct {
	Amount *uint256.Int
	Start  uint64
	End    uint64
}

// Planner keeps an ordered, non-overlapping list of reward release intervals
// and answers how much reward has unlocked at a given time.
type Planner struct {
	intervals *solidity.Array[*Interval]
}

func New(sctx *solidity.Context) *Planner {
	return &Planner{
		intervals: solidity.NewArray[*Interval](sctx, slotIntervals),
	}
}

// Count returns the number of intervals.
func (p *Planner) Count() (uint64, error) {
	return p.intervals.Len()
}

// IntervalAt returns the interval at index i.
func (p *Planner) IntervalAt(i uint64) (*Interval, error) {
	n, err := p.intervals.Len()
	if err != nil {
		return nil, err
	}
	if i >= n {
		return nil, ErrOutOfBound
	}
	return p.get(i)
}

func (p *Planner) get(i uint64) (*Interval, error) {
	iv, err := p.intervals.Get(i)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get interval")
	}
	return iv, nil
}

func (p *Planner) last() (*Interval, error) {
	n, err := p.intervals.Len()
	if err != nil || n == 0 {
		return nil, err
	}
	return p.get(n - 1)
}

// TotalRewardAmount returns the sum of all interval amounts.
func (p *Planner) TotalRewardAmount() (*uint256.Int, error) {
	last, err := p.last()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return new(uint256.Int), nil
	}
	return last.Total(), nil
}

// Append validates and appends intervals in order. Each interval must start
// in the future, after the end of its predecessor.
// It returns the stored intervals and the sum of their amounts.
func (p *Planner) Append(now uint64, list []*Params) ([]*Interval, *uint256.Int, error) {
	last, err := p.last()
	if err != nil {
		return nil, nil, err
	}

	lastEnd := now
	prevSum := new(uint256.Int)
	if last != nil {
		lastEnd = max(lastEnd, last.End)
		prevSum = last.Total()
	}

	var (
		added = make([]*Interval, 0, len(list))
		sum   = new(uint256.Int)
	)
	for _, params := range list {
		if params.Start >= params.End {
			return nil, nil, ErrInvalidArg
		}
		if params.Start <= now || params.Start < lastEnd {
			return nil, nil, ErrInvalidStart
		}
		amount := new(uint256.Int)
		if params.Amount != nil {
			amount.Set(params.Amount)
		}
		added = append(added, &Interval{
			PrevSum: new(uint256.Int).Set(prevSum),
			Amount:  amount,
			Start:   params.Start,
			End:     params.End,
		})
		if _, overflow := prevSum.AddOverflow(prevSum, amount); overflow {
			return nil, nil, solidity.ErrOverflow
		}
		sum.Add(sum, amount)
		lastEnd = params.End
	}

	for _, iv := range added {
		if err := p.intervals.Push(iv); err != nil {
			return nil, nil, errors.Wrap(err, "failed to append interval")
		}
	}
	return added, sum, nil
}

// Remove truncates the list from index from. The interval at from must not
// have started yet. It returns the count of removed intervals and the sum of
// their amounts.
func (p *Planner) Remove(now uint64, from uint64) (uint64, *uint256.Int, error) {
	n, err := p.intervals.Len()
	if err != nil {
		return 0, nil, err
	}
	if from >= n {
		return 0, nil, ErrOutOfBound
	}
	first, err := p.get(from)
	if err != nil {
		return 0, nil, err
	}
	if first.Start <= now {
		return 0, nil, ErrAlreadyStarted
	}
	total, err := p.TotalRewardAmount()
	if err != nil {
		return 0, nil, err
	}
	if err := p.intervals.Truncate(from); err != nil {
		return 0, nil, errors.Wrap(err, "failed to remove intervals")
	}
	return n - from, total.Sub(total, first.PrevSum), nil
}

// Find returns the index of the interval that governs time t: the first one
// not yet ended at t, or the last one when all have ended.
// ok is false if there are no intervals.
func (p *Planner) Find(t uint64) (index uint64, iv *Interval, ok bool, err error) {
	n, err := p.intervals.Len()
	if err != nil || n == 0 {
		return 0, nil, false, err
	}

	var searchErr error
	i := sort.Search(int(n), func(i int) bool {
		if searchErr != nil {
			return true
		}
		cur, err := p.get(uint64(i))
		if err != nil {
			searchErr = err
			return true
		}
		return cur.End >= t
	})
	if searchErr != nil {
		return 0, nil, false, searchErr
	}
	index = min(uint64(i), n-1)
	iv, err = p.get(index)
	if err != nil {
		return 0, nil, false, err
	}
	return index, iv, true, nil
}

// RewardAt returns the cumulative reward unlocked at time t.
func (p *Planner) RewardAt(t uint64) (*uint256.Int, error) {
	_, iv, ok, err := p.Find(t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(uint256.Int), nil
	}
	released := BoxedLinear(iv.Start, iv.End, iv.Amount, t)
	return released.Add(released, iv.PrevSum), nil
}

// DeltaReward returns the reward unlocked within (t0, t1].
// It is zero when t1 does not come after t0.
func (p *Planner) DeltaReward(t0, t1 uint64) (*uint256.Int, error) {
	if t1 <= t0 {
		return new(uint256.Int), nil
	}
	r0, err := p.RewardAt(t0)
	if err != nil {
		return nil, err
	}
	r1, err := p.RewardAt(t1)
	if err != nil {
		return nil, err
	}
	if r1.Lt(r0) {
		return new(uint256.Int), nil
	}
	return r1.Sub(r1, r0), nil
}

// BoxedLinear is the function that is 0 up to start, rises linearly to
// amount at end, and stays at amount afterwards. Division rounds down.
func BoxedLinear(start, end uint64, amount *uint256.Int, t uint64) *uint256.Int {
	switch {
	case t <= start:
		return new(uint256.Int)
	case t >= end:
		return new(uint256.Int).Set(amount)
	}
	// amount*(t-start) may need 512 bits, the quotient never exceeds amount
	v, _ := new(uint256.Int).MulDivOverflow(
		amount,
		uint256.NewInt(t-start),
		uint256.NewInt(end-start),
	)
	return v
}
