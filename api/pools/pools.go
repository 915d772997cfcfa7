// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/builtin/staking"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/xenv"
)

type Pools struct {
	ledger *ledger.Ledger
	clock  func() uint64
}

// New creates the pools api. Account views without an explicit time are
// evaluated at the time given by clock, or at the ledger head when clock is nil.
func New(ledger *ledger.Ledger, clock func() uint64) *Pools {
	return &Pools{ledger, clock}
}

func (p *Pools) now() uint64 {
	if p.clock == nil {
		return 0
	}
	return p.clock()
}

// loadPool binds the pool at addr, answering 404 when addr hosts no pool.
func loadPool(env *xenv.Environment, addr core.Address) (*staking.Staking, error) {
	code, err := env.State().GetCode(addr)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(code, staking.Code) {
		return nil, utils.NotFound(errors.New("pool not found"))
	}
	return builtin.Staking(addr, env), nil
}

func (p *Pools) handleGetPools(w http.ResponseWriter, req *http.Request) error {
	var addrs []core.Address
	if err := p.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		factory := builtin.Factory.Native(env)
		n, err := factory.ContractsCount()
		if err != nil {
			return err
		}
		addrs = make([]core.Address, 0, n)
		for i := range n {
			addr, err := factory.Contracts(i)
			if err != nil {
				return err
			}
			addrs = append(addrs, addr)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, addrs)
}

func (p *Pools) getPool(env *xenv.Environment, addr core.Address) (*Pool, error) {
	pool, err := loadPool(env, addr)
	if err != nil {
		return nil, err
	}
	cfg, err := pool.Config()
	if err != nil {
		return nil, err
	}
	version, err := pool.Version()
	if err != nil {
		return nil, err
	}
	totalStakes, err := pool.TotalStakes()
	if err != nil {
		return nil, err
	}
	lastUpdate, err := pool.LastUpdateTime()
	if err != nil {
		return nil, err
	}
	rpt, err := pool.SnapshotRewardPerToken()
	if err != nil {
		return nil, err
	}
	paid, err := pool.PaidAmount()
	if err != nil {
		return nil, err
	}
	total, err := pool.TotalRewardAmount()
	if err != nil {
		return nil, err
	}
	now := env.BlockContext().Time
	unlocked, err := pool.RewardAt(now)
	if err != nil {
		return nil, err
	}
	count, err := pool.IntervalsCount()
	if err != nil {
		return nil, err
	}
	paused, err := pool.PausedFunctions()
	if err != nil {
		return nil, err
	}
	return &Pool{
		Address:                addr,
		AccessRegistry:         cfg.AccessRegistry,
		StakeToken:             cfg.StakeToken,
		RewardToken:            cfg.RewardToken,
		Version:                version,
		TotalStakes:            utils.Amount(totalStakes),
		LastUpdateTime:         lastUpdate,
		SnapshotRewardPerToken: utils.Amount(rpt),
		PaidAmount:             utils.Amount(paid),
		TotalRewardAmount:      utils.Amount(total),
		UnlockedReward:         utils.Amount(unlocked),
		IntervalsCount:         count,
		Paused: Paused{
			Stake:   paused.PausedStake,
			Unstake: paused.PausedUnstake,
			Claim:   paused.PausedClaim,
		},
		Time: now,
	}, nil
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	var pool *Pool
	if err := p.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) (err error) {
		pool, err = p.getPool(env, addr)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, pool)
}

func (p *Pools) handleGetIntervals(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	var intervals []*Interval
	if err := p.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		pool, err := loadPool(env, addr)
		if err != nil {
			return err
		}
		n, err := pool.IntervalsCount()
		if err != nil {
			return err
		}
		intervals = make([]*Interval, 0, n)
		for i := range n {
			iv, err := pool.Intervals(i)
			if err != nil {
				return err
			}
			intervals = append(intervals, convertInterval(i, iv))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, intervals)
}

func (p *Pools) handleGetInterval(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	index, err := utils.ParseUint64Var(req, "index")
	if err != nil {
		return err
	}
	var interval *Interval
	if err := p.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		pool, err := loadPool(env, addr)
		if err != nil {
			return err
		}
		iv, err := pool.Intervals(index)
		if err != nil {
			if errors.Is(err, planner.ErrOutOfBound) {
				return utils.NotFound(err)
			}
			return err
		}
		interval = convertInterval(index, iv)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, interval)
}

func (p *Pools) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	at, err := utils.ParseUint64Query(req, "at", 0)
	if err != nil {
		return err
	}
	var reward *Reward
	if err := p.ledger.View(at, func(env *xenv.Environment, _ *ledger.Head) error {
		pool, err := loadPool(env, addr)
		if err != nil {
			return err
		}
		t := env.BlockContext().Time
		amount, err := pool.RewardAt(t)
		if err != nil {
			return err
		}
		reward = &Reward{Time: t, Amount: utils.Amount(amount)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, reward)
}

func (p *Pools) handleGetDelta(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	from, err := utils.ParseUint64Query(req, "from", 0)
	if err != nil {
		return err
	}
	to, err := utils.ParseUint64Query(req, "to", 0)
	if err != nil {
		return err
	}
	var delta *Delta
	if err := p.ledger.View(to, func(env *xenv.Environment, _ *ledger.Head) error {
		pool, err := loadPool(env, addr)
		if err != nil {
			return err
		}
		to := env.BlockContext().Time
		amount, err := pool.DeltaReward(from, to)
		if err != nil {
			return err
		}
		delta = &Delta{From: from, To: to, Amount: utils.Amount(amount)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, delta)
}

func (p *Pools) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "pool")
	if err != nil {
		return err
	}
	account, err := utils.ParseAddressVar(req, "account")
	if err != nil {
		return err
	}
	at, err := utils.ParseUint64Query(req, "at", 0)
	if err != nil {
		return err
	}
	var acc *Account
	if err := p.ledger.View(at, func(env *xenv.Environment, head *ledger.Head) error {
		if at == 0 {
			// pending reward is what a claim submitted now would pay
			if now := p.now(); now > env.BlockContext().Time {
				env.BlockContext().Time = now
			}
		}
		t := env.BlockContext().Time
		if t < head.Time {
			return utils.BadRequest(errors.New("at: before ledger head"))
		}
		pool, err := loadPool(env, addr)
		if err != nil {
			return err
		}
		stored, err := pool.Account(account)
		if err != nil {
			return err
		}
		pending, err := pool.PendingReward(account)
		if err != nil {
			return err
		}
		acc = &Account{
			Address:       account,
			Balance:       utils.Amount(stored.Balance),
			Snapshot:      utils.Amount(stored.Snapshot),
			Owed:          utils.Amount(stored.Owed),
			PendingReward: utils.Amount(pending),
			Time:          t,
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{pool}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pool}/intervals").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/intervals").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetIntervals))
	sub.Path("/{pool}/intervals/{index}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/intervals/{index}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetInterval))
	sub.Path("/{pool}/reward").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/reward").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetReward))
	sub.Path("/{pool}/delta").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/delta").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetDelta))
	sub.Path("/{pool}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
}
