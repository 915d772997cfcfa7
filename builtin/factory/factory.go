// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/builtin/staking"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "factory")

// Code marks an address as hosting a pool factory.
var Code = []byte("staking-factory")

var (
	ErrForbidden          = reverts.NewRequireError("Factory: FORBIDDEN")
	ErrOutOfBound         = reverts.NewRequireError("Factory: OUT_OF_BOUND")
	ErrAlreadyInitialized = reverts.NewRequireError("Factory: ALREADY_INITIALIZED")
)

var (
	slotRegistry  = core.BytesToBytes32([]byte("factory-registry"))
	slotContracts = core.BytesToBytes32([]byte("factory-contracts"))
)

// Factory deploys staking pools and keeps the list of them.
type Factory struct {
	addr      core.Address
	env       *xenv.Environment
	binder    staking.Binder
	registry  *solidity.Value[core.Address]
	contracts *solidity.Array[core.Address]
}

// New create a new instance.
func New(addr core.Address, env *xenv.Environment, binder staking.Binder) *Factory {
	sctx := solidity.NewContext(addr, env.State())
	return &Factory{
		addr:      addr,
		env:       env,
		binder:    binder,
		registry:  solidity.NewValue[core.Address](sctx, slotRegistry),
		contracts: solidity.NewArray[core.Address](sctx, slotContracts),
	}
}

// Initialize sets the registry that authorizes deployments.
func (f *Factory) Initialize(registry core.Address) error {
	cur, err := f.registry.Get()
	if err != nil {
		return err
	}
	if !cur.IsZero() {
		return ErrAlreadyInitialized
	}
	return f.registry.Set(registry)
}

// Registry returns the access registry of the factory.
func (f *Factory) Registry() (core.Address, error) {
	return f.registry.Get()
}

// Deploy creates and initializes a new pool. A zero registry in cfg is
// replaced by the factory's own.
func (f *Factory) Deploy(caller core.Address, cfg staking.Config) (core.Address, error) {
	registry, err := f.registry.Get()
	if err != nil {
		return core.Address{}, err
	}
	ok, err := f.binder.Authorizer(registry).HasRole(core.RoleDefaultAdmin, caller)
	if err != nil {
		return core.Address{}, err
	}
	if !ok {
		return core.Address{}, ErrForbidden
	}
	if cfg.AccessRegistry.IsZero() {
		cfg.AccessRegistry = registry
	}

	count, err := f.contracts.Len()
	if err != nil {
		return core.Address{}, err
	}
	pool := core.CreateContractAddress(f.addr, count)
	if err := f.env.State().SetCode(pool, staking.Code); err != nil {
		return core.Address{}, errors.Wrap(err, "failed to set pool code")
	}
	if err := staking.New(pool, f.env, f.binder).Initialize(cfg); err != nil {
		return core.Address{}, err
	}
	if err := f.contracts.Push(pool); err != nil {
		return core.Address{}, errors.Wrap(err, "failed to record pool")
	}

	logger.Info("pool deployed", "pool", pool, "stake", cfg.StakeToken, "reward", cfg.RewardToken)
	f.env.Log(tx.NewEvent(f.addr, "Deployed").WithTopics(pool))
	return pool, nil
}

// ContractsCount returns the number of deployed pools.
func (f *Factory) ContractsCount() (uint64, error) {
	return f.contracts.Len()
}

// Contracts returns the pool deployed at index i.
func (f *Factory) Contracts(i uint64) (core.Address, error) {
	n, err := f.contracts.Len()
	if err != nil {
		return core.Address{}, err
	}
	if i >= n {
		return core.Address{}, ErrOutOfBound
	}
	return f.contracts.Get(i)
}
