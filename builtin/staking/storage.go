// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
)

func nameToSlot(name string) core.Bytes32 {
	return core.BytesToBytes32([]byte(name))
}

var (
	slotInitialized  = nameToSlot("staking-initialized")
	slotConfig       = nameToSlot("staking-config")
	slotTotalStakes  = nameToSlot("staking-total-stakes")
	slotLastUpdate   = nameToSlot("staking-last-update")
	slotRewardPerTkn = nameToSlot("staking-reward-per-token")
	slotPaidAmount   = nameToSlot("staking-paid-amount")
	slotPaused       = nameToSlot("staking-paused-functions")
	slotAccounts     = nameToSlot("staking-accounts")
	slotVersion      = nameToSlot("staking-version")
)

// Config binds a pool to its collaborators.
type Config struct {
	AccessRegistry core.Address
	StakeToken     core.Address
	RewardToken    core.Address
}

// storage groups the typed slots of a pool.
type storage struct {
	initialized *solidity.Value[bool]
	config      *solidity.Value[Config]
	totalStakes *solidity.Uint256
	lastUpdate  *solidity.Value[uint64]
	rpt         *solidity.Uint256
	paid        *solidity.Uint256
	paused      *solidity.Value[PausedFunctions]
	accounts    *solidity.Mapping[core.Address, *Account]
	version     *solidity.Value[uint64]
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		initialized: solidity.NewValue[bool](sctx, slotInitialized),
		config:      solidity.NewValue[Config](sctx, slotConfig),
		totalStakes: solidity.NewUint256(sctx, slotTotalStakes),
		lastUpdate:  solidity.NewValue[uint64](sctx, slotLastUpdate),
		rpt:         solidity.NewUint256(sctx, slotRewardPerTkn),
		paid:        solidity.NewUint256(sctx, slotPaidAmount),
		paused:      solidity.NewValue[PausedFunctions](sctx, slotPaused),
		accounts:    solidity.NewMapping[core.Address, *Account](sctx, slotAccounts),
		version:     solidity.NewValue[uint64](sctx, slotVersion),
	}
}

func (s *storage) getAccount(addr core.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	return acc.normalize(), nil
}

func (s *storage) setAccount(addr core.Address, acc *Account) error {
	if err := s.accounts.Set(addr, acc); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

// accumulator is the global reward state settled on every mutation.
type accumulator struct {
	TotalStakes *uint256.Int
	LastUpdate  uint64
	RPT         *uint256.Int
}

func (s *storage) getAccumulator() (*accumulator, error) {
	total, err := s.totalStakes.Get()
	if err != nil {
		return nil, err
	}
	last, err := s.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	rpt, err := s.rpt.Get()
	if err != nil {
		return nil, err
	}
	return &accumulator{TotalStakes: total, LastUpdate: last, RPT: rpt}, nil
}
