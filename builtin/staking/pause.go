// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
)

// PausedFunctions holds the three independent pause switches.
type PausedFunctions struct {
	PausedStake   bool
	PausedUnstake bool
	PausedClaim   bool
}

type method int

const (
	methodStake method = iota
	methodUnstake
	methodClaim
)

func (p PausedFunctions) paused(m method) bool {
	switch m {
	case methodStake:
		return p.PausedStake
	case methodUnstake:
		return p.PausedUnstake
	case methodClaim:
		return p.PausedClaim
	}
	return false
}

func flag(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return new(uint256.Int)
}

// PausedFunctions returns the current pause switches.
func (s *Staking) PausedFunctions() (PausedFunctions, error) {
	return s.storage.paused.Get()
}

// SetPausedFunctions replaces all pause switches. Caller must hold the default admin role.
func (s *Staking) SetPausedFunctions(caller core.Address, flags PausedFunctions) error {
	if err := s.requireRole(core.RoleDefaultAdmin, caller); err != nil {
		return err
	}
	if err := s.storage.paused.Set(flags); err != nil {
		return err
	}
	logger.Debug("paused functions updated", "pool", s.addr, "stake", flags.PausedStake, "unstake", flags.PausedUnstake, "claim", flags.PausedClaim)
	s.env.Log(tx.NewEvent(s.addr, "SetPausedFunctions").
		WithValues(flag(flags.PausedStake), flag(flags.PausedUnstake), flag(flags.PausedClaim)))
	return nil
}

func (s *Staking) whenNotPaused(m method) error {
	flags, err := s.storage.paused.Get()
	if err != nil {
		return err
	}
	if flags.paused(m) {
		return ErrMethodPaused
	}
	return nil
}
