// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "staking")

// Code marks an address as hosting a staking pool.
var Code = []byte("staking-v1")

var (
	ErrZeroAmount           = reverts.NewRequireError("Staking: ZERO_AMOUNT")
	ErrInvalidAmount        = reverts.NewRequireError("Staking: INVALID_AMOUNT")
	ErrNothingToClaim       = reverts.NewRequireError("Staking: NOTHING_TO_CLAIM")
	ErrMethodPaused         = reverts.NewRequireError("Staking: METHOD_PAUSED")
	ErrForbidden            = reverts.NewRequireError("Staking: FORBIDDEN")
	ErrAlreadyInitialized   = reverts.NewRequireError("Staking: ALREADY_INITIALIZED")
	ErrUnsupportedInterface = reverts.NewRequireError("Staking: UNSUPPORTED_INTERFACE")
)

// Staking implements native methods of a reward pool. Stakers deposit the
// stake token and earn the reward token, released by the planner's schedule
// and shared pro rata to stake.
type Staking struct {
	addr    core.Address
	env     *xenv.Environment
	binder  Binder
	storage *storage
	planner *planner.Planner
}

// New create a new instance.
func New(addr core.Address, env *xenv.Environment, binder Binder) *Staking {
	sctx := solidity.NewContext(addr, env.State())
	return &Staking{
		addr:    addr,
		env:     env,
		binder:  binder,
		storage: newStorage(sctx),
		planner: planner.New(sctx),
	}
}

// Address returns the pool address.
func (s *Staking) Address() core.Address {
	return s.addr
}

// Initialize binds the pool to its registry and tokens, once.
func (s *Staking) Initialize(cfg Config) error {
	initialized, err := s.storage.initialized.Get()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}
	ok, err := s.binder.Authorizer(cfg.AccessRegistry).SupportsInterface(core.IAccessControl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnsupportedInterface
	}
	if err := s.storage.initialized.Set(true); err != nil {
		return err
	}
	if err := s.storage.config.Set(cfg); err != nil {
		return err
	}
	if err := s.storage.version.Set(1); err != nil {
		return err
	}
	return s.storage.lastUpdate.Set(s.env.BlockTime())
}

func (s *Staking) requireRole(role core.Bytes32, caller core.Address) error {
	cfg, err := s.storage.config.Get()
	if err != nil {
		return err
	}
	ok, err := s.binder.Authorizer(cfg.AccessRegistry).HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Staking) tokens() (stake Token, reward Token, err error) {
	cfg, err := s.storage.config.Get()
	if err != nil {
		return nil, nil, err
	}
	return s.binder.Token(cfg.StakeToken), s.binder.Token(cfg.RewardToken), nil
}

// Stake deposits amount of stake token from caller.
func (s *Staking) Stake(caller core.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if err := s.whenNotPaused(methodStake); err != nil {
		return err
	}
	account, err := s.settle(&caller)
	if err != nil {
		return err
	}
	if _, overflow := account.Balance.AddOverflow(account.Balance, amount); overflow {
		return solidity.ErrOverflow
	}
	if err := s.storage.totalStakes.Add(amount); err != nil {
		return err
	}
	if err := s.storage.setAccount(caller, account); err != nil {
		return err
	}

	stakeToken, _, err := s.tokens()
	if err != nil {
		return err
	}
	if err := stakeToken.TransferFrom(s.addr, caller, s.addr, amount); err != nil {
		return err
	}

	logger.Debug("staked", "pool", s.addr, "account", caller, "amount", amount)
	s.env.Log(tx.NewEvent(s.addr, "Stake").WithTopics(caller).WithValues(amount))
	return nil
}

// StakeWithPermit consumes a stake token permit signed by caller for this
// pool, then stakes amount.
func (s *Staking) StakeWithPermit(caller core.Address, amount *uint256.Int, deadline uint64, sig []byte) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	stakeToken, _, err := s.tokens()
	if err != nil {
		return err
	}
	if err := stakeToken.Permit(caller, s.addr, amount, deadline, sig); err != nil {
		return err
	}
	return s.Stake(caller, amount)
}

// Unstake withdraws amount of stake and pays out any owed reward.
func (s *Staking) Unstake(caller core.Address, amount *uint256.Int) error {
	if err := s.whenNotPaused(methodUnstake); err != nil {
		return err
	}
	account, err := s.settle(&caller)
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() || amount.Gt(account.Balance) {
		return ErrInvalidAmount
	}
	account.Balance.Sub(account.Balance, amount)
	if err := s.storage.totalStakes.Sub(amount); err != nil {
		return err
	}
	owed := account.Owed
	if !owed.IsZero() {
		if err := s.storage.paid.Add(owed); err != nil {
			return err
		}
		account.Owed = new(uint256.Int)
	}
	if err := s.storage.setAccount(caller, account); err != nil {
		return err
	}

	stakeToken, rewardToken, err := s.tokens()
	if err != nil {
		return err
	}
	if err := stakeToken.Transfer(s.addr, caller, amount); err != nil {
		return err
	}
	logger.Debug("unstaked", "pool", s.addr, "account", caller, "amount", amount)
	s.env.Log(tx.NewEvent(s.addr, "Unstake").WithTopics(caller).WithValues(amount))

	if !owed.IsZero() {
		if err := rewardToken.Transfer(s.addr, caller, owed); err != nil {
			return err
		}
		s.env.Log(tx.NewEvent(s.addr, "Claim").WithTopics(caller).WithValues(owed))
	}
	return nil
}

// Claim pays out the reward owed to caller.
func (s *Staking) Claim(caller core.Address) (*uint256.Int, error) {
	if err := s.whenNotPaused(methodClaim); err != nil {
		return nil, err
	}
	account, err := s.settle(&caller)
	if err != nil {
		return nil, err
	}
	owed := account.Owed
	if owed.IsZero() {
		return nil, ErrNothingToClaim
	}
	account.Owed = new(uint256.Int)
	if err := s.storage.paid.Add(owed); err != nil {
		return nil, err
	}
	if err := s.storage.setAccount(caller, account); err != nil {
		return nil, err
	}

	_, rewardToken, err := s.tokens()
	if err != nil {
		return nil, err
	}
	if err := rewardToken.Transfer(s.addr, caller, owed); err != nil {
		return nil, err
	}
	logger.Debug("claimed", "pool", s.addr, "account", caller, "amount", owed)
	s.env.Log(tx.NewEvent(s.addr, "Claim").WithTopics(caller).WithValues(owed))
	return owed, nil
}

// AppendIntervals schedules more reward, pulling its amount from caller.
// Caller must hold the staking admin role.
func (s *Staking) AppendIntervals(caller core.Address, list []*planner.Params) ([]*planner.Interval, error) {
	if err := s.requireRole(core.RoleStakingAdmin, caller); err != nil {
		return nil, err
	}
	if _, err := s.settle(nil); err != nil {
		return nil, err
	}
	added, sum, err := s.planner.Append(s.env.BlockTime(), list)
	if err != nil {
		return nil, err
	}
	if !sum.IsZero() {
		_, rewardToken, err := s.tokens()
		if err != nil {
			return nil, err
		}
		if err := rewardToken.TransferFrom(s.addr, caller, s.addr, sum); err != nil {
			return nil, err
		}
	}
	for _, iv := range added {
		s.env.Log(tx.NewEvent(s.addr, "IntervalAdded").
			WithValues(iv.Amount, uint256.NewInt(iv.Start), uint256.NewInt(iv.End)))
	}
	logger.Debug("intervals appended", "pool", s.addr, "count", len(added), "amount", sum)
	return added, nil
}

// RemoveIntervals drops the not yet started intervals from index from and
// refunds their amount to caller. Caller must hold the staking admin role.
func (s *Staking) RemoveIntervals(caller core.Address, from uint64) (uint64, error) {
	if err := s.requireRole(core.RoleStakingAdmin, caller); err != nil {
		return 0, err
	}
	if _, err := s.settle(nil); err != nil {
		return 0, err
	}
	count, refund, err := s.planner.Remove(s.env.BlockTime(), from)
	if err != nil {
		return 0, err
	}
	if !refund.IsZero() {
		_, rewardToken, err := s.tokens()
		if err != nil {
			return 0, err
		}
		if err := rewardToken.Transfer(s.addr, caller, refund); err != nil {
			return 0, err
		}
	}
	logger.Debug("intervals removed", "pool", s.addr, "from", from, "count", count, "refund", refund)
	s.env.Log(tx.NewEvent(s.addr, "IntervalsRemoved").WithValues(uint256.NewInt(count)))
	return count, nil
}

// UpgradeTo records a new code version. Caller must hold the default admin role.
func (s *Staking) UpgradeTo(caller core.Address, version uint64) error {
	if err := s.requireRole(core.RoleDefaultAdmin, caller); err != nil {
		return err
	}
	if err := s.storage.version.Set(version); err != nil {
		return err
	}
	s.env.Log(tx.NewEvent(s.addr, "Upgraded").WithValues(uint256.NewInt(version)))
	return nil
}

// SupportsInterface reports the interfaces a pool implements.
func (s *Staking) SupportsInterface(id core.InterfaceID) bool {
	return id == core.IStakingV1 || id == core.IERC165
}
