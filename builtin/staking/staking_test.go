// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/xenv"
)

var (
	poolAddr    = core.BytesToAddress([]byte("pool"))
	registry    = core.BytesToAddress([]byte("AccessRegistry"))
	stakeAddr   = core.BytesToAddress([]byte("stake-token"))
	rewardAddr  = core.BytesToAddress([]byte("reward-token"))
	admin       = core.BytesToAddress([]byte("admin"))
	alice       = core.BytesToAddress([]byte("alice"))
	bob         = core.BytesToAddress([]byte("bob"))
	carol       = core.BytesToAddress([]byte("carol"))
	epsilon     = uint256.NewInt(1e6)
	initialTime = uint64(1000)
)

type fixture struct {
	pool   *Staking
	env    *xenv.Environment
	binder *mockBinder
	stake  *mockToken
	reward *mockToken
}

func (f *fixture) at(t uint64) {
	f.env.BlockContext().Time = t
}

func (f *fixture) now() uint64 {
	return f.env.BlockTime()
}

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func e18(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(u(v), u(1e18))
}

func newFixture(t *testing.T) *fixture {
	st := state.New(muxdb.NewMem().NewStore("state"))
	env := xenv.New(st, &xenv.BlockContext{Time: initialTime}, nil)

	authorizer := &mockAuthorizer{roles: make(map[core.Bytes32]map[core.Address]bool)}
	authorizer.grant(core.RoleDefaultAdmin, admin)
	authorizer.grant(core.RoleStakingAdmin, admin)

	f := &fixture{
		env:    env,
		stake:  newMockToken(),
		reward: newMockToken(),
	}
	f.binder = &mockBinder{
		authorizer: authorizer,
		tokens: map[core.Address]*mockToken{
			stakeAddr:  f.stake,
			rewardAddr: f.reward,
		},
	}
	f.pool = New(poolAddr, env, f.binder)
	require.NoError(t, f.pool.Initialize(Config{
		AccessRegistry: registry,
		StakeToken:     stakeAddr,
		RewardToken:    rewardAddr,
	}))

	for _, addr := range []core.Address{alice, bob, carol} {
		f.stake.mint(addr, e18(1_000_000))
	}
	f.reward.mint(admin, e18(1_000_000))
	return f
}

func (f *fixture) appendIntervals(t *testing.T, list ...*planner.Params) {
	_, err := f.pool.AppendIntervals(admin, list)
	require.NoError(t, err)
}

func (f *fixture) pending(t *testing.T, addr core.Address) *uint256.Int {
	v, err := f.pool.PendingReward(addr)
	require.NoError(t, err)
	return v
}

func assertWithin(t *testing.T, expected, actual, eps *uint256.Int) {
	diff := new(uint256.Int)
	if expected.Gt(actual) {
		diff.Sub(expected, actual)
	} else {
		diff.Sub(actual, expected)
	}
	assert.Truef(t, !diff.Gt(eps), "expected %v, got %v", expected, actual)
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, ErrAlreadyInitialized, f.pool.Initialize(Config{AccessRegistry: registry}))

	cfg, err := f.pool.Config()
	require.NoError(t, err)
	assert.Equal(t, stakeAddr, cfg.StakeToken)
	assert.Equal(t, rewardAddr, cfg.RewardToken)

	version, err := f.pool.Version()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	last, err := f.pool.LastUpdateTime()
	require.NoError(t, err)
	assert.Equal(t, initialTime, last)

	assert.True(t, f.pool.SupportsInterface(core.IStakingV1))
	assert.True(t, f.pool.SupportsInterface(core.IERC165))
	assert.False(t, f.pool.SupportsInterface(core.IAccessControl))
	assert.Equal(t, core.FactorU256(), f.pool.Factor())
}

func TestInitializeUnsupportedRegistry(t *testing.T) {
	st := state.New(muxdb.NewMem().NewStore("state"))
	env := xenv.New(st, &xenv.BlockContext{Time: 1}, nil)
	binder := &mockBinder{authorizer: &mockAuthorizer{unsupported: true}}

	pool := New(poolAddr, env, binder)
	assert.Equal(t, ErrUnsupportedInterface, pool.Initialize(Config{AccessRegistry: registry}))

	ok, err := pool.Initialized()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenarioSingleStaker(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t, &planner.Params{Amount: e18(100), Start: f.now() + 100, End: f.now() + 1100})

	require.NoError(t, f.pool.Stake(alice, e18(100)))

	f.at(initialTime + 1100)
	assert.Equal(t, e18(100), f.pending(t, alice))

	before, _ := f.reward.BalanceOf(alice)
	claimed, err := f.pool.Claim(alice)
	require.NoError(t, err)
	assert.Equal(t, e18(100), claimed)

	after, _ := f.reward.BalanceOf(alice)
	assert.Equal(t, e18(100), after.Sub(after, before))

	acc, err := f.pool.Account(alice)
	require.NoError(t, err)
	assert.True(t, acc.Owed.IsZero())

	paid, err := f.pool.PaidAmount()
	require.NoError(t, err)
	assert.Equal(t, e18(100), paid)
}

func TestScenarioProportionalShares(t *testing.T) {
	f := newFixture(t)
	amount := new(uint256.Int).Add(e18(1000), u(7))
	f.appendIntervals(t, &planner.Params{Amount: amount, Start: f.now() + 10, End: f.now() + 3610})

	require.NoError(t, f.pool.Stake(alice, e18(10)))
	require.NoError(t, f.pool.Stake(bob, e18(30)))

	f.at(initialTime + 3610)

	quarter := new(uint256.Int).Div(amount, u(4))
	assertWithin(t, quarter, f.pending(t, alice), epsilon)
	assertWithin(t, new(uint256.Int).Sub(amount, quarter), f.pending(t, bob), epsilon)

	sum := new(uint256.Int).Add(f.pending(t, alice), f.pending(t, bob))
	assert.False(t, sum.Gt(amount))
}

func TestScenarioRemoveIntervals(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t,
		&planner.Params{Amount: e18(10), Start: 1100, End: 1200},
		&planner.Params{Amount: e18(20), Start: 1200, End: 1300},
	)
	total, err := f.pool.TotalRewardAmount()
	require.NoError(t, err)
	assert.Equal(t, e18(30), total)

	// still in the future
	f.at(1150)
	before, _ := f.reward.BalanceOf(admin)
	count, err := f.pool.RemoveIntervals(admin, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	after, _ := f.reward.BalanceOf(admin)
	assert.Equal(t, e18(20), after.Sub(after, before))

	f.appendIntervals(t, &planner.Params{Amount: e18(20), Start: 1200, End: 1300})

	f.at(1250)
	_, err = f.pool.RemoveIntervals(admin, 1)
	assert.Equal(t, planner.ErrAlreadyStarted, err)
	_, err = f.pool.RemoveIntervals(admin, 2)
	assert.Equal(t, planner.ErrOutOfBound, err)

	n, err := f.pool.IntervalsCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestNoDistributionWhileUnstaked(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 1100, End: 2100})

	f.at(1600)
	require.NoError(t, f.pool.Stake(alice, u(10)))

	f.at(2100)
	assert.Equal(t, u(500), f.pending(t, alice))
}

func TestStakeUnstake(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 1100, End: 2100})

	assert.Equal(t, ErrZeroAmount, f.pool.Stake(alice, u(0)))
	assert.Equal(t, ErrZeroAmount, f.pool.Stake(alice, nil))
	assert.Equal(t, ErrZeroAmount, f.pool.StakeWithPermit(alice, nil, f.now()+10, make([]byte, 65)))
	assert.Zero(t, f.stake.permits)
	require.NoError(t, f.pool.Stake(alice, u(100)))

	bal, _ := f.stake.BalanceOf(poolAddr)
	assert.Equal(t, u(100), bal)

	f.at(1600)
	assert.Equal(t, ErrInvalidAmount, f.pool.Unstake(alice, u(0)))
	assert.Equal(t, ErrInvalidAmount, f.pool.Unstake(alice, nil))
	assert.Equal(t, ErrInvalidAmount, f.pool.Unstake(alice, u(101)))
	assert.Equal(t, ErrInvalidAmount, f.pool.Unstake(bob, u(1)))

	f.env = xenv.New(f.env.State(), f.env.BlockContext(), nil)
	f.pool = New(poolAddr, f.env, f.binder)
	require.NoError(t, f.pool.Unstake(alice, u(40)))

	// owed reward is paid out with the unstake
	reward, _ := f.reward.BalanceOf(alice)
	assert.Equal(t, u(500), reward)

	evs := f.env.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "Unstake", evs[0].Name)
	assert.Equal(t, "Claim", evs[1].Name)
	assert.Equal(t, u(500), evs[1].Values[0])

	acc, err := f.pool.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, u(60), acc.Balance)
	assert.True(t, acc.Owed.IsZero())

	total, err := f.pool.TotalStakes()
	require.NoError(t, err)
	assert.Equal(t, u(60), total)

	// nothing accrued since
	_, err = f.pool.Claim(alice)
	assert.Equal(t, ErrNothingToClaim, err)

	require.NoError(t, f.pool.Unstake(alice, u(60)))
	total, err = f.pool.TotalStakes()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestStakeWithPermit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pool.StakeWithPermit(alice, u(5), f.now()+10, make([]byte, 65)))
	assert.Equal(t, 1, f.stake.permits)

	acc, err := f.pool.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, u(5), acc.Balance)
}

func TestOverflowIsRejected(t *testing.T) {
	maxU256 := new(uint256.Int).SetAllOne()
	dave := core.BytesToAddress([]byte("dave"))

	type snapshot struct {
		account    *Account
		total      *uint256.Int
		rpt        *uint256.Int
		paid       *uint256.Int
		lastUpdate uint64
	}
	take := func(t *testing.T, f *fixture, addr core.Address) snapshot {
		var (
			snap snapshot
			err  error
		)
		snap.account, err = f.pool.Account(addr)
		require.NoError(t, err)
		snap.total, err = f.pool.TotalStakes()
		require.NoError(t, err)
		snap.rpt, err = f.pool.SnapshotRewardPerToken()
		require.NoError(t, err)
		snap.paid, err = f.pool.PaidAmount()
		require.NoError(t, err)
		snap.lastUpdate, err = f.pool.LastUpdateTime()
		require.NoError(t, err)
		return snap
	}

	t.Run("stake balance", func(t *testing.T) {
		f := newFixture(t)
		f.stake.mint(dave, maxU256)
		require.NoError(t, f.pool.Stake(dave, maxU256))
		f.stake.mint(dave, u(1))

		before := take(t, f, dave)
		assert.Equal(t, solidity.ErrOverflow, f.pool.Stake(dave, u(1)))
		assert.Equal(t, before, take(t, f, dave))

		bal, _ := f.stake.BalanceOf(dave)
		assert.Equal(t, u(1), bal)
	})

	t.Run("reward per token increment", func(t *testing.T) {
		f := newFixture(t)
		huge := new(uint256.Int).Lsh(u(1), 200)
		f.reward.mint(admin, huge)
		f.appendIntervals(t, &planner.Params{Amount: huge, Start: 1100, End: 1200})
		require.NoError(t, f.pool.Stake(alice, u(1)))

		// 2^200 * 1e18 / 1 does not fit
		f.at(1200)
		before := take(t, f, alice)
		_, err := f.pool.PendingReward(alice)
		assert.Equal(t, solidity.ErrOverflow, err)
		_, err = f.pool.Claim(alice)
		assert.Equal(t, solidity.ErrOverflow, err)
		assert.Equal(t, before, take(t, f, alice))
		assert.Equal(t, initialTime, before.lastUpdate)

		bal, _ := f.reward.BalanceOf(alice)
		assert.True(t, bal.IsZero())
	})

	t.Run("reward per token sum", func(t *testing.T) {
		f := newFixture(t)
		f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 1100, End: 1200})
		f.pool.storage.rpt.Set(new(uint256.Int).Sub(maxU256, u(1)))
		require.NoError(t, f.pool.Stake(alice, u(1)))

		f.at(1200)
		before := take(t, f, alice)
		_, err := f.pool.Claim(alice)
		assert.Equal(t, solidity.ErrOverflow, err)
		assert.Equal(t, solidity.ErrOverflow, f.pool.Stake(alice, u(1)))
		assert.Equal(t, before, take(t, f, alice))
	})

	t.Run("earned product", func(t *testing.T) {
		f := newFixture(t)
		// 2^250 * 2^80 / 1e18 does not fit
		f.pool.storage.rpt.Set(new(uint256.Int).Lsh(u(1), 80))
		require.NoError(t, f.pool.storage.setAccount(dave, &Account{
			Balance:  new(uint256.Int).Lsh(u(1), 250),
			Snapshot: new(uint256.Int),
			Owed:     new(uint256.Int),
		}))

		before := take(t, f, dave)
		_, err := f.pool.PendingReward(dave)
		assert.Equal(t, solidity.ErrOverflow, err)
		_, err = f.pool.Claim(dave)
		assert.Equal(t, solidity.ErrOverflow, err)
		assert.Equal(t, before, take(t, f, dave))
	})

	t.Run("earned sum", func(t *testing.T) {
		f := newFixture(t)
		f.pool.storage.rpt.Set(core.FactorU256())
		require.NoError(t, f.pool.storage.setAccount(dave, &Account{
			Balance:  u(1),
			Snapshot: new(uint256.Int),
			Owed:     maxU256,
		}))

		before := take(t, f, dave)
		_, err := f.pool.PendingReward(dave)
		assert.Equal(t, solidity.ErrOverflow, err)
		_, err = f.pool.Claim(dave)
		assert.Equal(t, solidity.ErrOverflow, err)
		assert.Equal(t, before, take(t, f, dave))
	})
}

func TestTokenFailurePropagates(t *testing.T) {
	f := newFixture(t)
	poor := core.BytesToAddress([]byte("poor"))
	assert.Equal(t, errMockBalance, f.pool.Stake(poor, u(1)))

	_, err := f.pool.AppendIntervals(admin, []*planner.Params{{Amount: e18(2_000_000), Start: 1100, End: 1200}})
	assert.Equal(t, errMockBalance, err)
}

func TestPause(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 1100, End: 2100})
	require.NoError(t, f.pool.Stake(alice, u(10)))

	assert.Equal(t, ErrForbidden, f.pool.SetPausedFunctions(alice, PausedFunctions{PausedStake: true}))
	require.NoError(t, f.pool.SetPausedFunctions(admin, PausedFunctions{PausedStake: true, PausedClaim: true}))

	flags, err := f.pool.PausedFunctions()
	require.NoError(t, err)
	assert.Equal(t, PausedFunctions{PausedStake: true, PausedClaim: true}, flags)

	// amount is checked first
	assert.Equal(t, ErrZeroAmount, f.pool.Stake(alice, u(0)))
	assert.Equal(t, ErrMethodPaused, f.pool.Stake(alice, u(1)))
	_, err = f.pool.Claim(alice)
	assert.Equal(t, ErrMethodPaused, err)

	f.at(1600)
	require.NoError(t, f.pool.Unstake(alice, u(1)))

	// the whole set is replaced
	require.NoError(t, f.pool.SetPausedFunctions(admin, PausedFunctions{PausedUnstake: true}))
	assert.Equal(t, ErrMethodPaused, f.pool.Unstake(alice, u(1)))
	require.NoError(t, f.pool.Stake(alice, u(1)))
}

func TestAdminOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.pool.AppendIntervals(alice, []*planner.Params{{Amount: u(1), Start: 1100, End: 1200}})
	assert.Equal(t, ErrForbidden, err)
	_, err = f.pool.RemoveIntervals(alice, 0)
	assert.Equal(t, ErrForbidden, err)
	assert.Equal(t, ErrForbidden, f.pool.UpgradeTo(alice, 2))

	// staking admin is not enough to upgrade
	f.binder.authorizer.grant(core.RoleStakingAdmin, bob)
	assert.Equal(t, ErrForbidden, f.pool.UpgradeTo(bob, 2))

	require.NoError(t, f.pool.UpgradeTo(admin, 2))
	version, err := f.pool.Version()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
}

func TestAppendSettlesFirst(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 1100, End: 2100})
	require.NoError(t, f.pool.Stake(alice, u(10)))

	f.at(1600)
	f.appendIntervals(t, &planner.Params{Amount: u(1000), Start: 2100, End: 3100})

	last, err := f.pool.LastUpdateTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(1600), last)

	rpt, err := f.pool.SnapshotRewardPerToken()
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Mul(u(50), core.FactorU256()), rpt)

	f.at(3100)
	assert.Equal(t, u(2000), f.pending(t, alice))
}

func TestConservation(t *testing.T) {
	f := newFixture(t)
	f.appendIntervals(t,
		&planner.Params{Amount: e18(3000), Start: 1100, End: 5100},
		&planner.Params{Amount: e18(777), Start: 6000, End: 6500},
		&planner.Params{Amount: new(uint256.Int).Add(e18(1), u(13)), Start: 6500, End: 9000},
	)
	// carol keeps a stake for the whole run
	require.NoError(t, f.pool.Stake(carol, e18(1)))

	rng := rand.New(rand.NewSource(7))
	stakers := []core.Address{alice, bob, carol}
	for now := uint64(1050); now < 9500; now += uint64(rng.Intn(200) + 1) {
		f.at(now)
		who := stakers[rng.Intn(len(stakers))]
		acc, err := f.pool.Account(who)
		require.NoError(t, err)

		switch rng.Intn(3) {
		case 0:
			require.NoError(t, f.pool.Stake(who, new(uint256.Int).Mul(u(uint64(rng.Intn(1000)+1)), u(1e15))))
		case 1:
			if who != carol && !acc.Balance.IsZero() {
				amt := new(uint256.Int).Div(acc.Balance, u(uint64(rng.Intn(3)+1)))
				require.NoError(t, f.pool.Unstake(who, amt))
			}
		case 2:
			if _, err := f.pool.Claim(who); err != nil {
				assert.Equal(t, ErrNothingToClaim, err)
			}
		}

		var sum uint256.Int
		total := new(uint256.Int)
		for _, s := range stakers {
			sum.Add(&sum, f.pending(t, s))
			a, err := f.pool.Account(s)
			require.NoError(t, err)
			total.Add(total, a.Balance)
		}
		paid, err := f.pool.PaidAmount()
		require.NoError(t, err)
		sum.Add(&sum, paid)

		released, err := f.pool.RewardAt(now)
		require.NoError(t, err)
		assert.False(t, sum.Gt(released), "distributed more than released")
		assertWithin(t, released, &sum, epsilon)

		totalStakes, err := f.pool.TotalStakes()
		require.NoError(t, err)
		assert.Equal(t, totalStakes, total)
	}

	// the pool holds whatever is not paid out
	appended, err := f.pool.TotalRewardAmount()
	require.NoError(t, err)
	paid, err := f.pool.PaidAmount()
	require.NoError(t, err)
	poolBal, _ := f.reward.BalanceOf(poolAddr)
	assert.Equal(t, new(uint256.Int).Sub(appended, paid), poolBal)
}
