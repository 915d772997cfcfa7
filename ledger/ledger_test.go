// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/runtime"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var (
	gene    = genesis.NewDevnet()
	launch  = gene.Timestamp()
	pool    = builtin.PoolAddress(0)
	stkAddr = builtin.TokenAddress(0)
	rwdAddr = builtin.TokenAddress(1)
)

type fixture struct {
	db    *muxdb.MuxDB
	logDB *logdb.LogDB
	l     *ledger.Ledger
}

func newFixture(t *testing.T) *fixture {
	db := muxdb.NewMem()
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	l, err := ledger.New(db, gene, logDB)
	require.NoError(t, err)
	t.Cleanup(func() {
		l.Close()
		logDB.Close()
		db.Close()
	})
	return &fixture{db, logDB, l}
}

func (f *fixture) exec(t *testing.T, acc genesis.DevAccount, now uint64, clauses ...*tx.Clause) *tx.Receipt {
	nonce, err := f.l.Nonce(acc.Address)
	require.NoError(t, err)

	b := tx.NewBuilder(f.l.ChainTag()).Nonce(nonce + 1)
	for _, c := range clauses {
		b.Clause(c)
	}
	receipt, err := f.l.Execute(tx.MustSign(b.Build(), acc.PrivateKey), now)
	require.NoError(t, err)
	return receipt
}

func stakeClauses(amount *uint256.Int) []*tx.Clause {
	return []*tx.Clause{
		tx.NewClause(stkAddr, "approve").MustWithArgs(pool, amount),
		tx.NewClause(pool, "stake").MustWithArgs(amount),
	}
}

func TestGenesis(t *testing.T) {
	f := newFixture(t)

	head := f.l.Head()
	assert.Zero(t, head.Seq)
	assert.Equal(t, launch, head.Time)
	assert.NotEqual(t, core.Bytes32{}, head.StateRoot)
	assert.Equal(t, gene, f.l.Genesis())

	events, err := f.logDB.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &pool, Name: "IntervalAdded"}},
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// reopen keeps the head
	l2, err := ledger.New(f.db, gene, nil)
	require.NoError(t, err)
	assert.Equal(t, head, l2.Head())

	// another genesis is refused
	cfg := genesis.DevConfig()
	cfg.Name = "other"
	other, err := genesis.NewGenesis(cfg)
	require.NoError(t, err)
	_, err = ledger.New(f.db, other, nil)
	assert.ErrorContains(t, err, "genesis mismatch")
}

func TestExecute(t *testing.T) {
	f := newFixture(t)
	alice := genesis.DevAccounts()[1]

	genesisRoot := f.l.Head().StateRoot
	receipt := f.exec(t, alice, launch+1, stakeClauses(uint256.NewInt(1000))...)
	assert.False(t, receipt.Reverted)

	head := f.l.Head()
	assert.Equal(t, uint64(1), head.Seq)
	assert.Equal(t, launch+1, head.Time)
	assert.Equal(t, receipt.TxID, head.TxID)
	assert.NotEqual(t, genesisRoot, head.StateRoot)

	got, err := f.l.GetReceipt(receipt.TxID)
	require.NoError(t, err)
	assert.Equal(t, receipt, got)

	id, err := f.l.TxIDAt(1)
	require.NoError(t, err)
	assert.Equal(t, receipt.TxID, id)

	_, err = f.l.GetReceipt(core.Bytes32{1})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = f.l.TxIDAt(2)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, f.l.View(0, func(env *xenv.Environment, head *ledger.Head) error {
		assert.Equal(t, uint64(1), head.Seq)
		total, err := builtin.Staking(pool, env).TotalStakes()
		require.NoError(t, err)
		assert.Equal(t, uint256.NewInt(1000), total)
		return nil
	}))

	stakes, err := f.logDB.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &pool, Name: "Stake"}},
	})
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	assert.Equal(t, uint64(1), stakes[0].Seq)
	assert.Equal(t, alice.Address, stakes[0].TxOrigin)
}

func TestReceiptFromStore(t *testing.T) {
	f := newFixture(t)
	receipt := f.exec(t, genesis.DevAccounts()[1], launch+1, stakeClauses(uint256.NewInt(7))...)

	// a fresh instance has a cold cache
	l2, err := ledger.New(f.db, gene, nil)
	require.NoError(t, err)
	got, err := l2.GetReceipt(receipt.TxID)
	require.NoError(t, err)
	assert.Equal(t, receipt.TxID, got.TxID)
	assert.Equal(t, receipt.Origin, got.Origin)
	require.Len(t, got.Outputs, 2)
	assert.Equal(t, "Stake", got.Outputs[1].Events[1].Name)
	assert.Equal(t, uint256.NewInt(7), got.Outputs[1].Events[1].Values[0])
}

func TestRejections(t *testing.T) {
	f := newFixture(t)
	acc := genesis.DevAccounts()[2]

	trx := tx.MustSign(tx.NewBuilder(f.l.ChainTag()).Nonce(1).
		Clause(stakeClauses(uint256.NewInt(1))[0]).Build(), acc.PrivateKey)

	_, err := f.l.Execute(trx, launch-1)
	assert.ErrorIs(t, err, ledger.ErrClockBackwards)

	_, err = f.l.Execute(trx, launch)
	require.NoError(t, err)

	// replay
	_, err = f.l.Execute(trx, launch)
	assert.ErrorIs(t, err, runtime.ErrBadNonce)
	assert.EqualError(t, err, "ledger: bad nonce")

	wrongChain := tx.MustSign(tx.NewBuilder(f.l.ChainTag()+1).Nonce(2).
		Clause(stakeClauses(uint256.NewInt(1))[0]).Build(), acc.PrivateKey)
	_, err = f.l.Execute(wrongChain, launch)
	assert.ErrorContains(t, err, "chain tag mismatch")

	assert.Equal(t, uint64(1), f.l.Head().Seq)
}

func TestRevertedIsCommitted(t *testing.T) {
	f := newFixture(t)
	acc := genesis.DevAccounts()[3]

	receipt := f.exec(t, acc, launch+5, tx.NewClause(pool, "claim"))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Staking: NOTHING_TO_CLAIM", receipt.RevertReason)
	assert.Equal(t, uint64(1), f.l.Head().Seq)

	nonce, err := f.l.Nonce(acc.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestStakeAndClaim(t *testing.T) {
	f := newFixture(t)
	alice := genesis.DevAccounts()[4]

	f.exec(t, alice, launch+1, stakeClauses(uint256.NewInt(1e6))...)

	var pending *uint256.Int
	require.NoError(t, f.l.View(launch+1001, func(env *xenv.Environment, _ *ledger.Head) (err error) {
		pending, err = builtin.Staking(pool, env).PendingReward(alice.Address)
		return
	}))
	assert.False(t, pending.IsZero())

	receipt := f.exec(t, alice, launch+1001, tx.NewClause(pool, "claim"))
	require.False(t, receipt.Reverted, receipt.RevertReason)

	var claimed *uint256.Int
	for _, ev := range receipt.Outputs[0].Events {
		if ev.Name == "Claim" {
			claimed = ev.Values[0]
		}
	}
	require.NotNil(t, claimed)
	assert.Equal(t, pending, claimed)

	require.NoError(t, f.l.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		bal, err := builtin.Token(rwdAddr, env).BalanceOf(alice.Address)
		require.NoError(t, err)
		assert.Equal(t, claimed, bal)

		paid, err := builtin.Staking(pool, env).PaidAmount()
		require.NoError(t, err)
		assert.Equal(t, claimed, paid)
		return nil
	}))
}

func TestStakeWithSignedPermit(t *testing.T) {
	f := newFixture(t)
	alice := genesis.DevAccounts()[6]
	amount := uint256.NewInt(500)
	deadline := launch + 100

	var digest core.Bytes32
	require.NoError(t, f.l.View(0, func(env *xenv.Environment, _ *ledger.Head) (err error) {
		digest, err = builtin.Token(stkAddr, env).PermitDigest(alice.Address, pool, amount, 0, deadline)
		return
	}))
	sig, err := token.SignPermit(digest, alice.PrivateKey)
	require.NoError(t, err)

	clause := tx.NewClause(pool, "stakeWithPermit").MustWithArgs(amount, deadline, sig)
	receipt := f.exec(t, alice, launch+1, clause)
	require.False(t, receipt.Reverted, receipt.RevertReason)

	require.NoError(t, f.l.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		acc, err := builtin.Staking(pool, env).Account(alice.Address)
		require.NoError(t, err)
		assert.Equal(t, amount, acc.Balance)

		stk := builtin.Token(stkAddr, env)
		nonce, err := stk.Nonces(alice.Address)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), nonce)

		allowance, err := stk.Allowance(alice.Address, pool)
		require.NoError(t, err)
		assert.True(t, allowance.IsZero())
		return nil
	}))

	// the permit nonce moved on
	receipt = f.exec(t, alice, launch+2, clause)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Token: INVALID_SIGNATURE", receipt.RevertReason)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)

	ch := make(chan *tx.Receipt, 1)
	sub := f.l.SubscribeReceipts(ch)
	defer sub.Unsubscribe()
	waiter := f.l.NewHeadWaiter()

	receipt := f.exec(t, genesis.DevAccounts()[5], launch+1, stakeClauses(uint256.NewInt(1))...)

	select {
	case got := <-ch:
		assert.Equal(t, receipt.TxID, got.TxID)
	case <-time.After(time.Second):
		t.Fatal("no receipt delivered")
	}
	select {
	case <-waiter.C():
	case <-time.After(time.Second):
		t.Fatal("head waiter not fired")
	}
}

func TestConcurrentViews(t *testing.T) {
	f := newFixture(t)
	accs := genesis.DevAccounts()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				assert.NoError(t, f.l.View(0, func(env *xenv.Environment, head *ledger.Head) error {
					_, err := builtin.Staking(pool, env).TotalStakes()
					return err
				}))
			}
		}()
	}
	for i, acc := range accs[:5] {
		f.exec(t, acc, launch+uint64(i)+1, stakeClauses(uint256.NewInt(10))...)
	}
	wg.Wait()

	assert.Equal(t, uint64(5), f.l.Head().Seq)
	require.NoError(t, f.l.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		total, err := builtin.Staking(pool, env).TotalStakes()
		require.NoError(t, err)
		assert.Equal(t, uint256.NewInt(50), total)
		return nil
	}))
}

func TestConcurrentExecuteNotifiesInOrder(t *testing.T) {
	f := newFixture(t)
	accs := genesis.DevAccounts()
	const perAccount = 5
	total := len(accs) * perAccount

	ch := make(chan *tx.Receipt, total)
	sub := f.l.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	for _, acc := range accs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perAccount {
				nonce, err := f.l.Nonce(acc.Address)
				if !assert.NoError(t, err) {
					return
				}
				trx := tx.MustSign(tx.NewBuilder(f.l.ChainTag()).Nonce(nonce+1).
					Clause(tx.NewClause(stkAddr, "approve").MustWithArgs(pool, uint256.NewInt(1))).Build(), acc.PrivateKey)
				_, err = f.l.Execute(trx, launch+1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for seq := uint64(1); seq <= uint64(total); seq++ {
		select {
		case got := <-ch:
			require.Equal(t, seq, got.Seq)
		case <-time.After(time.Second):
			t.Fatalf("receipt %d not delivered", seq)
		}
	}
}
