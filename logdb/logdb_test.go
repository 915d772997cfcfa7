// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/tx"
)

var (
	pool    = core.BytesToAddress([]byte("pool"))
	token   = core.BytesToAddress([]byte("token"))
	alice   = core.BytesToAddress([]byte("alice"))
	bob     = core.BytesToAddress([]byte("bob"))
	aliceID = core.BytesToBytes32(alice.Bytes())
)

func newReceipt(seq uint64, origin core.Address, events ...*tx.Event) *tx.Receipt {
	return &tx.Receipt{
		TxID:    core.Blake2b([]byte{byte(seq)}, origin.Bytes()),
		Origin:  origin,
		Seq:     seq,
		Time:    1000 + seq*10,
		Outputs: []*tx.Output{{Events: events}},
	}
}

func populate(t *testing.T, db *logdb.LogDB) {
	for seq := uint64(1); seq <= 10; seq++ {
		origin := alice
		if seq%2 == 0 {
			origin = bob
		}
		r := newReceipt(seq, origin,
			tx.NewEvent(token, "Transfer").WithTopics(origin, pool).WithValues(uint256.NewInt(seq)),
			tx.NewEvent(pool, "Stake").WithTopics(origin).WithValues(uint256.NewInt(seq)),
		)
		w := db.NewWriter(r.Seq, r.Time).Write(r)
		assert.Equal(t, 2, w.Len())
		require.NoError(t, w.Commit())
	}
}

func TestLogDB(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, ok, err := db.NewestSeq()
	require.NoError(t, err)
	assert.False(t, ok)

	populate(t, db)

	newest, ok, err := db.NewestSeq()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), newest)

	all, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 20)
	assert.Equal(t, "Transfer", all[0].Name)
	assert.Equal(t, uint32(1), all[1].Index)
	assert.Equal(t, uint256.NewInt(1), all[1].Values[0])
	assert.Equal(t, alice, all[0].TxOrigin)
}

func TestFilterEvents(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	populate(t, db)

	ctx := context.Background()

	stakes, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &pool, Name: "Stake", Topics: [3]*core.Bytes32{&aliceID}}},
	})
	require.NoError(t, err)
	require.Len(t, stakes, 5)
	for _, ev := range stakes {
		assert.Equal(t, pool, ev.Address)
		assert.Equal(t, aliceID, *ev.Topics[0])
		assert.Nil(t, ev.Topics[1])
	}

	// any of two criteria, within a time range, newest first, paged
	page, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{
			{Address: &pool},
			{Address: &token, Name: "Transfer"},
		},
		Range:   &logdb.Range{From: 1030, To: 1080},
		Order:   logdb.DESC,
		Options: &logdb.Options{Offset: 1, Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, uint64(8), page[0].Seq)
	assert.Equal(t, "Transfer", page[0].Name)
	assert.Equal(t, uint64(7), page[1].Seq)
	assert.Equal(t, "Stake", page[1].Name)

	// open ended range
	tail, err := db.FilterEvents(ctx, &logdb.EventFilter{Range: &logdb.Range{From: 1090}})
	require.NoError(t, err)
	assert.Len(t, tail, 4)

	id := core.Blake2b([]byte{3}, alice.Bytes())
	byTx, err := db.FilterEvents(ctx, &logdb.EventFilter{TxID: &id})
	require.NoError(t, err)
	assert.Len(t, byTx, 2)

	none, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Name: "Claim"}},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	populate(t, db)
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	assert.Equal(t, path, db.Path())

	newest, ok, err := db.NewestSeq()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), newest)
}

func TestCancelledQuery(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	populate(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterEvents(ctx, nil)
	assert.Error(t, err)
}

func TestReceiptEventsMatchIndex(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	populate(t, db)

	r := newReceipt(3, alice,
		tx.NewEvent(token, "Transfer").WithTopics(alice, pool).WithValues(uint256.NewInt(3)),
		tx.NewEvent(pool, "Stake").WithTopics(alice).WithValues(uint256.NewInt(3)),
	)
	flat := logdb.ReceiptEvents(r)
	require.Len(t, flat, 2)

	stored, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{From: r.Time, To: r.Time},
	})
	require.NoError(t, err)
	assert.Equal(t, stored, flat)

	criteria := &logdb.EventCriteria{Address: &pool, Topics: [3]*core.Bytes32{&aliceID}}
	assert.False(t, criteria.Match(flat[0]))
	assert.True(t, criteria.Match(flat[1]))
	assert.True(t, (&logdb.EventCriteria{}).Match(flat[0]))
	assert.False(t, (&logdb.EventCriteria{Name: "Claim"}).Match(flat[1]))
}
