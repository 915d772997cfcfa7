// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the single writer of the reward pool state.
// Transactions are executed one at a time and each one is committed
// together with its receipt and the new head in one atomic batch.
// Reads run concurrently against database snapshots.
package ledger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/cache"
	"github.com/vechain/rewardpool/co"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/runtime"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

const (
	stateStoreName    = "state"
	propStoreName     = "ledger.props"
	receiptsStoreName = "ledger.receipts"
	txsStoreName      = "ledger.txs"

	receiptsCacheSize = 4096
)

var (
	headKey    = []byte("head")
	genesisKey = []byte("genesis")

	stateBucket    = muxdb.StoreBucket(stateStoreName)
	propBucket     = muxdb.StoreBucket(propStoreName)
	receiptsBucket = muxdb.StoreBucket(receiptsStoreName)
	txsBucket      = muxdb.StoreBucket(txsStoreName)
)

var (
	ErrClockBackwards = errors.New("ledger: clock went backwards")
	ErrNotFound       = errors.New("ledger: not found")
)

var logger = log.WithContext("pkg", "ledger")

// Ledger executes transactions and serves consistent reads.
type Ledger struct {
	db    *muxdb.MuxDB
	gene  *genesis.Genesis
	logDB *logdb.LogDB

	mu       sync.Mutex // serializes writers
	notifyMu sync.Mutex // taken before mu is released, keeps notifications in commit order
	head     atomic.Pointer[Head]
	receipts *cache.LRU[core.Bytes32, *tx.Receipt]

	feed       event.Feed
	scope      event.SubscriptionScope
	headSignal co.Signal
}

// New opens the ledger stored in db, building the genesis state on first use.
// logDB is optional; when given, committed events are indexed into it.
func New(db *muxdb.MuxDB, gene *genesis.Genesis, logDB *logdb.LogDB) (*Ledger, error) {
	receipts, err := cache.NewLRU[core.Bytes32, *tx.Receipt](receiptsCacheSize)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		db:       db,
		gene:     gene,
		logDB:    logDB,
		receipts: receipts,
	}

	props := db.NewStore(propStoreName)
	data, err := props.Get(genesisKey)
	if err != nil {
		if !props.IsNotFound(err) {
			return nil, errors.Wrap(err, "load genesis id")
		}
		if err := l.initGenesis(); err != nil {
			return nil, errors.Wrap(err, "init genesis")
		}
		return l, nil
	}
	if id := core.BytesToBytes32(data); id != gene.ID() {
		return nil, errors.Errorf("ledger: genesis mismatch, stored %v, given %v", id, gene.ID())
	}

	head, err := loadHead(props)
	if err != nil {
		return nil, err
	}
	l.setHead(head)
	logger.Info("ledger opened", "genesis", gene.Name(), "seq", head.Seq, "time", head.Time)
	return l, nil
}

func (l *Ledger) initGenesis() error {
	var (
		stage  *state.Stage
		events tx.Events
	)
	if err := l.db.Snapshot(func(g kv.Getter) (err error) {
		st := state.New(stateBucket.NewGetter(g))
		if events, err = l.gene.Build(st); err != nil {
			return err
		}
		stage = st.Stage()
		return nil
	}); err != nil {
		return err
	}

	head := &Head{
		Seq:       0,
		Time:      l.gene.Timestamp(),
		StateRoot: nextRoot(l.gene.ID(), stage.Hash()),
	}
	if err := l.db.Batch(func(p kv.Putter) error {
		if err := stage.Commit(stateBucket.NewPutter(p)); err != nil {
			return err
		}
		if err := saveHead(propBucket.NewPutter(p), head); err != nil {
			return err
		}
		id := l.gene.ID()
		return propBucket.NewPutter(p).Put(genesisKey, id.Bytes())
	}); err != nil {
		return err
	}
	l.setHead(head)

	if l.logDB != nil {
		if err := l.logDB.NewWriter(0, head.Time).WriteEvents(core.Bytes32{}, core.Address{}, events).Commit(); err != nil {
			return errors.Wrap(err, "index genesis events")
		}
	}
	logger.Info("genesis initialized", "name", l.gene.Name(), "id", l.gene.ID(), "changes", stage.Len())
	return nil
}

func (l *Ledger) setHead(head *Head) {
	l.head.Store(head)
	metricHeadSeq().Set(int64(head.Seq))
	metricHeadTime().Set(int64(head.Time))
}

// Genesis returns the genesis the ledger was built from.
func (l *Ledger) Genesis() *genesis.Genesis {
	return l.gene
}

// ChainTag returns the tag transactions must carry.
func (l *Ledger) ChainTag() byte {
	return l.gene.ChainTag()
}

// Head returns the last committed head.
func (l *Ledger) Head() Head {
	return *l.head.Load()
}

// Execute runs trx at time now and commits its effects.
// A transaction failing a contract check is committed as a reverted receipt.
// A transaction that can not be applied at all (bad signature or nonce,
// malformed input) is rejected with an error and leaves no trace.
func (l *Ledger) Execute(trx *tx.Transaction, now uint64) (*tx.Receipt, error) {
	l.mu.Lock()
	receipt, err := l.execute(trx, now)
	if err != nil {
		l.mu.Unlock()
		metricTxCounter().AddWithLabel(1, map[string]string{"status": "rejected"})
		return nil, err
	}
	l.notifyMu.Lock()
	l.mu.Unlock()
	defer l.notifyMu.Unlock()

	if receipt.Reverted {
		metricTxCounter().AddWithLabel(1, map[string]string{"status": "reverted"})
	} else {
		metricTxCounter().AddWithLabel(1, map[string]string{"status": "success"})
	}

	// subscribers may be slow, the next writer proceeds while they are notified
	l.feed.Send(receipt)
	l.headSignal.Broadcast()
	return receipt, nil
}

// execute must be called with mu held.
func (l *Ledger) execute(trx *tx.Transaction, now uint64) (*tx.Receipt, error) {
	startTime := time.Now()

	head := l.head.Load()
	if now < head.Time {
		return nil, ErrClockBackwards
	}

	var (
		receipt *tx.Receipt
		stage   *state.Stage
	)
	if err := l.db.Snapshot(func(g kv.Getter) (err error) {
		st := state.New(stateBucket.NewGetter(g))
		rt := runtime.New(st, l.gene.ChainTag(), head.Seq+1, now)
		if receipt, err = rt.ExecuteTransaction(trx); err != nil {
			return err
		}
		stage = st.Stage()
		return nil
	}); err != nil {
		return nil, errors.WithMessage(err, "ledger")
	}

	newHead := &Head{
		Seq:       head.Seq + 1,
		Time:      now,
		StateRoot: nextRoot(head.StateRoot, stage.Hash()),
		TxID:      receipt.TxID,
	}
	if err := l.db.Batch(func(p kv.Putter) error {
		if err := stage.Commit(stateBucket.NewPutter(p)); err != nil {
			return err
		}
		data, err := rlp.EncodeToBytes(receipt)
		if err != nil {
			return err
		}
		if err := receiptsBucket.NewPutter(p).Put(receipt.TxID.Bytes(), data); err != nil {
			return err
		}
		if err := txsBucket.NewPutter(p).Put(seqKey(newHead.Seq), receipt.TxID.Bytes()); err != nil {
			return err
		}
		return saveHead(propBucket.NewPutter(p), newHead)
	}); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	l.setHead(newHead)
	l.receipts.Add(receipt.TxID, receipt)

	if l.logDB != nil {
		// the tx is committed already, index failures are only logged
		if err := l.logDB.NewWriter(newHead.Seq, newHead.Time).Write(receipt).Commit(); err != nil {
			logger.Error("failed to index events", "seq", newHead.Seq, "err", err)
		}
	}

	metricExecDuration().Observe(time.Since(startTime).Milliseconds())
	logger.Debug("tx committed",
		"seq", newHead.Seq,
		"id", receipt.TxID,
		"origin", receipt.Origin,
		"reverted", receipt.Reverted,
		"changes", stage.Len(),
	)
	return receipt, nil
}

// GetReceipt returns the receipt of a committed transaction.
func (l *Ledger) GetReceipt(txID core.Bytes32) (*tx.Receipt, error) {
	if receipt, ok := l.receipts.Get(txID); ok {
		metricReceiptsCache().AddWithLabel(1, map[string]string{"event": "hit"})
		return receipt, nil
	}
	metricReceiptsCache().AddWithLabel(1, map[string]string{"event": "miss"})
	return l.receipts.GetOrLoad(txID, l.loadReceipt)
}

func (l *Ledger) loadReceipt(txID core.Bytes32) (*tx.Receipt, error) {
	store := l.db.NewStore(receiptsStoreName)
	data, err := store.Get(txID.Bytes())
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var receipt tx.Receipt
	if err := rlp.DecodeBytes(data, &receipt); err != nil {
		return nil, errors.Wrap(err, "decode receipt")
	}
	return &receipt, nil
}

// TxIDAt returns the id of the transaction committed at seq.
func (l *Ledger) TxIDAt(seq uint64) (core.Bytes32, error) {
	store := l.db.NewStore(txsStoreName)
	data, err := store.Get(seqKey(seq))
	if err != nil {
		if store.IsNotFound(err) {
			return core.Bytes32{}, ErrNotFound
		}
		return core.Bytes32{}, err
	}
	return core.BytesToBytes32(data), nil
}

// View runs fn against a consistent snapshot of the committed state.
// The environment clock is at, or the head time when at is zero.
// Contract writes made by fn are discarded.
func (l *Ledger) View(at uint64, fn func(env *xenv.Environment, head *Head) error) error {
	return l.db.Snapshot(func(g kv.Getter) error {
		head, err := loadHead(propBucket.NewGetter(g))
		if err != nil {
			return err
		}
		if at == 0 {
			at = head.Time
		}
		st := state.New(stateBucket.NewGetter(g))
		env := xenv.New(st, &xenv.BlockContext{Number: head.Seq, Time: at}, nil)
		return fn(env, head)
	})
}

// Nonce returns the last nonce used by addr.
func (l *Ledger) Nonce(addr core.Address) (nonce uint64, err error) {
	err = l.View(0, func(env *xenv.Environment, _ *Head) error {
		nonce, err = env.State().GetNonce(addr)
		return err
	})
	return
}

// SubscribeReceipts delivers the receipt of each committed transaction to ch.
func (l *Ledger) SubscribeReceipts(ch chan<- *tx.Receipt) event.Subscription {
	return l.scope.Track(l.feed.Subscribe(ch))
}

// NewHeadWaiter returns a waiter fired on each head change.
func (l *Ledger) NewHeadWaiter() co.Waiter {
	return l.headSignal.NewWaiter()
}

// Close releases subscriptions. The underlying databases are owned by the caller.
func (l *Ledger) Close() {
	l.scope.Close()
}

func loadHead(g kv.Getter) (*Head, error) {
	data, err := g.Get(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "load head")
	}
	var head Head
	if err := rlp.DecodeBytes(data, &head); err != nil {
		return nil, errors.Wrap(err, "decode head")
	}
	return &head, nil
}

func saveHead(p kv.Putter, head *Head) error {
	data, err := rlp.EncodeToBytes(head)
	if err != nil {
		return err
	}
	return p.Put(headKey, data)
}
