// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes committed events in sqlite for filtering.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/tx"
)

var logger = log.WithContext("pkg", "logdb")

const memPath = ":memory:"

const insertEventQuery = "INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES(?,?,?,?,?,?,?,?,?,?)"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path
	if path != memPath {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection serializes writers and keeps an in-memory db alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(memPath)
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// NewestSeq returns the ledger sequence of the newest written event,
// or false if nothing was written yet.
func (db *LogDB) NewestSeq() (uint64, bool, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, false, err
	}
	if !seq.Valid {
		return 0, false, nil
	}
	return sequence(seq.Int64).LedgerSeq(), true, nil
}

// FilterEvents returns events matching filter. A nil filter returns all events.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT "+eventColumns+" FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args []any
		stmt strings.Builder
	)
	stmt.WriteString("SELECT " + eventColumns + " FROM event WHERE 1")
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt.WriteString(" AND time >= ?")
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt.WriteString(" AND time <= ?")
		}
	}
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt.WriteString(" AND txID = ?")
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt.WriteString(" AND (( 1")
		} else {
			stmt.WriteString(" OR ( 1")
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt.WriteString(" AND address = ?")
		}
		if criteria.Name != "" {
			args = append(args, criteria.Name)
			stmt.WriteString(" AND name = ?")
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				fmt.Fprintf(&stmt, " AND topic%d = ?", j)
			}
		}
		stmt.WriteString(" )")
		if i == len(filter.CriteriaSet)-1 {
			stmt.WriteString(")")
		}
	}

	if filter.Order == DESC {
		stmt.WriteString(" ORDER BY seq DESC")
	} else {
		stmt.WriteString(" ORDER BY seq ASC")
	}

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > math.MaxInt64 {
			limit = math.MaxInt64
		}
		stmt.WriteString(" LIMIT ?, ?")
		args = append(args, filter.Options.Offset, limit)
	}
	return db.queryEvents(ctx, stmt.String(), args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq      int64
			time     uint64
			txID     []byte
			txOrigin []byte
			address  []byte
			name     string
			topics   [3][]byte
			data     []byte
		)
		if err := rows.Scan(
			&seq,
			&time,
			&txID,
			&txOrigin,
			&address,
			&name,
			&topics[0],
			&topics[1],
			&topics[2],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:      sequence(seq).LedgerSeq(),
			Index:    sequence(seq).Index(),
			Time:     time,
			TxID:     core.BytesToBytes32(txID),
			TxOrigin: core.BytesToAddress(txOrigin),
			Address:  core.BytesToAddress(address),
			Name:     name,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := core.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		if len(data) > 0 {
			var values []*uint256.Int
			if err := rlp.DecodeBytes(data, &values); err != nil {
				return nil, errors.Wrap(err, "decode event values")
			}
			event.Values = values
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewWriter creates a writer accumulating the events of one ledger entry.
func (db *LogDB) NewWriter(seq, time uint64) *Writer {
	return &Writer{db: db, seq: seq, time: time}
}

// Writer writes the events of one ledger entry in a single sqlite transaction.
type Writer struct {
	db     *LogDB
	seq    uint64
	time   uint64
	events []*Event
}

// Write adds the events of a receipt. Reverted receipts carry none.
func (w *Writer) Write(receipt *tx.Receipt) *Writer {
	for _, output := range receipt.Outputs {
		w.WriteEvents(receipt.TxID, receipt.Origin, output.Events)
	}
	return w
}

// WriteEvents adds events emitted on behalf of origin.
func (w *Writer) WriteEvents(txID core.Bytes32, origin core.Address, events tx.Events) *Writer {
	for _, ev := range events {
		w.events = append(w.events, newEvent(w.seq, w.time, uint32(len(w.events)), txID, origin, ev))
	}
	return w
}

// Len returns the count of pending events.
func (w *Writer) Len() int {
	return len(w.events)
}

// Commit writes pending events.
func (w *Writer) Commit() (err error) {
	if len(w.events) == 0 {
		return nil
	}
	insert, err := w.db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}

	dbTx, err := w.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	stmt := dbTx.Stmt(insert)
	for _, ev := range w.events {
		var data []byte
		if len(ev.Values) > 0 {
			if data, err = rlp.EncodeToBytes(ev.Values); err != nil {
				return err
			}
		}
		if _, err = stmt.Exec(
			int64(newSequence(ev.Seq, ev.Index)),
			ev.Time,
			ev.TxID.Bytes(),
			ev.TxOrigin.Bytes(),
			ev.Address.Bytes(),
			ev.Name,
			topicValue(ev.Topics[0]),
			topicValue(ev.Topics[1]),
			topicValue(ev.Topics[2]),
			data,
		); err != nil {
			return err
		}
	}
	if err = dbTx.Commit(); err != nil {
		return err
	}
	w.events = nil
	return nil
}

func topicValue(topic *core.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
