// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb implements the storage layer of the ledger.
// It multiplexes a single leveldb instance into named kv-stores.
package muxdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/rewardpool/kv"
)

const (
	namedStoreSpace = byte(0) // the key space for named store.
	propStoreName   = "muxdb.props"
	configKey       = "config"

	schemaVersion = 1
)

// Options optional parameters for MuxDB.
type Options struct {
	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int
	// SyncWrites forces fsync on every write.
	SyncWrites bool
}

// MuxDB is the database to persist ledger data.
type MuxDB struct {
	engine engine
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	ldbOpts := opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.ReadCacheMB * opt.MiB,
		WriteBuffer:            options.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}

	ldb, err := leveldb.OpenFile(path, &ldbOpts)
	if _, corrupted := err.(*dberrors.ErrCorrupted); corrupted {
		ldb, err = leveldb.RecoverFile(path, &ldbOpts)
	}
	if err != nil {
		return nil, err
	}

	db := &MuxDB{engine: newLevelEngine(ldb, options.SyncWrites)}
	if err := db.checkConfig(); err != nil {
		ldb.Close()
		return nil, err
	}
	return db, nil
}

// NewMem creates a memory-backed DB.
func NewMem() *MuxDB {
	ldb, _ := leveldb.Open(storage.NewMemStorage(), nil)
	return &MuxDB{engine: newLevelEngine(ldb, false)}
}

// Close closes the DB.
func (db *MuxDB) Close() error {
	return db.engine.Close()
}

// NewStore creates named kv-store.
func (db *MuxDB) NewStore(name string) kv.Store {
	return kv.Bucket(string(namedStoreSpace) + name).NewStore(db.engine)
}

// Batch runs fn against an atomic write batch spanning all named stores.
// Use Bucket.NewPutter to address a named store within the batch.
func (db *MuxDB) Batch(fn func(kv.Putter) error) error {
	return db.engine.Batch(fn)
}

// Snapshot runs fn against a consistent view spanning all named stores.
func (db *MuxDB) Snapshot(fn func(kv.Getter) error) error {
	return db.engine.Snapshot(fn)
}

// StoreBucket returns the bucket backing the named store.
func StoreBucket(name string) kv.Bucket {
	return kv.Bucket(string(namedStoreSpace) + name)
}

type config struct {
	Version int
}

// checkConfig persists the schema version and refuses to open a database
// written with another layout.
func (db *MuxDB) checkConfig() error {
	store := db.NewStore(propStoreName)

	data, err := store.Get([]byte(configKey))
	if err != nil {
		if !store.IsNotFound(err) {
			return errors.Wrap(err, "load config")
		}
		data, err := json.Marshal(&config{Version: schemaVersion})
		if err != nil {
			return err
		}
		return store.Put([]byte(configKey), data)
	}

	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return errors.Wrap(err, "decode config")
	}
	if cfg.Version != schemaVersion {
		return errors.Errorf("incompatible schema version %d, want %d", cfg.Version, schemaVersion)
	}
	return nil
}
