// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testledger provides an in-memory dev network ledger for tests.
package testledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/tx"
)

// Well-known dev network addresses.
var (
	StakeToken  = builtin.TokenAddress(0)
	RewardToken = builtin.TokenAddress(1)
	Pool        = builtin.PoolAddress(0)
)

// Ledger wraps a ledger over in-memory databases built from the dev genesis.
type Ledger struct {
	*ledger.Ledger
	db    *muxdb.MuxDB
	logDB *logdb.LogDB
}

// New creates a dev network ledger.
func New() (*Ledger, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a ledger built from gene.
func NewWithGenesis(gene *genesis.Genesis) (*Ledger, error) {
	db := muxdb.NewMem()
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(db, gene, logDB)
	if err != nil {
		logDB.Close()
		return nil, err
	}
	return &Ledger{l, db, logDB}, nil
}

// LogDB returns the event index.
func (l *Ledger) LogDB() *logdb.LogDB { return l.logDB }

// LaunchTime returns the genesis timestamp.
func (l *Ledger) LaunchTime() uint64 { return l.Genesis().Timestamp() }

// Close releases the ledger and its databases.
func (l *Ledger) Close() {
	l.Ledger.Close()
	l.logDB.Close()
	l.db.Close()
}

// BuildTx signs a transaction of acc carrying the next nonce.
func (l *Ledger) BuildTx(acc genesis.DevAccount, clauses ...*tx.Clause) (*tx.Transaction, error) {
	nonce, err := l.Nonce(acc.Address)
	if err != nil {
		return nil, err
	}
	b := tx.NewBuilder(l.ChainTag()).Nonce(nonce + 1)
	for _, c := range clauses {
		b.Clause(c)
	}
	return tx.Sign(b.Build(), acc.PrivateKey)
}

// Exec builds, signs and executes a transaction of acc at time now.
func (l *Ledger) Exec(acc genesis.DevAccount, now uint64, clauses ...*tx.Clause) (*tx.Receipt, error) {
	trx, err := l.BuildTx(acc, clauses...)
	if err != nil {
		return nil, err
	}
	return l.Execute(trx, now)
}

// StakeClauses approves the pool and stakes amount into it.
func StakeClauses(pool, stakeToken core.Address, amount *uint256.Int) []*tx.Clause {
	return []*tx.Clause{
		tx.NewClause(stakeToken, "approve").MustWithArgs(pool, amount),
		tx.NewClause(pool, "stake").MustWithArgs(amount),
	}
}
