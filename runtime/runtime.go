// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime is to support transaction execution.
type Runtime struct {
	state    *state.State
	chainTag byte
	seq      uint64
	time     uint64
}

// New create a Runtime object.
func New(state *state.State, chainTag byte, seq, time uint64) *Runtime {
	return &Runtime{
		state:    state,
		chainTag: chainTag,
		seq:      seq,
		time:     time,
	}
}

func (rt *Runtime) State() *state.State { return rt.state }
func (rt *Runtime) Seq() uint64          { return rt.seq }
func (rt *Runtime) Time() uint64         { return rt.time }

// Call executes single clause on behalf of origin.
func (rt *Runtime) Call(clause *tx.Clause, origin core.Address, txID core.Bytes32) (*tx.Output, error) {
	env := xenv.New(
		rt.state,
		&xenv.BlockContext{Number: rt.seq, Time: rt.time},
		&xenv.TransactionContext{ID: txID, Origin: origin},
	).WithCall(clause.To(), origin, clause.Args())

	data, err := builtin.Call(env, clause.Method())
	if err != nil {
		return nil, err
	}
	return &tx.Output{Data: data, Events: env.Events()}, nil
}

// ExecuteTransaction executes a transaction.
// A clause failing a require check reverts all clauses, and the receipt is
// marked reverted. Any other failure aborts execution with no receipt.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	resolvedTx, err := ResolveTransaction(trx, rt.chainTag)
	if err != nil {
		return nil, err
	}

	nonce, err := rt.state.GetNonce(resolvedTx.Origin)
	if err != nil {
		return nil, err
	}
	if trx.Nonce() != nonce+1 {
		return nil, badTx(ErrBadNonce)
	}
	// the nonce is consumed even if clauses revert
	if err := rt.state.SetNonce(resolvedTx.Origin, trx.Nonce()); err != nil {
		return nil, err
	}

	// checkpoint to be reverted when clause failure.
	clauseCheckpoint := rt.state.NewCheckpoint()

	receipt := &tx.Receipt{
		TxID:    trx.ID(),
		Origin:  resolvedTx.Origin,
		Seq:     rt.seq,
		Time:    rt.time,
		Outputs: make([]*tx.Output, 0, len(resolvedTx.Clauses)),
	}
	for i, clause := range resolvedTx.Clauses {
		output, err := rt.Call(clause, resolvedTx.Origin, receipt.TxID)
		if err != nil {
			reason, ok := reverts.Reason(err)
			if !ok {
				return nil, errors.WithMessagef(err, "clause %d", i)
			}
			// revert all executed clauses
			rt.state.RevertTo(clauseCheckpoint)
			receipt.Reverted = true
			receipt.RevertReason = reason
			receipt.Outputs = nil
			logger.Debug("tx reverted", "id", receipt.TxID, "clause", i, "reason", reason)
			break
		}
		receipt.Outputs = append(receipt.Outputs, output)
	}
	return receipt, nil
}
