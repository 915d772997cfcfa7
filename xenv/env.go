// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/tx"
)

// BlockContext carries the ledger position a call executes at.
type BlockContext struct {
	Number uint64
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     core.Bytes32
	Origin core.Address
}

// ErrBadInput is the cause of failures decoding native call arguments.
var ErrBadInput = errors.New("bad native input")

type vmError struct {
	cause error
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	to       core.Address
	caller   core.Address
	args     []byte
	events   tx.Events
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
) *Environment {
	if txCtx == nil {
		txCtx = &TransactionContext{}
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
	}
}

// WithCall returns a copy of env bound to a call of the contract at to.
// Events logged by the copy are kept apart from the parent.
func (env *Environment) WithCall(to, caller core.Address, args []byte) *Environment {
	return &Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		txCtx:    env.txCtx,
		to:       to,
		caller:   caller,
		args:     args,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) BlockTime() uint64                       { return env.blockCtx.Time }
func (env *Environment) Caller() core.Address                    { return env.caller }
func (env *Environment) To() core.Address                        { return env.to }

// ParseArgs decodes the rlp encoded call arguments into val.
func (env *Environment) ParseArgs(val any) {
	if err := rlp.DecodeBytes(env.args, val); err != nil {
		panic(&vmError{errors.Wrap(ErrBadInput, err.Error())})
	}
}

// Stop aborts the running call with err.
func (env *Environment) Stop(err error) {
	panic(&vmError{err})
}

// Log records an event.
func (env *Environment) Log(ev *tx.Event) {
	env.events = append(env.events, ev)
}

// Events returns events logged so far.
func (env *Environment) Events() tx.Events {
	return env.events
}

// Call wraps proc so that failures raised with Stop or ParseArgs come back as errors.
func (env *Environment) Call(proc func(env *Environment) any) func() ([]byte, error) {
	return func() (data []byte, err error) {
		defer func() {
			if e := recover(); e != nil {
				if rec, ok := e.(*vmError); ok {
					err = rec.cause
				} else {
					panic(e)
				}
			}
		}()
		output := proc(env)
		if output == nil {
			return nil, nil
		}
		data, err = rlp.EncodeToBytes(output)
		if err != nil {
			panic(errors.WithMessage(err, "encode native output"))
		}
		return
	}
}
