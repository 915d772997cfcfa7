// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/runtime"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

// Builder helper to build genesis state.
type Builder struct {
	chainTag  byte
	timestamp uint64

	stateProcs []func(env *xenv.Environment) error
	calls      []call
}

type call struct {
	clause *tx.Clause
	caller core.Address
}

// ChainTag set chain tag.
func (b *Builder) ChainTag(tag byte) *Builder {
	b.chainTag = tag
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process. Processes run before calls.
func (b *Builder) State(proc func(env *xenv.Environment) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call.
func (b *Builder) Call(clause *tx.Clause, caller core.Address) *Builder {
	b.calls = append(b.calls, call{clause, caller})
	return b
}

// Build applies the presets to st and returns the events they emitted.
func (b *Builder) Build(st *state.State) (events tx.Events, err error) {
	env := xenv.New(st, &xenv.BlockContext{Time: b.timestamp}, nil)
	for _, proc := range b.stateProcs {
		if err := proc(env); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}
	events = append(events, env.Events()...)

	rt := runtime.New(st, b.chainTag, 0, b.timestamp)
	for i, call := range b.calls {
		out, err := rt.Call(call.clause, call.caller, core.Bytes32{})
		if err != nil {
			if reason, ok := reverts.Reason(err); ok {
				return nil, errors.Errorf("call %d (%v) reverted: %v", i, call.clause.Method(), reason)
			}
			return nil, errors.Wrapf(err, "call %d", i)
		}
		events = append(events, out.Events...)
	}
	return events, nil
}
