// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/binary"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/tx"
)

// Genesis to build the initial ledger state.
type Genesis struct {
	builder *Builder
	id      core.Bytes32
	name    string
}

func newGenesis(builder *Builder, name string) *Genesis {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], builder.timestamp)
	return &Genesis{
		builder: builder,
		id:      core.Blake2b([]byte(name), []byte{builder.chainTag}, ts[:]),
		name:    name,
	}
}

// Build applies genesis presets to st.
func (g *Genesis) Build(st *state.State) (tx.Events, error) {
	return g.builder.Build(st)
}

// ID returns the genesis id. It seeds the ledger state root chain.
func (g *Genesis) ID() core.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// ChainTag returns the tag transactions must carry.
func (g *Genesis) ChainTag() byte {
	return g.builder.chainTag
}

// Timestamp returns the ledger start time.
func (g *Genesis) Timestamp() uint64 {
	return g.builder.timestamp
}
