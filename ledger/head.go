// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"

	"github.com/vechain/rewardpool/core"
)

// Head describes the last committed ledger entry.
type Head struct {
	Seq  uint64
	Time uint64
	// StateRoot chains the digest of every committed state change,
	// starting from the genesis id.
	StateRoot core.Bytes32
	TxID      core.Bytes32 // zero for genesis
}

func nextRoot(prev, stageHash core.Bytes32) core.Bytes32 {
	return core.Blake2b(prev.Bytes(), stageHash.Bytes())
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}
