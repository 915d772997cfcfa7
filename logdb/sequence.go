// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "math"

// sequence orders events: the ledger sequence in the high 32 bits, the
// event index within that ledger entry in the low 31 bits.
type sequence int64

func newSequence(ledgerSeq uint64, index uint32) sequence {
	if ledgerSeq > math.MaxUint32 {
		panic("ledger sequence too large")
	}
	if (index & math.MaxInt32) != index {
		panic("index too large")
	}
	return (sequence(ledgerSeq) << 31) | sequence(index)
}

func (s sequence) LedgerSeq() uint64 {
	return uint64(s >> 31)
}

func (s sequence) Index() uint32 {
	return uint32(s & math.MaxInt32)
}
