// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/rewardpool/core"
)

// Receipt represents the results of a transaction.
type Receipt struct {
	TxID   core.Bytes32
	Origin core.Address
	// Seq is the ledger sequence number the tx was committed at.
	Seq  uint64
	Time uint64
	// Reverted is set when any clause failed a require check.
	// A reverted tx keeps no effects but consumes its nonce.
	Reverted     bool
	RevertReason string
	// Outputs has one entry per clause, empty when reverted.
	Outputs []*Output
}

// Output output of clause execution.
type Output struct {
	// Data is the rlp encoded return value, if any.
	Data   []byte
	Events Events
}

// Receipts slice of receipts.
type Receipts []*Receipt
