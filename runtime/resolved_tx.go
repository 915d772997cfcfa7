// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
)

// ResolvedTransaction resolve the transaction according to given state.
type ResolvedTransaction struct {
	tx      *tx.Transaction
	Origin  core.Address
	Clauses []*tx.Clause
}

// ResolveTransaction resolves the transaction and performs basic validation.
func ResolveTransaction(trx *tx.Transaction, chainTag byte) (*ResolvedTransaction, error) {
	if trx.ChainTag() != chainTag {
		return nil, badTx(errors.Errorf("chain tag mismatch: want %v, got %v", chainTag, trx.ChainTag()))
	}
	origin, err := trx.Origin()
	if err != nil {
		return nil, badTx(errors.Wrap(err, "recover origin"))
	}
	clauses := trx.Clauses()
	if len(clauses) == 0 {
		return nil, badTx(errors.New("tx without clauses"))
	}
	for _, clause := range clauses {
		if clause.Method() == "" {
			return nil, badTx(errors.New("clause without method"))
		}
	}
	return &ResolvedTransaction{
		tx:      trx,
		Origin:  origin,
		Clauses: clauses,
	}, nil
}
