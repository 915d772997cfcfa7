// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/runtime"
)

type Transactions struct {
	ledger *ledger.Ledger
	clock  func() uint64
}

// New creates the transactions api. Submitted transactions execute at the
// time given by clock, which never goes behind the ledger head.
func New(ledger *ledger.Ledger, clock func() uint64) *Transactions {
	return &Transactions{
		ledger,
		clock,
	}
}

func (t *Transactions) now() uint64 {
	now := t.clock()
	if head := t.ledger.Head(); now < head.Time {
		return head.Time
	}
	return now
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw RawTx
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	trx, err := raw.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	receipt, err := t.ledger.Execute(trx, t.now())
	if err != nil {
		if runtime.IsBadTx(err) {
			metricTxSubmitted().AddWithLabel(1, map[string]string{"result": "bad"})
			return utils.BadRequest(errors.WithMessage(err, "bad tx"))
		}
		if errors.Is(err, ledger.ErrClockBackwards) {
			return utils.Forbidden(err)
		}
		return err
	}
	metricTxSubmitted().AddWithLabel(1, map[string]string{"result": "accepted"})
	return utils.WriteJSON(w, ConvertReceipt(receipt))
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	txID, err := core.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	receipt, err := t.ledger.GetReceipt(txID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return utils.NotFound(errors.New("receipt not found"))
		}
		return err
	}
	return utils.WriteJSON(w, ConvertReceipt(receipt))
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transactions").
		HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{id}/receipt").
		Methods(http.MethodGet).
		Name("GET /transactions/{id}/receipt").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
