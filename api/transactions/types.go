// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
)

// RawTx is a signed, rlp encoded transaction.
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	trx, err := tx.Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, "decode tx")
	}
	return trx, nil
}

type Event struct {
	Address core.Address            `json:"address"`
	Name    string                  `json:"name"`
	Topics  []core.Bytes32          `json:"topics"`
	Values  []*math.HexOrDecimal256 `json:"values"`
}

type Output struct {
	Data   hexutil.Bytes `json:"data"`
	Events []*Event      `json:"events"`
}

type Receipt struct {
	TxID         core.Bytes32 `json:"txID"`
	Origin       core.Address `json:"origin"`
	Seq          uint64       `json:"seq"`
	Time         uint64       `json:"time"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
	Outputs      []*Output    `json:"outputs"`
}

// ConvertEvent converts an event into its JSON form.
func ConvertEvent(ev *tx.Event) *Event {
	out := &Event{
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  ev.Topics,
		Values:  make([]*math.HexOrDecimal256, 0, len(ev.Values)),
	}
	if out.Topics == nil {
		out.Topics = []core.Bytes32{}
	}
	for _, v := range ev.Values {
		out.Values = append(out.Values, utils.Amount(v))
	}
	return out
}

// ConvertReceipt converts a receipt into its JSON form.
func ConvertReceipt(receipt *tx.Receipt) *Receipt {
	r := &Receipt{
		TxID:         receipt.TxID,
		Origin:       receipt.Origin,
		Seq:          receipt.Seq,
		Time:         receipt.Time,
		Reverted:     receipt.Reverted,
		RevertReason: receipt.RevertReason,
		Outputs:      make([]*Output, 0, len(receipt.Outputs)),
	}
	for _, o := range receipt.Outputs {
		out := &Output{
			Data:   o.Data,
			Events: make([]*Event, 0, len(o.Events)),
		}
		for _, ev := range o.Events {
			out.Events = append(out.Events, ConvertEvent(ev))
		}
		r.Outputs = append(r.Outputs, out)
	}
	return r
}
