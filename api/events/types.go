// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/logdb"
)

type EventCriteria struct {
	Address *core.Address `json:"address"`
	Name    string        `json:"name"`
	Topic0  *core.Bytes32 `json:"topic0"`
	Topic1  *core.Bytes32 `json:"topic1"`
	Topic2  *core.Bytes32 `json:"topic2"`
}

// Range is an inclusive range of ledger time. A missing To leaves it open ended.
type Range struct {
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	TxID        *core.Bytes32    `json:"txID"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type LogMeta struct {
	Seq      uint64       `json:"seq"`
	Index    uint32       `json:"index"`
	Time     uint64       `json:"time"`
	TxID     core.Bytes32 `json:"txID"`
	TxOrigin core.Address `json:"txOrigin"`
}

type FilteredEvent struct {
	Address core.Address            `json:"address"`
	Name    string                  `json:"name"`
	Topics  []*core.Bytes32         `json:"topics"`
	Values  []*math.HexOrDecimal256 `json:"values"`
	Meta    LogMeta                 `json:"meta"`
}

func convertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	out := &logdb.Range{}
	if r.From != nil {
		out.From = *r.From
	}
	if r.To != nil {
		out.To = *r.To
	} else if out.From > 0 {
		// open ended
		out.To = out.From - 1
	} else {
		return nil
	}
	return out
}

// ConvertEventFilter converts a JSON filter into a logdb query.
func ConvertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		CriteriaSet: make([]*logdb.EventCriteria, 0, len(filter.CriteriaSet)),
		TxID:        filter.TxID,
		Range:       convertRange(filter.Range),
		Order:       filter.Order,
	}
	if filter.Options != nil {
		f.Options = &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		}
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Name:    c.Name,
			Topics:  [3]*core.Bytes32{c.Topic0, c.Topic1, c.Topic2},
		})
	}
	return f
}

// ConvertEvent converts an indexed event into its JSON form.
func ConvertEvent(ev *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  make([]*core.Bytes32, 0, len(ev.Topics)),
		Values:  make([]*math.HexOrDecimal256, 0, len(ev.Values)),
		Meta: LogMeta{
			Seq:      ev.Seq,
			Index:    ev.Index,
			Time:     ev.Time,
			TxID:     ev.TxID,
			TxOrigin: ev.TxOrigin,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	for _, v := range ev.Values {
		fe.Values = append(fe.Values, utils.Amount(v))
	}
	return fe
}
