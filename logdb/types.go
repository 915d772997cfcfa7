// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq      uint64 // ledger sequence
	Index    uint32 // position within the ledger entry
	Time     uint64
	TxID     core.Bytes32
	TxOrigin core.Address
	Address  core.Address // the emitting contract
	Name     string
	Topics   [3]*core.Bytes32
	Values   []*uint256.Int
}

func newEvent(seq uint64, time uint64, index uint32, txID core.Bytes32, txOrigin core.Address, ev *tx.Event) *Event {
	e := &Event{
		Seq:      seq,
		Index:    index,
		Time:     time,
		TxID:     txID,
		TxOrigin: txOrigin,
		Address:  ev.Address,
		Name:     ev.Name,
		Values:   ev.Values,
	}
	for i := 0; i < len(ev.Topics) && i < len(e.Topics); i++ {
		topic := ev.Topics[i]
		e.Topics[i] = &topic
	}
	return e
}

// ReceiptEvents flattens the events of receipt in the order they are indexed.
func ReceiptEvents(receipt *tx.Receipt) []*Event {
	var events []*Event
	for _, output := range receipt.Outputs {
		for _, ev := range output.Events {
			events = append(events, newEvent(receipt.Seq, receipt.Time, uint32(len(events)), receipt.TxID, receipt.Origin, ev))
		}
	}
	return events
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive time range. A To lower than From leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events field by field; nil fields match anything.
type EventCriteria struct {
	Address *core.Address
	Name    string
	Topics  [3]*core.Bytes32
}

// Match reports whether ev satisfies the criteria.
func (c *EventCriteria) Match(ev *Event) bool {
	if c.Address != nil && *c.Address != ev.Address {
		return false
	}
	if c.Name != "" && c.Name != ev.Name {
		return false
	}
	for i, topic := range c.Topics {
		if topic != nil && (ev.Topics[i] == nil || *topic != *ev.Topics[i]) {
			return false
		}
	}
	return true
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	TxID        *core.Bytes32
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
