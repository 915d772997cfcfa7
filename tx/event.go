// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
)

// Event is emitted by a built-in contract.
// Topics carry indexed arguments (addresses and roles), Values carry the rest.
type Event struct {
	Address core.Address
	Name    string
	Topics  []core.Bytes32
	Values  []*uint256.Int
}

// NewEvent creates an event.
func NewEvent(addr core.Address, name string) *Event {
	return &Event{Address: addr, Name: name}
}

// WithTopics appends address topics.
func (e *Event) WithTopics(addrs ...core.Address) *Event {
	for _, a := range addrs {
		e.Topics = append(e.Topics, core.BytesToBytes32(a.Bytes()))
	}
	return e
}

// WithRawTopics appends raw 32-byte topics.
func (e *Event) WithRawTopics(topics ...core.Bytes32) *Event {
	e.Topics = append(e.Topics, topics...)
	return e
}

// WithValues appends values.
func (e *Event) WithValues(values ...*uint256.Int) *Event {
	for _, v := range values {
		e.Values = append(e.Values, new(uint256.Int).Set(v))
	}
	return e
}

// Events slice of event logs.
type Events []*Event
