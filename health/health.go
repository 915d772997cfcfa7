// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/ledger"
)

type HeadIngestion struct {
	Seq        uint64       `json:"seq"`
	TxID       core.Bytes32 `json:"txID"`
	IngestedAt *time.Time   `json:"ingestedAt"`
}

type Status struct {
	Healthy bool           `json:"healthy"`
	Head    *HeadIngestion `json:"head"`
	Storage bool           `json:"storage"`
	Error   string         `json:"error,omitempty"`
}

type Health struct {
	lock       sync.RWMutex
	head       ledger.Head
	ingestedAt *time.Time
	probe      func() error
}

// New creates a Health whose storage check runs probe.
func New(probe func() error) *Health {
	return &Health{probe: probe}
}

func (h *Health) NewHead(head ledger.Head) {
	h.lock.Lock()
	defer h.lock.Unlock()

	now := time.Now()
	h.head = head
	h.ingestedAt = &now
}

// Status is healthy when the storage answers.
func (h *Health) Status() *Status {
	h.lock.RLock()
	ingestion := &HeadIngestion{
		Seq:        h.head.Seq,
		TxID:       h.head.TxID,
		IngestedAt: h.ingestedAt,
	}
	h.lock.RUnlock()

	status := &Status{Head: ingestion, Storage: true}
	if h.probe != nil {
		if err := h.probe(); err != nil {
			status.Storage = false
			status.Error = err.Error()
		}
	}
	status.Healthy = status.Storage
	return status
}

// Watch follows the head of l until ctx is done.
func (h *Health) Watch(ctx context.Context, l *ledger.Ledger) {
	waiter := l.NewHeadWaiter()
	h.NewHead(l.Head())
	for {
		select {
		case <-ctx.Done():
			return
		case <-waiter.C():
			h.NewHead(l.Head())
		}
	}
}
