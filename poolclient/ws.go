// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/events"
	"github.com/vechain/rewardpool/core"
)

// EventCriteria selects the events delivered by SubscribeEvents.
type EventCriteria struct {
	Address *core.Address
	Name    string
	Topics  [3]*core.Bytes32
	// Pos replays events committed after this seq. Nil starts at the head.
	Pos *uint64
}

func (c *EventCriteria) query() url.Values {
	query := url.Values{}
	if c == nil {
		return query
	}
	if c.Address != nil {
		query.Set("address", c.Address.String())
	}
	if c.Name != "" {
		query.Set("name", c.Name)
	}
	for i, topic := range c.Topics {
		if topic != nil {
			query.Set("t"+strconv.Itoa(i), topic.String())
		}
	}
	if c.Pos != nil {
		query.Set("pos", strconv.FormatUint(*c.Pos, 10))
	}
	return query
}

// EventOrError carries a subscribed event, or the error that ended the subscription.
type EventOrError struct {
	Event *events.FilteredEvent
	Error error
}

// SubscribeEvents streams matching events until ctx is done or the
// connection drops. The last value delivered before the channel is closed
// carries the error, if any.
func (c *Client) SubscribeEvents(ctx context.Context, criteria *EventCriteria) (<-chan EventOrError, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, errors.Errorf("invalid url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/subscriptions/event"
	u.RawQuery = criteria.query().Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, errors.WithMessagef(err, "subscribe events: status %d", resp.StatusCode)
		}
		return nil, errors.WithMessage(err, "subscribe events")
	}

	ch := make(chan EventOrError)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(ch)
		defer close(done)
		defer conn.Close()
		for {
			var ev events.FilteredEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return
				}
				select {
				case ch <- EventOrError{Error: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- EventOrError{Event: &ev}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
