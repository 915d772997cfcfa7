// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/events"
	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/co"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/tx"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	receiptsBacklog = 64
)

// pingPeriod must be less than pongWait.
var pingPeriod = (pongWait * 7) / 10

type Subscriptions struct {
	ledger         *ledger.Ledger
	backtraceLimit uint64
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

// New creates the subscriptions api. A subscriber may replay at most
// backtraceLimit ledger entries before following new ones.
func New(ledger *ledger.Ledger, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		ledger:         ledger,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") ||
					slices.Contains(allowedOrigins, strings.ToLower(origin))
			},
		},
		done: make(chan struct{}),
	}
}

func parseCriteria(req *http.Request) (*logdb.EventCriteria, error) {
	query := req.URL.Query()
	criteria := &logdb.EventCriteria{Name: query.Get("name")}
	if s := query.Get("address"); s != "" {
		addr, err := core.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "address")
		}
		criteria.Address = addr
	}
	for i := range criteria.Topics {
		key := "t" + strconv.Itoa(i)
		if s := query.Get(key); s != "" {
			topic, err := core.ParseBytes32(s)
			if err != nil {
				return nil, errors.WithMessage(err, key)
			}
			criteria.Topics[i] = &topic
		}
	}
	return criteria, nil
}

func (s *Subscriptions) handleEventSub(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseCriteria(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	// subscribe before reading the head, so no entry falls in between
	ch := make(chan *tx.Receipt, receiptsBacklog)
	sub := s.ledger.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	head := s.ledger.Head()
	pos, err := utils.ParseUint64Query(req, "pos", head.Seq)
	if err != nil {
		return err
	}
	if pos > head.Seq {
		return utils.BadRequest(errors.New("pos: ahead of ledger head"))
	}
	if head.Seq-pos > s.backtraceLimit {
		return utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}

	s.wg.Add(1)
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has replied already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	var goes co.Goes
	defer goes.Wait()
	closed := make(chan struct{})
	goes.Go(func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	if err := s.serve(conn, criteria, pos, head.Seq, ch, sub.Err(), closed); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	conn.Close()
	return nil
}

func (s *Subscriptions) serve(
	conn *websocket.Conn,
	criteria *logdb.EventCriteria,
	pos, headSeq uint64,
	ch <-chan *tx.Receipt,
	subErr <-chan error,
	closed <-chan struct{},
) error {
	send := func(receipt *tx.Receipt) error {
		for _, ev := range logdb.ReceiptEvents(receipt) {
			if !criteria.Match(ev) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(events.ConvertEvent(ev)); err != nil {
				return err
			}
		}
		return nil
	}

	// replay sends the committed receipts in (from, to]
	replay := func(from, to uint64) error {
		for seq := from + 1; seq <= to; seq++ {
			txID, err := s.ledger.TxIDAt(seq)
			if err != nil {
				return err
			}
			receipt, err := s.ledger.GetReceipt(txID)
			if err != nil {
				return err
			}
			if err := send(receipt); err != nil {
				return err
			}
		}
		return nil
	}

	if err := replay(pos, headSeq); err != nil {
		return err
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	last := headSeq
	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-subErr:
			return err
		case receipt := <-ch:
			if receipt.Seq <= last {
				continue
			}
			if err := replay(last, receipt.Seq-1); err != nil {
				return err
			}
			last = receipt.Seq
			if err := send(receipt); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends all subscriptions and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleEventSub))
}
