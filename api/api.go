// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/rewardpool/api/events"
	"github.com/vechain/rewardpool/api/node"
	"github.com/vechain/rewardpool/api/pools"
	"github.com/vechain/rewardpool/api/subscriptions"
	"github.com/vechain/rewardpool/api/tokens"
	"github.com/vechain/rewardpool/api/transactions"
	"github.com/vechain/rewardpool/co"
	"github.com/vechain/rewardpool/health"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins     string
	BacktraceLimit     uint64
	LogsLimit          uint64
	PprofOn            bool
	SkipLogs           bool
	EnableReqLogger    bool
	SlowQueryThreshold time.Duration
	EnableMetrics      bool
	// Clock gives the execution time of submitted transactions, in unix seconds.
	Clock func() uint64
}

func defaultClock() uint64 {
	return uint64(time.Now().Unix())
}

// New return api router
func New(
	l *ledger.Ledger,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	clock := opts.Clock
	if clock == nil {
		clock = defaultClock
	}

	router := mux.NewRouter()

	pools.New(l, clock).
		Mount(router, "/pools")
	tokens.New(l).
		Mount(router, "/tokens")
	transactions.New(l, clock).
		Mount(router, "/transactions")
	if !opts.SkipLogs && logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	hc := health.New(func() error {
		return l.View(0, func(*xenv.Environment, *ledger.Head) error { return nil })
	})
	ctx, cancel := context.WithCancel(context.Background())
	var goes co.Goes
	goes.Go(func() { hc.Watch(ctx, l) })
	node.New(l, hc).
		Mount(router, "/node")
	subs := subscriptions.New(l, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger, opts.SlowQueryThreshold)
	}

	return handler.ServeHTTP, func() {
		cancel()
		goes.Wait()
		subs.Close() // subscriptions handles hijacked conns, which need to be closed
	}
}
