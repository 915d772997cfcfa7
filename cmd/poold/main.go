// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewardpool/api"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/metrics"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/poolclient"
	"github.com/vechain/rewardpool/tx"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "poold",
		Usage:     "Time-released staking reward pool",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			memFlag,
			cacheFlag,
			syncWritesFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			skipLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "accounts",
				Usage:  "list the devnet accounts",
				Action: accountsAction,
			},
			{
				Name:  "sign",
				Usage: "build and sign a transaction, print it in the form accepted by POST /transactions",
				Flags: []cli.Flag{
					genesisFlag,
					keyFlag,
					devAccountFlag,
					nonceFlag,
					chainTagFlag,
					clauseFlag,
					submitFlag,
				},
				Action: signAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	initLogger(ctx)
	defer func() { log.Info("exited") }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB      *muxdb.MuxDB
		logDB       *logdb.LogDB
		instanceDir = "memory"
	)
	if ctx.Bool(memFlag.Name) {
		mainDB = muxdb.NewMem()
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = logdb.NewMem(); err != nil {
				return err
			}
		}
	} else {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = openLogDB(instanceDir); err != nil {
				mainDB.Close()
				return err
			}
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	if logDB != nil {
		defer func() { log.Info("closing log database..."); logDB.Close() }()
	}

	l, err := ledger.New(mainDB, gene, logDB)
	if err != nil {
		return err
	}
	defer l.Close()

	handler, closeAPI := api.New(l, logDB, api.Options{
		AllowedOrigins:     ctx.String(apiCorsFlag.Name),
		BacktraceLimit:     ctx.Uint64(apiBacktraceLimitFlag.Name),
		LogsLimit:          ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:            ctx.Bool(pprofFlag.Name),
		SkipLogs:           ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:    ctx.Bool(enableAPILogsFlag.Name),
		SlowQueryThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:      ctx.Bool(enableMetricsFlag.Name),
	})

	type server struct {
		name     string
		srv      *http.Server
		listener net.Listener
	}
	apiListener, err := listen(ctx.String(apiAddrFlag.Name), "API")
	if err != nil {
		return err
	}
	servers := []server{{"API", newAPIServer(ctx, handler), apiListener}}
	metricsURL := "disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsListener, err := listen(ctx.String(metricsAddrFlag.Name), "metrics")
		if err != nil {
			apiListener.Close()
			return err
		}
		servers = append(servers, server{"metrics", newMetricsServer(), metricsListener})
		metricsURL = "http://" + metricsListener.Addr().String() + "/metrics"
	}

	printStartupMessage(gene, l, instanceDir, "http://"+apiListener.Addr().String()+"/", metricsURL)

	g, gctx := errgroup.WithContext(handleExitSignal())
	for _, s := range servers {
		g.Go(func() error {
			if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "%v server", s.name)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		// hijacked websocket connections are not tracked by Shutdown
		closeAPI()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, s := range servers {
			log.Info("stopping server...", "name", s.name)
			if err := s.srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("server shutdown", "name", s.name, "err", err)
			}
		}
		return nil
	})
	return g.Wait()
}

func printStartupMessage(gene *genesis.Genesis, l *ledger.Ledger, instanceDir, apiURL, metricsURL string) {
	head := l.Head()
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Head         [ #%v @%v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		"poold "+fullVersion(),
		gene.ID(), gene.Name(),
		head.Seq, time.Unix(int64(head.Time), 0).UTC(),
		instanceDir,
		apiURL,
		metricsURL,
	)
}

func accountsAction(ctx *cli.Context) error {
	for i, acc := range genesis.DevAccounts() {
		fmt.Printf("%d %v 0x%x\n", i, acc.Address, crypto.FromECDSA(acc.PrivateKey))
	}
	return nil
}

func signAction(ctx *cli.Context) error {
	key, origin, err := loadSigner(ctx)
	if err != nil {
		return err
	}

	chainTag := ctx.Int(chainTagFlag.Name)
	if chainTag < 0 {
		gene, err := selectGenesis(ctx)
		if err != nil {
			return err
		}
		chainTag = int(gene.ChainTag())
	}
	if chainTag > 0xff {
		return errors.Errorf("chain tag out of range: %d", chainTag)
	}

	clauses := ctx.StringSlice(clauseFlag.Name)
	if len(clauses) == 0 {
		return errors.New("at least one -clause is required")
	}
	builder := tx.NewBuilder(byte(chainTag)).Nonce(ctx.Uint64(nonceFlag.Name))
	for _, s := range clauses {
		clause, err := parseClause(s)
		if err != nil {
			return err
		}
		builder.Clause(clause)
	}
	trx, err := tx.Sign(builder.Build(), key)
	if err != nil {
		return err
	}
	raw, err := rlp.EncodeToBytes(trx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "origin %v\nid     %v\n%v\n", origin, trx.ID(), strings.TrimSpace(trx.String()))

	apiURL := ctx.String(submitFlag.Name)
	if apiURL == "" {
		fmt.Printf(`{"raw":"%v"}`+"\n", hexutil.Encode(raw))
		return nil
	}
	receipt, err := poolclient.New(apiURL).SendTransaction(trx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
