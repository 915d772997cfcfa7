// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/logdb"
	"github.com/vechain/rewardpool/metrics"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/tx"
)

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewJSONHandler(os.Stderr, level))
		return
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewTerminalHandler(os.Stderr, level, useColor))
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".rewardpool")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, "load genesis")
	}
	return genesis.NewGenesis(cfg)
}

// makeInstanceDir returns the directory holding data of the given genesis.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	id := gene.ID()
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*muxdb.MuxDB, error) {
	cacheMB := max(ctx.Int(cacheFlag.Name), 16)
	db, err := muxdb.Open(filepath.Join(dir, "main.db"), &muxdb.Options{
		OpenFilesCacheCapacity: 500,
		ReadCacheMB:            cacheMB,
		WriteBufferMB:          cacheMB / 8,
		SyncWrites:             ctx.Bool(syncWritesFlag.Name),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	db, err := logdb.New(filepath.Join(dir, "logs.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open log database")
	}
	return db, nil
}

// handleAPITimeout bounds the context of plain requests. Websocket
// connections are long lived and left alone.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestBodyLimit caps request bodies at 200 KB.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

func listen(addr, name string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}
	return listener, nil
}

func newAPIServer(ctx *cli.Context, handler http.Handler) *http.Server {
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = requestBodyLimit(handler)
	return &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
}

func newMetricsServer() *http.Server {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return &http.Server{Handler: handlers.CompressHandler(router), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
}

// handleExitSignal returns a context cancelled on the first interrupt or
// terminate signal. A second signal kills the process.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()

		<-exitSignalCh
		log.Warn("forced exit")
		os.Exit(1)
	}()
	return ctx
}

func loadSigner(ctx *cli.Context) (*ecdsa.PrivateKey, core.Address, error) {
	if i := ctx.Int(devAccountFlag.Name); i >= 0 {
		accs := genesis.DevAccounts()
		if i >= len(accs) {
			return nil, core.Address{}, errors.Errorf("dev account index out of range [0, %d)", len(accs))
		}
		return accs[i].PrivateKey, accs[i].Address, nil
	}
	hexKey := strings.TrimPrefix(strings.TrimSpace(ctx.String(keyFlag.Name)), "0x")
	if hexKey == "" {
		return nil, core.Address{}, errors.New("either -key or -dev-account is required")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, core.Address{}, errors.Wrap(err, "parse key")
	}
	return key, core.Address(crypto.PubkeyToAddress(key.PublicKey)), nil
}

// parseClause parses <to>:<method>[:arg,...].
func parseClause(s string) (*tx.Clause, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return nil, errors.Errorf("malformed clause %q", s)
	}
	to, err := core.ParseAddress(parts[0])
	if err != nil {
		return nil, errors.WithMessagef(err, "clause %q: to", s)
	}
	clause := tx.NewClause(*to, parts[1])
	if len(parts) == 2 || parts[2] == "" {
		return clause, nil
	}

	var args []any
	for _, str := range strings.Split(parts[2], ",") {
		args = append(args, parseArg(strings.TrimSpace(str)))
	}
	return clause.WithArgs(args...)
}

// parseArg guesses the type of a command line arg: an address, an unsigned
// number, or a plain string.
func parseArg(s string) any {
	if addr, err := core.ParseAddress(s); err == nil && strings.HasPrefix(strings.ToLower(s), "0x") {
		return *addr
	}
	if n, err := uint256.FromDecimal(s); err == nil {
		return n
	}
	if strings.HasPrefix(s, "0x") {
		if n, err := uint256.FromHex(s); err == nil {
			return n
		}
	}
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}
