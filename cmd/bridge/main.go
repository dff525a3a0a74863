// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/authority"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/logdb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/lvldb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/metrics"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/tokenpool"
)

var (
	version   string
	gitCommit string
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "bridge",
		Usage:     "staking ledger node of the Fantom cross-chain bridge",
		Copyright: "2025 The Fantom-CrossChain-Bridge developers",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
			faucetFlag,
			skipNTPCheckFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	if !ctx.Bool(skipNTPCheckFlag.Name) {
		checkClockDrift()
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	params, rate, owner, err := loadParams(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	dataDir := ctx.String(dataDirFlag.Name)
	var (
		mainDB *lvldb.LevelDB
		logDB  *logdb.LogDB
	)
	if dataDir == "" {
		log.Warn("data-dir not set, running in-memory")
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if logDB, err = logdb.NewMem(); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return err
		}
		if mainDB, err = lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{}); err != nil {
			return err
		}
		if logDB, err = logdb.New(filepath.Join(dataDir, "events.db")); err != nil {
			return err
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); logDB.Close() }()

	store := storage.NewStore(mainDB)
	pool := tokenpool.New(store)
	access := authority.New(store)

	if owner != (common.Address{}) {
		current, err := access.CurrentOwner()
		if err != nil {
			return err
		}
		if current == (common.Address{}) {
			if err := access.Transfer(current, owner); err != nil {
				return err
			}
			if err := store.Commit(); err != nil {
				return err
			}
		}
	}

	ledger := staking.New(store, pool, access, params)
	ledger.SetRecorder(logDB)

	if !rate.IsZero() {
		currentOwner, err := access.CurrentOwner()
		if err != nil {
			return err
		}
		now := uint64(time.Now().Unix())
		if err := ledger.SetRewardRate(currentOwner, rate, now); err != nil {
			return err
		}
	}

	var faucet *uint256.Int
	if raw := ctx.String(faucetFlag.Name); raw != "" {
		if faucet, err = uint256.FromDecimal(raw); err != nil {
			return errors.Wrap(err, "invalid faucet amount")
		}
		log.Warn("on-demand faucet enabled", "grant", faucet.Dec())
	}

	handler, subs := api.New(ledger, pool, store, logDB, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:      1000,
		Faucet:         faucet,
	})
	ledger.SetWeightSubscriber(subs)

	listener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to listen API addr")
	}
	srv := &http.Server{Handler: handler}

	var goes errgroup.Group
	goes.Go(func() error {
		log.Info("API started", "addr", "http://"+listener.Addr().String())
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	goes.Go(func() error {
		<-handleExitSignal()
		log.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return goes.Wait()
}
