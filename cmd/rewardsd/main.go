// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// rewardsd serves a staking rewards pool over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakingrewards/api"
	"github.com/vechain/stakingrewards/co"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/metrics"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/state"
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
		Version: fullVersion(),
		Name:    "rewardsd",
		Usage:   "Staking rewards pool",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			dbEngineFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			enableAdminFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "replay",
				Usage: "replay a YAML scenario against an in-memory pool and print the outcome",
				Flags: []cli.Flag{
					scenarioFlag,
					genesisFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: replayAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))

	// enable metrics as soon as possible
	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); store.Close() }()

	logDB, err := openLogDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	exec, _, err := initPool(gene, state.New(store), logDB, runtime.SystemClock{})
	if err != nil {
		return err
	}

	var enableAPILogs atomic.Bool
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	opts := api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      &enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
	}
	if ctx.Bool(enableAdminFlag.Name) {
		opts.LogLevel = logLevel
	}

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), api.New(exec, logDB, opts))
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	seq, last, err := exec.Head()
	if err != nil {
		return err
	}
	log.Info("pool started",
		"genesis", gene.Name(),
		"id", gene.ID(),
		"instance", instanceDir,
		"seq", seq,
		"lastTime", last,
		"api", apiURL,
		"metrics", metricsURL,
	)

	var goes co.Goes
	goes.Go(func(ctx context.Context) { reportPool(ctx, exec, time.Minute) })
	defer goes.Stop()

	<-exitSignal.Done()
	return nil
}

func replayAction(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	// the result goes to stdout, keep it clean
	initLogger(min(lvl, log.LegacyLevelWarn), ctx.Bool(jsonLogsFlag.Name))

	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		return errors.New("missing --scenario")
	}
	scenario, err := loadScenario(path)
	if err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	result, err := replay(handleExitSignal(), gene, scenario)
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, result)
}
