// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakingrewards/co"
	"github.com/vechain/stakingrewards/genesis"
	"github.com/vechain/stakingrewards/kv"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/lvldb"
	"github.com/vechain/stakingrewards/metrics"
	"github.com/vechain/stakingrewards/pebbledb"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/tx"
)

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("flag value %d is too large", val)
	}
	return int(val), nil
}

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	output := io.Writer(os.Stdout)
	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(output, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(output, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return genesis.New(name[:len(name)-len(filepath.Ext(name))], cfg)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".rewardsd")
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

// makeInstanceDir returns the per-genesis directory, so that pools with
// different configs never share databases.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openStore(ctx *cli.Context, instanceDir string) (kv.StoreCloser, error) {
	engine := ctx.String(dbEngineFlag.Name)
	persist := ctx.BoolT(persistFlag.Name)

	switch engine {
	case "leveldb":
		if !persist {
			return lvldb.NewMem()
		}
		cacheMB := ctx.Int(cacheFlag.Name)
		if cacheMB < 16 {
			cacheMB = 16
		}
		return lvldb.New(filepath.Join(instanceDir, "main.db"), lvldb.Options{
			CacheSize:              cacheMB,
			OpenFilesCacheCapacity: 500,
		})
	case "pebble":
		if !persist {
			return pebbledb.NewMem()
		}
		return pebbledb.Open(filepath.Join(instanceDir, "main.pebble"))
	default:
		return nil, fmt.Errorf("unsupported db engine [%v]", engine)
	}
}

func openLogDB(ctx *cli.Context, instanceDir string) (*logdb.LogDB, error) {
	if !ctx.BoolT(persistFlag.Name) {
		return logdb.NewMem()
	}
	path := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

// initPool binds the genesis contracts on st, applies the genesis when the
// store is fresh and opens the executor.
func initPool(
	gene *genesis.Genesis,
	st *state.State,
	logDB *logdb.LogDB,
	clock runtime.Clock,
) (*runtime.Executor, *genesis.Contracts, error) {
	recorder := tx.NewRecorder()
	contracts := gene.Bind(st, recorder)

	applied, events, err := gene.Apply(st, contracts, recorder)
	if err != nil {
		return nil, nil, err
	}
	if applied {
		// genesis events are indexed under seq 0
		if logDB != nil {
			if err := logDB.Insert(&tx.Receipt{
				Time:   clock.Now(),
				Caller: gene.Config().Owner,
				Method: "genesis",
				Events: events,
			}); err != nil {
				return nil, nil, errors.Wrap(err, "index genesis events")
			}
		}
		if _, err := st.Commit(); err != nil {
			return nil, nil, errors.Wrap(err, "commit genesis")
		}
	}

	exec, err := runtime.New(st, recorder, contracts.Tokens, contracts.Pool, logDB, clock)
	if err != nil {
		return nil, nil, err
	}
	return exec, contracts, nil
}

func startAPIServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func(context.Context) {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func(context.Context) {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// reportPool logs the pool head after every committed call, at most once
// per interval.
func reportPool(ctx context.Context, exec *runtime.Executor, interval time.Duration) {
	waiter := exec.NewWaiter()
	var lastReport time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-waiter.C():
			if time.Since(lastReport) < interval {
				continue
			}
			lastReport = time.Now()
			err := exec.View(func(s *runtime.Snapshot) error {
				g, err := s.Pool.Global()
				if err != nil {
					return err
				}
				log.Info("pool updated",
					"seq", s.Seq,
					"staked", g.TotalStaked,
					"rate", g.RewardRate,
					"periodFinish", g.PeriodFinish,
				)
				return nil
			})
			if err != nil {
				log.Warn("failed to read pool", "err", err)
			}
		}
	}
}
