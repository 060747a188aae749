// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes calls against the pool one at a time, persisting
// state and indexing events after each call.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/builtin/reverts"
	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/builtin/solidity"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/co"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

var logger = log.WithContext("pkg", "runtime")

var (
	ErrClockRegression = errors.New("runtime: time is before the last accepted call")
	ErrUnknownMethod   = errors.New("runtime: unknown method")
)

// MetaAddress holds the executor's own bookkeeping slots.
var MetaAddress = thor.BytesToAddress([]byte("rewards.executor"))

var (
	slotSeq      = solidity.Slot("executor.seq")
	slotLastTime = solidity.Slot("executor.lastTime")
)

// Executor serialises calls. Each call commits its state changes together
// with the advanced sequence and clock, or none of them.
type Executor struct {
	mu sync.RWMutex

	state  *state.State
	events *tx.Recorder
	tokens *token.Registry
	pool   *rewards.Pool
	logs   *logdb.LogDB
	clock  Clock

	seq      *solidity.Uint64
	lastTime *solidity.Uint64

	committed co.Signal
}

// New creates an executor. The pool and tokens must record into events.
// logs may be nil to skip event indexing. Indexed events of calls that
// never committed are truncated.
func New(
	st *state.State,
	events *tx.Recorder,
	tokens *token.Registry,
	pool *rewards.Pool,
	logs *logdb.LogDB,
	clock Clock,
) (*Executor, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	ctx := solidity.NewContext(MetaAddress, st)
	e := &Executor{
		state:    st,
		events:   events,
		tokens:   tokens,
		pool:     pool,
		logs:     logs,
		clock:    clock,
		seq:      solidity.NewUint64(ctx, slotSeq),
		lastTime: solidity.NewUint64(ctx, slotLastTime),
	}
	seq, last, err := e.head()
	if err != nil {
		return nil, err
	}
	if seq == 0 && last == 0 {
		// fresh store: calls may not predate the executor's first start
		if err := e.seedClock(); err != nil {
			return nil, err
		}
	}
	if logs != nil {
		n, err := logs.Truncate(seq)
		if err != nil {
			return nil, errors.Wrap(err, "truncate logs")
		}
		if n > 0 {
			logger.Warn("dropped events of uncommitted calls", "count", n, "seq", seq)
		}
	}
	metricSeq().Set(int64(seq))
	return e, nil
}

func (e *Executor) seedClock() error {
	now := e.clock.Now()
	e.lastTime.Set(now)
	if _, err := e.state.Commit(); err != nil {
		e.state.Discard()
		return errors.Wrap(err, "seed clock")
	}
	metricLastTime().Set(int64(now))
	return nil
}

// Execute runs a call and commits its effects. A call rejected by contract
// logic still yields a receipt, marked reverted. Any other failure discards
// the call's changes and is returned as error.
func (e *Executor) Execute(ctx context.Context, call *Call) (*tx.Receipt, error) {
	h, ok := handlers[call.Method]
	if !ok {
		return nil, errors.WithMessage(ErrUnknownMethod, call.Method)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	now := call.Time
	if now == 0 {
		now = e.clock.Now()
	}
	last, err := e.lastTime.Get()
	if err != nil {
		return nil, err
	}
	if now < last {
		return nil, errors.WithMessagef(ErrClockRegression, "%d < %d", now, last)
	}
	seq, err := e.seq.Get()
	if err != nil {
		return nil, err
	}
	seq++

	receipt, err := e.execute(h, call, seq, now)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case receipt.Reverted:
		outcome = "reverted"
	}
	metricCallDuration().ObserveWithLabels(time.Since(startTime).Microseconds(), map[string]string{
		"method":  call.Method,
		"outcome": outcome,
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (e *Executor) execute(h handler, call *Call, seq, now uint64) (*tx.Receipt, error) {
	// drop leftovers of direct contract use
	e.events.Take()

	receipt := &tx.Receipt{
		Seq:    seq,
		Time:   now,
		Caller: call.Caller,
		Method: call.Method,
	}
	if err := h(e, call.Caller, now, &call.Args); err != nil {
		if !reverts.IsRevertErr(err) {
			e.abort()
			return nil, errors.WithMessage(err, call.Method)
		}
		receipt.Reverted = true
		receipt.Error = err.Error()
	}
	receipt.Events = e.events.Take()

	e.seq.Set(seq)
	e.lastTime.Set(now)

	// events go first so a crash in between leaves them ahead of the state,
	// to be truncated on the next start
	if e.logs != nil {
		if err := e.logs.Insert(receipt); err != nil {
			e.abort()
			return nil, err
		}
	}
	if _, err := e.state.Commit(); err != nil {
		e.abort()
		if e.logs != nil {
			if _, terr := e.logs.Truncate(seq - 1); terr != nil {
				logger.Warn("failed to truncate logs", "seq", seq-1, "err", terr)
			}
		}
		return nil, err
	}

	metricSeq().Set(int64(seq))
	metricLastTime().Set(int64(now))
	logger.Debug("call executed",
		"seq", seq,
		"method", call.Method,
		"caller", call.Caller,
		"reverted", receipt.Reverted,
		"events", len(receipt.Events))
	e.committed.Broadcast()
	return receipt, nil
}

func (e *Executor) abort() {
	e.state.Discard()
	e.events.Take()
}

// atomic runs fn inside a state checkpoint, dropping its changes and events
// when it fails.
func (e *Executor) atomic(fn func() error) error {
	revision := e.state.NewCheckpoint()
	mark := e.events.Checkpoint()
	if err := fn(); err != nil {
		e.state.RevertTo(revision)
		e.events.RevertTo(mark)
		return err
	}
	return nil
}

// Head returns the sequence and timestamp of the last committed call.
func (e *Executor) Head() (seq, last uint64, err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.head()
}

func (e *Executor) head() (seq, last uint64, err error) {
	if seq, err = e.seq.Get(); err != nil {
		return 0, 0, err
	}
	if last, err = e.lastTime.Get(); err != nil {
		return 0, 0, err
	}
	return seq, last, nil
}

// Snapshot is the read only view passed to View.
type Snapshot struct {
	Pool   *rewards.Pool
	Tokens *token.Registry
	// last committed call
	Seq uint64
	// clock time, never before the last committed call
	Now uint64
}

// View runs fn against committed state. fn must not mutate.
func (e *Executor) View(fn func(s *Snapshot) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seq, last, err := e.head()
	if err != nil {
		return err
	}
	return fn(&Snapshot{
		Pool:   e.pool,
		Tokens: e.tokens,
		Seq:    seq,
		Now:    max(e.clock.Now(), last),
	})
}

// NewWaiter returns a waiter signalled after every committed call.
func (e *Executor) NewWaiter() *co.Waiter {
	return e.committed.NewWaiter()
}
