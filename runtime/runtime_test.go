// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/genesis"
	"github.com/vechain/stakingrewards/kv"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/lvldb"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/test/datagen"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

const start = uint64(1_700_000_000)

func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), thor.RewardScale)
}

type testEnv struct {
	store     kv.StoreCloser
	logs      *logdb.LogDB
	genesis   *genesis.Genesis
	contracts *genesis.Contracts
	clock     *ManualClock
	exec      *Executor
	owner     thor.Address
	alice     thor.Address
	bob       thor.Address
}

func newTestGenesis(t *testing.T, owner thor.Address, holders ...thor.Address) *genesis.Genesis {
	var allocs []genesis.Allocation
	for _, h := range holders {
		allocs = append(allocs, genesis.Allocation{Address: h, Amount: genesis.HexOrDecimal256(*units(1000).ToBig())})
	}
	g, err := genesis.New("test", &genesis.Config{
		Owner:           owner,
		Pool:            datagen.RandAddress(),
		RewardsDuration: 7 * 24 * 3600,
		StakingToken: genesis.Token{
			Address:     datagen.RandAddress(),
			Symbol:      "STK",
			Decimals:    18,
			Allocations: allocs,
		},
		RewardsToken: &genesis.Token{
			Address:     datagen.RandAddress(),
			Symbol:      "RWD",
			Decimals:    18,
			Allocations: []genesis.Allocation{{Address: owner, Amount: genesis.HexOrDecimal256(*units(10_000).ToBig())}},
		},
	})
	require.NoError(t, err)
	return g
}

// open binds contracts and an executor over store, applying the genesis if
// the store is fresh.
func (e *testEnv) open(t *testing.T) {
	st := state.New(e.store)
	recorder := tx.NewRecorder()
	e.contracts = e.genesis.Bind(st, recorder)
	applied, _, err := e.genesis.Apply(st, e.contracts, recorder)
	require.NoError(t, err)
	if applied {
		_, err := st.Commit()
		require.NoError(t, err)
	}
	e.exec, err = New(st, recorder, e.contracts.Tokens, e.contracts.Pool, e.logs, e.clock)
	require.NoError(t, err)
}

func newTestEnv(t *testing.T) *testEnv {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logs.Close()
		store.Close()
	})

	owner, alice, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	env := &testEnv{
		store:   store,
		logs:    logs,
		genesis: newTestGenesis(t, owner, alice, bob),
		clock:   NewManualClock(start),
		owner:   owner,
		alice:   alice,
		bob:     bob,
	}
	env.open(t)
	return env
}

func (e *testEnv) exec1(t *testing.T, call *Call) *tx.Receipt {
	r, err := e.exec.Execute(context.Background(), call)
	require.NoError(t, err)
	return r
}

func (e *testEnv) ok(t *testing.T, call *Call) *tx.Receipt {
	r := e.exec1(t, call)
	require.False(t, r.Reverted, r.Error)
	return r
}

func (e *testEnv) approveAndStake(t *testing.T, who thor.Address, amount *uint256.Int) {
	e.ok(t, &Call{Caller: who, Method: MethodTokenApprove, Args: Args{
		Token:   e.contracts.StakingToken.Address(),
		Spender: e.contracts.Pool.Address(),
		Amount:  amount,
	}})
	e.ok(t, &Call{Caller: who, Method: MethodStake, Args: Args{Amount: amount}})
}

func (e *testEnv) notify(t *testing.T, amount *uint256.Int) {
	e.ok(t, &Call{Caller: e.owner, Method: MethodTokenApprove, Args: Args{
		Token:   e.contracts.RewardsToken.Address(),
		Spender: e.contracts.Pool.Address(),
		Amount:  amount,
	}})
	e.ok(t, &Call{Caller: e.owner, Method: MethodNotifyRewardAmount, Args: Args{Amount: amount}})
}

func TestExecuteScenario(t *testing.T) {
	env := newTestEnv(t)

	env.approveAndStake(t, env.alice, units(100))
	env.notify(t, units(700))

	env.clock.Advance(7 * 24 * 3600)
	r := env.ok(t, &Call{Caller: env.alice, Method: MethodGetReward})
	require.Len(t, r.Events, 2)
	assert.Equal(t, rewards.RewardPaidEvent, r.Events[1].Topics[0])

	paid := tx.Word(r.Events[1].Data, 0)
	diff := new(uint256.Int).Sub(units(700), paid)
	assert.True(t, diff.Lt(uint256.NewInt(1_000_000)), "paid %v", paid)

	bal, err := env.contracts.RewardsToken.BalanceOf(env.alice)
	require.NoError(t, err)
	assert.Equal(t, paid, bal)

	seq, last, err := env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
	assert.Equal(t, start+7*24*3600, last)
}

func TestExecuteRevert(t *testing.T) {
	env := newTestEnv(t)

	r := env.exec1(t, &Call{Caller: env.alice, Method: MethodWithdraw, Args: Args{Amount: units(1)}})
	assert.True(t, r.Reverted)
	assert.Contains(t, r.Error, "exceeds staked balance")
	assert.Empty(t, r.Events)
	assert.Equal(t, uint64(1), r.Seq)

	r = env.exec1(t, &Call{Caller: env.alice, Method: MethodNotifyRewardAmount, Args: Args{Amount: units(1)}})
	assert.True(t, r.Reverted)
	assert.Equal(t, rewards.ErrUnauthorized.Error(), r.Error)

	// nil amount reads as zero
	r = env.exec1(t, &Call{Caller: env.alice, Method: MethodStake})
	assert.True(t, r.Reverted)
	assert.Equal(t, rewards.ErrZeroAmount.Error(), r.Error)

	// reverted calls still consume a sequence
	seq, _, err := env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}

func TestExecuteRejects(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.exec.Execute(context.Background(), &Call{Caller: env.alice, Method: "selfdestruct"})
	assert.ErrorIs(t, err, ErrUnknownMethod)

	env.ok(t, &Call{Caller: env.alice, Time: start + 100, Method: MethodTokenApprove, Args: Args{
		Token:   env.contracts.StakingToken.Address(),
		Spender: env.bob,
		Amount:  units(1),
	}})
	_, err = env.exec.Execute(context.Background(), &Call{Caller: env.alice, Time: start + 99, Method: MethodGetReward})
	assert.ErrorIs(t, err, ErrClockRegression)

	// the clock is behind the last call too
	_, err = env.exec.Execute(context.Background(), &Call{Caller: env.alice, Method: MethodGetReward})
	assert.ErrorIs(t, err, ErrClockRegression)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = env.exec.Execute(ctx, &Call{Caller: env.alice, Time: start + 100, Method: MethodGetReward})
	assert.ErrorIs(t, err, context.Canceled)

	seq, _, err := env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestFreshExecutorClock(t *testing.T) {
	env := newTestEnv(t)

	seq, last, err := env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)
	assert.Equal(t, start, last)

	_, err = env.exec.Execute(context.Background(), &Call{Caller: env.alice, Time: start - 1, Method: MethodGetReward})
	assert.ErrorIs(t, err, ErrClockRegression)

	// reopening keeps the seeded time even when the clock is behind
	env.clock.Set(start - 100)
	env.open(t)
	_, last, err = env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, start, last)

	env.clock.Set(start)
	env.ok(t, &Call{Caller: env.alice, Method: MethodGetReward})
}

func TestTokenMethods(t *testing.T) {
	env := newTestEnv(t)
	stk := env.contracts.StakingToken.Address()

	env.ok(t, &Call{Caller: env.alice, Method: MethodTokenTransfer, Args: Args{Token: stk, To: env.bob, Amount: units(10)}})
	env.ok(t, &Call{Caller: env.alice, Method: MethodTokenApprove, Args: Args{Token: stk, Spender: env.bob, Amount: units(5)}})
	env.ok(t, &Call{Caller: env.bob, Method: MethodTokenTransferFrom, Args: Args{Token: stk, From: env.alice, To: env.bob, Amount: units(5)}})

	bal, err := env.contracts.StakingToken.BalanceOf(env.bob)
	require.NoError(t, err)
	assert.Equal(t, units(1015), bal)

	r := env.exec1(t, &Call{Caller: env.bob, Method: MethodTokenTransferFrom, Args: Args{Token: stk, From: env.alice, To: env.bob, Amount: units(1)}})
	assert.True(t, r.Reverted)
	assert.Equal(t, token.ErrInsufficientAllowance.Error(), r.Error)

	r = env.exec1(t, &Call{Caller: env.alice, Method: MethodTokenTransfer, Args: Args{Token: datagen.RandAddress(), To: env.bob, Amount: units(1)}})
	assert.True(t, r.Reverted)

	// only the pool owner mints
	r = env.exec1(t, &Call{Caller: env.alice, Method: MethodTokenMint, Args: Args{Token: stk, To: env.alice, Amount: units(1)}})
	assert.True(t, r.Reverted)
	assert.Equal(t, rewards.ErrUnauthorized.Error(), r.Error)

	r = env.ok(t, &Call{Caller: env.owner, Method: MethodTokenMint, Args: Args{Token: stk, To: env.alice, Amount: units(1)}})
	require.Len(t, r.Events, 1)
	assert.Equal(t, token.TransferEvent, r.Events[0].Topics[0])
}

func TestExitPartial(t *testing.T) {
	env := newTestEnv(t)
	env.approveAndStake(t, env.alice, units(100))
	env.notify(t, units(700))
	env.clock.Advance(24 * 3600)

	// drain the pool's reward balance behind its back so the claim fails
	pool := env.contracts.Pool.Address()
	bal, err := env.contracts.RewardsToken.BalanceOf(pool)
	require.NoError(t, err)
	require.NoError(t, env.contracts.RewardsToken.Burn(pool, bal))

	r := env.exec1(t, &Call{Caller: env.alice, Method: MethodExit})
	assert.True(t, r.Reverted)
	assert.Contains(t, r.Error, "transfer failed")
	// the withdrawal stands: staking token transfer plus Withdrawn
	require.Len(t, r.Events, 2)
	assert.Equal(t, rewards.WithdrawnEvent, r.Events[1].Topics[0])

	staked, err := env.contracts.Pool.BalanceOf(env.alice)
	require.NoError(t, err)
	assert.True(t, staked.IsZero())

	events, err := env.logs.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Topics: [4]*thor.Bytes32{&rewards.WithdrawnEvent}}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, r.Seq, events[0].Seq)
}

func TestEventsIndexed(t *testing.T) {
	env := newTestEnv(t)
	env.approveAndStake(t, env.alice, units(100))

	events, err := env.logs.FilterEvents(context.Background(), &logdb.EventFilter{Caller: &env.alice})
	require.NoError(t, err)
	// Approval, then Transfer and Staked
	require.Len(t, events, 3)
	assert.Equal(t, token.ApprovalEvent, *events[0].Topics[0])
	assert.Equal(t, rewards.StakedEvent, *events[2].Topics[0])
	assert.Equal(t, MethodStake, events[2].Method)
	assert.Equal(t, start, events[2].Time)
}

func TestRestart(t *testing.T) {
	env := newTestEnv(t)
	env.approveAndStake(t, env.alice, units(100))
	env.clock.Advance(10)
	env.ok(t, &Call{Caller: env.alice, Method: MethodWithdraw, Args: Args{Amount: units(40)}})

	// uncommitted leftovers in logdb are dropped on open
	stray := &tx.Receipt{Seq: 99, Time: start, Events: tx.Events{{Address: env.alice}}}
	require.NoError(t, env.logs.Insert(stray))

	env.open(t)
	seq, last, err := env.exec.Head()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
	assert.Equal(t, start+10, last)

	lastSeq, err := env.logs.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lastSeq)

	require.NoError(t, env.exec.View(func(s *Snapshot) error {
		bal, err := s.Pool.BalanceOf(env.alice)
		require.NoError(t, err)
		assert.Equal(t, units(60), bal)
		assert.Equal(t, uint64(3), s.Seq)
		return nil
	}))
}

func TestViewClampsClock(t *testing.T) {
	env := newTestEnv(t)
	env.ok(t, &Call{Caller: env.alice, Time: start + 500, Method: MethodGetReward})

	require.NoError(t, env.exec.View(func(s *Snapshot) error {
		assert.Equal(t, start+500, s.Now)
		return nil
	}))
	env.clock.Set(start + 1000)
	require.NoError(t, env.exec.View(func(s *Snapshot) error {
		assert.Equal(t, start+1000, s.Now)
		return nil
	}))
}

func TestWaiter(t *testing.T) {
	env := newTestEnv(t)
	w := env.exec.NewWaiter()

	env.exec1(t, &Call{Caller: env.alice, Method: MethodGetReward})
	select {
	case <-w.C():
	default:
		t.Fatal("waiter not signalled")
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(10)
	assert.Equal(t, uint64(10), c.Now())
	assert.Equal(t, uint64(15), c.Advance(5))
	c.Set(3)
	assert.Equal(t, uint64(3), c.Now())
	assert.NotZero(t, SystemClock{}.Now())
}

func TestMethods(t *testing.T) {
	for _, m := range Methods() {
		_, ok := handlers[m]
		assert.True(t, ok, m)
	}
	assert.Len(t, Methods(), len(handlers))
}
