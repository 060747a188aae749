// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"fmt"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/test/datagen"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

const (
	day   = uint64(24 * 3600)
	week  = 7 * day
	start = uint64(1_700_000_000)
)

// units scales whole tokens by 1e18.
func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), thor.RewardScale)
}

var maxUint256 = new(uint256.Int).SetAllOne()

type testEnv struct {
	state  *state.State
	events *tx.Recorder
	tokens *token.Registry

	stakingToken *token.Native
	rewardsToken *token.Native
	pool         *Pool
	owner        thor.Address
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, false)
}

// newTestEnvWith sets up a pool; sameToken stakes and rewards one token.
func newTestEnvWith(t *testing.T, sameToken bool) *testEnv {
	st := state.NewMem()
	events := tx.NewRecorder()
	registry := token.NewRegistry(st, events)

	stakingToken := registry.Register(datagen.RandAddress())
	rewardsToken := stakingToken
	if !sameToken {
		rewardsToken = registry.Register(datagen.RandAddress())
	}

	env := &testEnv{
		state:        st,
		events:       events,
		tokens:       registry,
		stakingToken: stakingToken,
		rewardsToken: rewardsToken,
		owner:        datagen.RandAddress(),
	}
	env.pool = New(datagen.RandAddress(), st, registry, events)
	require.NoError(t, env.pool.Initialize(&Config{
		Owner:        env.owner,
		StakingToken: stakingToken.Address(),
		RewardsToken: rewardsToken.Address(),
	}))
	events.Take()
	return env
}

// fund mints staking tokens to addr and approves the pool.
func (e *testEnv) fund(t *testing.T, addr thor.Address, amount *uint256.Int) {
	require.NoError(t, e.stakingToken.Mint(addr, amount))
	require.NoError(t, e.stakingToken.Approve(addr, e.pool.Address(), maxUint256))
}

// fundOwner mints rewards tokens to the owner and approves the pool.
func (e *testEnv) fundOwner(t *testing.T, amount *uint256.Int) {
	require.NoError(t, e.rewardsToken.Mint(e.owner, amount))
	require.NoError(t, e.rewardsToken.Approve(e.owner, e.pool.Address(), maxUint256))
}

func (e *testEnv) rewardBalance(t *testing.T, addr thor.Address) *uint256.Int {
	bal, err := e.rewardsToken.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func (e *testEnv) global(t *testing.T) *Global {
	g, err := e.pool.Global()
	require.NoError(t, err)
	return g
}

func (e *testEnv) earned(t *testing.T, addr thor.Address, now uint64) *uint256.Int {
	v, err := e.pool.Earned(addr, now)
	require.NoError(t, err)
	return v
}

// assertApprox checks |got - want| <= tolerance.
func assertApprox(t *testing.T, want, got, tolerance *uint256.Int, what string) {
	diff := new(uint256.Int)
	if got.Gt(want) {
		diff.Sub(got, want)
	} else {
		diff.Sub(want, got)
	}
	assert.False(t, diff.Gt(tolerance), "%s: want %s got %s", what, want.Dec(), got.Dec())
}

type TestFunc func(t *testing.T)

// TestSequence scripts pool calls and assertions to run in order.
type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Notify(at uint64, amount *uint256.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pool.NotifyRewardAmount(st.env.owner, at, amount); err != nil {
			t.Fatalf("failed to notify %s at %d: %v", amount, at, err)
		}
		t.Logf("notified %s at %d", amount, at)
	})
}

func (st *TestSequence) Stake(addr thor.Address, at uint64, amount *uint256.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pool.Stake(addr, at, amount); err != nil {
			t.Fatalf("failed to stake %s for %s: %v", amount, addr, err)
		}
		t.Logf("%s staked %s at %d", addr, amount, at)
	})
}

func (st *TestSequence) Withdraw(addr thor.Address, at uint64, amount *uint256.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pool.Withdraw(addr, at, amount); err != nil {
			t.Fatalf("failed to withdraw %s for %s: %v", amount, addr, err)
		}
		t.Logf("%s withdrew %s at %d", addr, amount, at)
	})
}

func (st *TestSequence) GetReward(addr thor.Address, at uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		paid, err := st.env.pool.GetReward(addr, at)
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
		t.Logf("%s claimed %s at %d", addr, paid, at)
	})
}

func (st *TestSequence) AssertEarned(addr thor.Address, at uint64, want, tolerance *uint256.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		assertApprox(t, want, st.env.earned(t, addr, at), tolerance, fmt.Sprintf("earned of %s at %d", addr, at))
	})
}

func (st *TestSequence) AssertTotal(want *uint256.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		total, err := st.env.pool.TotalSupply()
		require.NoError(t, err)
		assert.Equal(t, want, total, "total staked")
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
