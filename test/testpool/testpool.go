// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testpool sets up an in-memory pool with an executor for tests.
package testpool

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/genesis"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/test/datagen"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

// Start is the initial clock time.
const Start = uint64(1_700_000_000)

// Units scales whole tokens by 1e18.
func Units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), thor.RewardScale)
}

// Pool is a pool with two funded stakers and an owner funded with rewards.
type Pool struct {
	Genesis   *genesis.Genesis
	Contracts *genesis.Contracts
	Exec      *runtime.Executor
	Logs      *logdb.LogDB
	Clock     *runtime.ManualClock

	Owner thor.Address
	Alice thor.Address
	Bob   thor.Address
}

// New creates the pool. Alice and Bob hold 1000 staking tokens, the owner
// 10000 rewards tokens.
func New(t testing.TB) *Pool {
	owner, alice, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	amount := func(n uint64) genesis.HexOrDecimal256 {
		return genesis.HexOrDecimal256(*Units(n).ToBig())
	}
	g, err := genesis.New("testpool", &genesis.Config{
		Owner:           owner,
		Pool:            datagen.RandAddress(),
		RewardsDuration: thor.DefaultRewardsDuration,
		StakingToken: genesis.Token{
			Address:  datagen.RandAddress(),
			Name:     "Stake",
			Symbol:   "STK",
			Decimals: 18,
			Allocations: []genesis.Allocation{
				{Address: alice, Amount: amount(1000)},
				{Address: bob, Amount: amount(1000)},
			},
		},
		RewardsToken: &genesis.Token{
			Address:     datagen.RandAddress(),
			Name:        "Reward",
			Symbol:      "RWD",
			Decimals:    18,
			Allocations: []genesis.Allocation{{Address: owner, Amount: amount(10_000)}},
		},
	})
	require.NoError(t, err)

	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })

	st := state.NewMem()
	recorder := tx.NewRecorder()
	contracts := g.Bind(st, recorder)
	_, _, err = g.Apply(st, contracts, recorder)
	require.NoError(t, err)
	_, err = st.Commit()
	require.NoError(t, err)

	clock := runtime.NewManualClock(Start)
	exec, err := runtime.New(st, recorder, contracts.Tokens, contracts.Pool, logs, clock)
	require.NoError(t, err)

	return &Pool{
		Genesis:   g,
		Contracts: contracts,
		Exec:      exec,
		Logs:      logs,
		Clock:     clock,
		Owner:     owner,
		Alice:     alice,
		Bob:       bob,
	}
}

// Must executes a call that is expected to succeed.
func (p *Pool) Must(t testing.TB, call *runtime.Call) *tx.Receipt {
	r, err := p.Exec.Execute(context.Background(), call)
	require.NoError(t, err)
	require.False(t, r.Reverted, r.Error)
	return r
}

// Stake approves and stakes amount for who.
func (p *Pool) Stake(t testing.TB, who thor.Address, amount *uint256.Int) {
	p.Must(t, &runtime.Call{Caller: who, Method: runtime.MethodTokenApprove, Args: runtime.Args{
		Token:   p.Contracts.StakingToken.Address(),
		Spender: p.Contracts.Pool.Address(),
		Amount:  amount,
	}})
	p.Must(t, &runtime.Call{Caller: who, Method: runtime.MethodStake, Args: runtime.Args{Amount: amount}})
}

// Notify approves and notifies amount from the owner.
func (p *Pool) Notify(t testing.TB, amount *uint256.Int) {
	p.Must(t, &runtime.Call{Caller: p.Owner, Method: runtime.MethodTokenApprove, Args: runtime.Args{
		Token:   p.Contracts.RewardsToken.Address(),
		Spender: p.Contracts.Pool.Address(),
		Amount:  amount,
	}})
	p.Must(t, &runtime.Call{Caller: p.Owner, Method: runtime.MethodNotifyRewardAmount, Args: runtime.Args{Amount: amount}})
}
