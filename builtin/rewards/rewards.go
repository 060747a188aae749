// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements a time weighted staking reward pool.
//
// Stakers accrue the rewards token in proportion to their share of the total
// stake, integrated over time. Accrual is settled lazily: a global
// reward-per-token accumulator is advanced on every mutating call, and an
// account is settled against it only when the account itself is touched.
package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/builtin/solidity"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

var logger = log.WithContext("pkg", "rewards")

func SetLogger(l log.Logger) {
	logger = l
}

// Resolver looks up the token at an address.
type Resolver interface {
	Token(addr thor.Address) (token.Token, error)
}

// Config is the construction time setup of a pool.
type Config struct {
	Owner           thor.Address
	StakingToken    thor.Address
	RewardsToken    thor.Address
	RewardsDuration uint64
}

// Pool implements the staking rewards contract at a fixed address.
// It holds no locks; callers serialise access.
type Pool struct {
	ctx    *solidity.Context
	store  *storage
	tokens Resolver
	events *tx.Recorder
}

// New binds a pool to its storage. Events are recorded into events.
func New(addr thor.Address, state *state.State, tokens Resolver, events *tx.Recorder) *Pool {
	ctx := solidity.NewContext(addr, state)
	return &Pool{
		ctx:    ctx,
		store:  newStorage(ctx),
		tokens: tokens,
		events: events,
	}
}

// Initialize stores the immutable setup. It fails once the pool has an owner.
func (p *Pool) Initialize(cfg *Config) error {
	return p.atomic(func() error {
		owner, err := p.store.owner.Get()
		if err != nil {
			return err
		}
		if !owner.IsZero() {
			return ErrAlreadyInitialized
		}
		if cfg.Owner.IsZero() || cfg.StakingToken.IsZero() || cfg.RewardsToken.IsZero() {
			return ErrInvalidConfig
		}
		duration := cfg.RewardsDuration
		if duration == 0 {
			duration = thor.DefaultRewardsDuration
		}
		p.store.owner.Set(cfg.Owner)
		p.store.stakingToken.Set(cfg.StakingToken)
		p.store.rewardsToken.Set(cfg.RewardsToken)
		p.store.rewardsDuration.Set(duration)
		logger.Info("pool initialized",
			"pool", p.Address(),
			"owner", cfg.Owner,
			"stakingToken", cfg.StakingToken,
			"rewardsToken", cfg.RewardsToken,
			"duration", duration)
		return nil
	})
}

// Initialized reports whether the pool has been set up.
func (p *Pool) Initialized() (bool, error) {
	owner, err := p.store.owner.Get()
	if err != nil {
		return false, err
	}
	return !owner.IsZero(), nil
}

// atomic runs fn inside a state checkpoint, dropping its state changes and
// events when it fails.
func (p *Pool) atomic(fn func() error) error {
	st := p.ctx.State()
	revision := st.NewCheckpoint()
	mark := 0
	if p.events != nil {
		mark = p.events.Checkpoint()
	}
	if err := fn(); err != nil {
		st.RevertTo(revision)
		if p.events != nil {
			p.events.RevertTo(mark)
		}
		return err
	}
	return nil
}

// call is atomic with outcome metering.
func (p *Pool) call(method string, fn func() error) error {
	err := p.atomic(fn)
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "outcome": outcome(err)})
	switch outcome(err) {
	case "ok":
		if staked, err := p.store.totalStaked.Get(); err == nil {
			metricTotalStaked().Set(gaugeValue(staked))
		}
	case "reverted":
		logger.Debug("call reverted", "method", method, "err", err)
	default:
		logger.Warn("call failed", "method", method, "err", err)
	}
	return err
}

func (p *Pool) Address() thor.Address {
	return p.ctx.Address()
}

func (p *Pool) stakingToken() (token.Token, error) {
	addr, err := p.store.stakingToken.Get()
	if err != nil {
		return nil, err
	}
	return p.tokens.Token(addr)
}

func (p *Pool) rewardsToken() (token.Token, error) {
	addr, err := p.store.rewardsToken.Get()
	if err != nil {
		return nil, err
	}
	return p.tokens.Token(addr)
}

func (p *Pool) sameToken() (bool, error) {
	staking, err := p.store.stakingToken.Get()
	if err != nil {
		return false, err
	}
	rewards, err := p.store.rewardsToken.Get()
	if err != nil {
		return false, err
	}
	return staking == rewards, nil
}

//
// Getters - no state change
//

// TotalSupply returns the total staked amount.
func (p *Pool) TotalSupply() (*uint256.Int, error) {
	return p.store.totalStaked.Get()
}

// Global returns a snapshot of the stored pool wide state.
func (p *Pool) Global() (*Global, error) {
	return p.store.global()
}

func (p *Pool) Owner() (thor.Address, error) {
	return p.store.owner.Get()
}

func (p *Pool) RewardsDuration() (uint64, error) {
	return p.store.rewardsDuration.Get()
}

func (p *Pool) PeriodFinish() (uint64, error) {
	return p.store.periodFinish.Get()
}

func (p *Pool) RewardRate() (*uint256.Int, error) {
	return p.store.rewardRate.Get()
}
