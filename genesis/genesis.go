// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis sets up the tokens and the pool of a fresh state.
package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

var logger = log.WithContext("pkg", "genesis")

// Genesis is a validated config with its id.
type Genesis struct {
	config *Config
	id     thor.Bytes32
	name   string
}

// New validates cfg and computes its id.
func New(name string, cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	data, err := rlp.EncodeToBytes(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode genesis")
	}
	return &Genesis{
		config: cfg,
		id:     thor.Blake2b(data),
		name:   name,
	}, nil
}

// ID returns the genesis id.
func (g *Genesis) ID() thor.Bytes32 { return g.id }

// Name returns the network name.
func (g *Genesis) Name() string { return g.name }

func (g *Genesis) Config() *Config { return g.config }

// Contracts are the token registry and pool bound to one state.
type Contracts struct {
	Tokens       *token.Registry
	Pool         *rewards.Pool
	StakingToken *token.Native
	RewardsToken *token.Native
}

// Bind registers the genesis tokens and binds the pool. Both record events
// into recorder.
func (g *Genesis) Bind(st *state.State, recorder *tx.Recorder) *Contracts {
	staking, rewardsTk := g.config.Tokens()
	registry := token.NewRegistry(st, recorder)
	c := &Contracts{
		Tokens:       registry,
		StakingToken: registry.Register(staking.Address),
		RewardsToken: registry.Register(rewardsTk.Address),
	}
	c.Pool = rewards.New(g.config.Pool, st, registry, recorder)
	return c
}

// Apply initializes tokens, allocations and the pool on a fresh state. It
// returns whether anything was applied and the events emitted. Changes are
// left for the caller to commit.
func (g *Genesis) Apply(st *state.State, c *Contracts, recorder *tx.Recorder) (bool, tx.Events, error) {
	cfg := g.config
	staking, rewardsTk := cfg.Tokens()

	setupToken := func(native *token.Native, t *Token) func(*state.State) error {
		return func(*state.State) error {
			if err := native.SetMetadata(&token.Metadata{
				Name:     t.Name,
				Symbol:   t.Symbol,
				Decimals: t.Decimals,
			}); err != nil {
				return err
			}
			for _, alloc := range t.Allocations {
				amount, err := alloc.Amount.Uint256()
				if err != nil {
					return errors.WithMessagef(err, "allocation to %v", alloc.Address)
				}
				if err := native.Mint(alloc.Address, amount); err != nil {
					return errors.WithMessagef(err, "allocation to %v", alloc.Address)
				}
			}
			return nil
		}
	}

	builder := new(Builder).State(setupToken(c.StakingToken, staking))
	if rewardsTk != staking && rewardsTk.Address != staking.Address {
		builder.State(setupToken(c.RewardsToken, rewardsTk))
	}
	builder.State(func(*state.State) error {
		return c.Pool.Initialize(&rewards.Config{
			Owner:           cfg.Owner,
			StakingToken:    staking.Address,
			RewardsToken:    rewardsTk.Address,
			RewardsDuration: cfg.RewardsDuration,
		})
	})

	applied, events, err := builder.Build(st, g.id, recorder)
	if err != nil {
		return false, nil, err
	}
	if applied {
		logger.Info("genesis applied", "name", g.name, "id", g.id, "pool", cfg.Pool)
	}
	return applied, events, nil
}
