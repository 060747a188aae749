// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/genesis"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

// Scenario is a scripted sequence of calls replayed against a fresh pool.
type Scenario struct {
	// clock at genesis, unix seconds
	Start uint64 `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Step is one call. Address fields take a hex address or one of the names
// owner, pool, staking, rewards and dev0..dev9.
type Step struct {
	// absolute unix seconds, takes precedence over advance
	Time uint64 `yaml:"time,omitempty"`
	// seconds to move the clock forward before the call
	Advance  uint64                   `yaml:"advance,omitempty"`
	Caller   string                   `yaml:"caller"`
	Method   string                   `yaml:"method"`
	Amount   *genesis.HexOrDecimal256 `yaml:"amount,omitempty"`
	Token    string                   `yaml:"token,omitempty"`
	To       string                   `yaml:"to,omitempty"`
	From     string                   `yaml:"from,omitempty"`
	Spender  string                   `yaml:"spender,omitempty"`
	Duration uint64                   `yaml:"duration,omitempty"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	for i, step := range s.Steps {
		if step.Method == "" {
			return nil, fmt.Errorf("step %d: missing method", i)
		}
		if step.Caller == "" {
			return nil, fmt.Errorf("step %d: missing caller", i)
		}
	}
	return &s, nil
}

// names resolves the symbolic addresses of a scenario.
type names map[string]thor.Address

func newNames(gene *genesis.Genesis) names {
	cfg := gene.Config()
	staking, rewardsToken := cfg.Tokens()
	n := names{
		"owner":   cfg.Owner,
		"pool":    cfg.Pool,
		"staking": staking.Address,
		"rewards": rewardsToken.Address,
	}
	for i, acc := range genesis.DevAccounts() {
		n["dev"+strconv.Itoa(i)] = acc
	}
	return n
}

func (n names) resolve(s string) (thor.Address, error) {
	if s == "" {
		return thor.Address{}, nil
	}
	if addr, ok := n[s]; ok {
		return addr, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "address [%v]", s)
	}
	return *addr, nil
}

func (n names) toCall(step *Step) (*runtime.Call, error) {
	call := &runtime.Call{Method: step.Method, Args: runtime.Args{Duration: step.Duration}}
	for _, f := range []struct {
		src string
		dst *thor.Address
	}{
		{step.Caller, &call.Caller},
		{step.Token, &call.Args.Token},
		{step.To, &call.Args.To},
		{step.From, &call.Args.From},
		{step.Spender, &call.Args.Spender},
	} {
		addr, err := n.resolve(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = addr
	}
	if step.Amount != nil {
		amount, err := step.Amount.Uint256()
		if err != nil {
			return nil, errors.Wrap(err, "amount")
		}
		call.Args.Amount = amount
	}
	return call, nil
}

// ReplayEvent is a decoded event of a replayed call.
type ReplayEvent struct {
	Name    string   `yaml:"name"`
	Address string   `yaml:"address"`
	Args    []string `yaml:"args,omitempty"`
}

// ReplayReceipt is the outcome of one step.
type ReplayReceipt struct {
	Seq      uint64         `yaml:"seq"`
	Time     uint64         `yaml:"time"`
	Caller   string         `yaml:"caller"`
	Method   string         `yaml:"method"`
	Reverted bool           `yaml:"reverted,omitempty"`
	Error    string         `yaml:"error,omitempty"`
	Events   []*ReplayEvent `yaml:"events,omitempty"`
}

// ReplayAccount is the final view of an account touched by the scenario.
type ReplayAccount struct {
	Address      string `yaml:"address"`
	Staked       string `yaml:"staked"`
	Earned       string `yaml:"earned"`
	StakingToken string `yaml:"stakingToken"`
	RewardsToken string `yaml:"rewardsToken"`
}

// ReplayResult is printed by the replay command.
type ReplayResult struct {
	Receipts []*ReplayReceipt `yaml:"receipts"`
	Final    struct {
		Time           uint64           `yaml:"time"`
		TotalSupply    string           `yaml:"totalSupply"`
		RewardRate     string           `yaml:"rewardRate"`
		PeriodFinish   uint64           `yaml:"periodFinish"`
		RewardPerToken string           `yaml:"rewardPerToken"`
		IndexedEvents  int              `yaml:"indexedEvents"`
		Accounts       []*ReplayAccount `yaml:"accounts"`
	} `yaml:"final"`
}

var eventNames = map[thor.Bytes32]string{
	rewards.StakedEvent:                 "Staked",
	rewards.WithdrawnEvent:              "Withdrawn",
	rewards.RewardPaidEvent:             "RewardPaid",
	rewards.RewardAddedEvent:            "RewardAdded",
	rewards.RewardsDurationUpdatedEvent: "RewardsDurationUpdated",
	rewards.RecoveredEvent:              "Recovered",
	token.TransferEvent:                 "Transfer",
	token.ApprovalEvent:                 "Approval",
}

func decodeEvent(ev *tx.Event) *ReplayEvent {
	out := &ReplayEvent{Address: ev.Address.String()}
	if len(ev.Topics) > 0 {
		out.Name = eventNames[ev.Topics[0]]
		if out.Name == "" {
			out.Name = ev.Topics[0].String()
		}
		for _, topic := range ev.Topics[1:] {
			out.Args = append(out.Args, thor.BytesToAddress(topic.Bytes()).String())
		}
	}
	for i := 0; i < len(ev.Data)/32; i++ {
		out.Args = append(out.Args, tx.Word(ev.Data, i).Dec())
	}
	return out
}

// replay runs the scenario in memory and returns what happened.
func replay(ctx context.Context, gene *genesis.Genesis, scenario *Scenario) (*ReplayResult, error) {
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	defer logDB.Close()

	clock := runtime.NewManualClock(scenario.Start)
	exec, contracts, err := initPool(gene, state.NewMem(), logDB, clock)
	if err != nil {
		return nil, err
	}

	var (
		n        = newNames(gene)
		result   ReplayResult
		accounts []thor.Address
		seen     = make(map[thor.Address]bool)
	)
	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		call, err := n.toCall(step)
		if err != nil {
			return nil, errors.WithMessagef(err, "step %d", i)
		}
		if step.Time != 0 {
			clock.Set(step.Time)
		} else {
			clock.Advance(step.Advance)
		}

		receipt, err := exec.Execute(ctx, call)
		if err != nil {
			return nil, errors.WithMessagef(err, "step %d", i)
		}
		r := &ReplayReceipt{
			Seq:      receipt.Seq,
			Time:     receipt.Time,
			Caller:   receipt.Caller.String(),
			Method:   receipt.Method,
			Reverted: receipt.Reverted,
			Error:    receipt.Error,
		}
		for _, ev := range receipt.Events {
			r.Events = append(r.Events, decodeEvent(ev))
		}
		result.Receipts = append(result.Receipts, r)

		if !seen[call.Caller] {
			seen[call.Caller] = true
			accounts = append(accounts, call.Caller)
		}
	}

	events, err := logDB.FilterEvents(ctx, nil)
	if err != nil {
		return nil, err
	}
	result.Final.IndexedEvents = len(events)

	err = exec.View(func(s *runtime.Snapshot) error {
		g, err := s.Pool.Global()
		if err != nil {
			return err
		}
		rpt, err := s.Pool.RewardPerToken(s.Now)
		if err != nil {
			return err
		}
		result.Final.Time = s.Now
		result.Final.TotalSupply = g.TotalStaked.Dec()
		result.Final.RewardRate = g.RewardRate.Dec()
		result.Final.PeriodFinish = g.PeriodFinish
		result.Final.RewardPerToken = rpt.Dec()

		for _, acc := range accounts {
			staked, err := s.Pool.BalanceOf(acc)
			if err != nil {
				return err
			}
			earned, err := s.Pool.Earned(acc, s.Now)
			if err != nil {
				return err
			}
			stk, err := contracts.StakingToken.BalanceOf(acc)
			if err != nil {
				return err
			}
			rwd, err := contracts.RewardsToken.BalanceOf(acc)
			if err != nil {
				return err
			}
			result.Final.Accounts = append(result.Final.Accounts, &ReplayAccount{
				Address:      acc.String(),
				Staked:       staked.Dec(),
				Earned:       earned.Dec(),
				StakingToken: stk.Dec(),
				RewardsToken: rwd.Dec(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func writeResult(w io.Writer, result *ReplayResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}
