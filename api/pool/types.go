// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/stakingrewards/api/utils"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

// Global is the pool wide view at a point in time. Amounts are decimal strings.
type Global struct {
	Seq                      uint64       `json:"seq"`
	Time                     uint64       `json:"time"`
	Address                  thor.Address `json:"address"`
	Owner                    thor.Address `json:"owner"`
	StakingToken             thor.Address `json:"stakingToken"`
	RewardsToken             thor.Address `json:"rewardsToken"`
	RewardsDuration          uint64       `json:"rewardsDuration"`
	PeriodFinish             uint64       `json:"periodFinish"`
	LastUpdateTime           uint64       `json:"lastUpdateTime"`
	LastTimeRewardApplicable uint64       `json:"lastTimeRewardApplicable"`
	RewardRate               string       `json:"rewardRate"`
	RewardPerTokenStored     string       `json:"rewardPerTokenStored"`
	RewardPerToken           string       `json:"rewardPerToken"`
	RewardForDuration        string       `json:"rewardForDuration"`
	TotalSupply              string       `json:"totalSupply"`
}

// Account is the view of one staker.
type Account struct {
	Seq                 uint64       `json:"seq"`
	Time                uint64       `json:"time"`
	Address             thor.Address `json:"address"`
	Balance             string       `json:"balance"`
	Earned              string       `json:"earned"`
	Rewards             string       `json:"rewards"`
	RewardPerTokenPaid  string       `json:"rewardPerTokenPaid"`
	StakingTokenBalance string       `json:"stakingTokenBalance"`
	RewardsTokenBalance string       `json:"rewardsTokenBalance"`
	Allowance           string       `json:"allowance"`
}

// CallRequest is the body of a call. Amount is decimal or 0x hex.
type CallRequest struct {
	// taken as is, not authenticated
	Caller   thor.Address  `json:"caller"`
	Time     uint64        `json:"time,omitempty"`
	Method   string        `json:"method"`
	Amount   string        `json:"amount,omitempty"`
	Token    *thor.Address `json:"token,omitempty"`
	To       *thor.Address `json:"to,omitempty"`
	From     *thor.Address `json:"from,omitempty"`
	Spender  *thor.Address `json:"spender,omitempty"`
	Duration uint64        `json:"duration,omitempty"`
}

func (r *CallRequest) toCall() (*runtime.Call, error) {
	amount, err := utils.ParseAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	call := &runtime.Call{
		Caller: r.Caller,
		Time:   r.Time,
		Method: r.Method,
		Args: runtime.Args{
			Amount:   amount,
			Duration: r.Duration,
		},
	}
	for _, a := range []struct {
		src *thor.Address
		dst *thor.Address
	}{
		{r.Token, &call.Args.Token},
		{r.To, &call.Args.To},
		{r.From, &call.Args.From},
		{r.Spender, &call.Args.Spender},
	} {
		if a.src != nil {
			*a.dst = *a.src
		}
	}
	return call, nil
}

// Event is an event as returned in receipts.
type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
}

// Receipt is the result of a call.
type Receipt struct {
	Seq      uint64       `json:"seq"`
	Time     uint64       `json:"time"`
	Caller   thor.Address `json:"caller"`
	Method   string       `json:"method"`
	Reverted bool         `json:"reverted"`
	Error    string       `json:"error,omitempty"`
	Events   []*Event     `json:"events"`
}

func convertReceipt(r *tx.Receipt) *Receipt {
	events := make([]*Event, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, &Event{
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    hexutil.Encode(ev.Data),
		})
	}
	return &Receipt{
		Seq:      r.Seq,
		Time:     r.Time,
		Caller:   r.Caller,
		Method:   r.Method,
		Reverted: r.Reverted,
		Error:    r.Error,
		Events:   events,
	}
}
