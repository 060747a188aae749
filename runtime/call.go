// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/thor"
)

// Call methods.
const (
	MethodStake              = "stake"
	MethodWithdraw           = "withdraw"
	MethodGetReward          = "getReward"
	MethodExit               = "exit"
	MethodNotifyRewardAmount = "notifyRewardAmount"
	MethodSetRewardsDuration = "setRewardsDuration"
	MethodRecoverERC20       = "recoverERC20"

	MethodTokenTransfer     = "token.transfer"
	MethodTokenApprove      = "token.approve"
	MethodTokenTransferFrom = "token.transferFrom"
	MethodTokenMint         = "token.mint"
)

// Call is a state changing request against the pool or a token.
type Call struct {
	Caller thor.Address
	// unix seconds, zero means now
	Time   uint64
	Method string
	Args   Args
}

// Args holds the arguments of every method; each method reads its own.
type Args struct {
	Amount   *uint256.Int
	Token    thor.Address
	To       thor.Address
	From     thor.Address
	Spender  thor.Address
	Duration uint64
}

func (a *Args) amount() *uint256.Int {
	if a.Amount == nil {
		return new(uint256.Int)
	}
	return a.Amount
}

type handler func(e *Executor, caller thor.Address, now uint64, args *Args) error

var handlers = map[string]handler{
	MethodStake: func(e *Executor, caller thor.Address, now uint64, args *Args) error {
		return e.pool.Stake(caller, now, args.amount())
	},
	MethodWithdraw: func(e *Executor, caller thor.Address, now uint64, args *Args) error {
		return e.pool.Withdraw(caller, now, args.amount())
	},
	MethodGetReward: func(e *Executor, caller thor.Address, now uint64, _ *Args) error {
		_, err := e.pool.GetReward(caller, now)
		return err
	},
	MethodExit: func(e *Executor, caller thor.Address, now uint64, _ *Args) error {
		_, _, err := e.pool.Exit(caller, now)
		return err
	},
	MethodNotifyRewardAmount: func(e *Executor, caller thor.Address, now uint64, args *Args) error {
		return e.pool.NotifyRewardAmount(caller, now, args.amount())
	},
	MethodSetRewardsDuration: func(e *Executor, caller thor.Address, now uint64, args *Args) error {
		return e.pool.SetRewardsDuration(caller, now, args.Duration)
	},
	MethodRecoverERC20: func(e *Executor, caller thor.Address, _ uint64, args *Args) error {
		return e.pool.RecoverERC20(caller, args.Token, args.amount())
	},
	MethodTokenTransfer: func(e *Executor, caller thor.Address, _ uint64, args *Args) error {
		t, err := e.tokens.Native(args.Token)
		if err != nil {
			return err
		}
		return e.atomic(func() error { return t.Transfer(caller, args.To, args.amount()) })
	},
	MethodTokenApprove: func(e *Executor, caller thor.Address, _ uint64, args *Args) error {
		t, err := e.tokens.Native(args.Token)
		if err != nil {
			return err
		}
		return e.atomic(func() error { return t.Approve(caller, args.Spender, args.amount()) })
	},
	MethodTokenTransferFrom: func(e *Executor, caller thor.Address, _ uint64, args *Args) error {
		t, err := e.tokens.Native(args.Token)
		if err != nil {
			return err
		}
		return e.atomic(func() error { return t.TransferFrom(caller, args.From, args.To, args.amount()) })
	},
	// minting is reserved to the pool owner
	MethodTokenMint: func(e *Executor, caller thor.Address, _ uint64, args *Args) error {
		owner, err := e.pool.Owner()
		if err != nil {
			return err
		}
		if caller != owner {
			return rewards.ErrUnauthorized
		}
		t, err := e.tokens.Native(args.Token)
		if err != nil {
			return err
		}
		return e.atomic(func() error { return t.Mint(args.To, args.amount()) })
	},
}

// Methods lists the supported call methods.
func Methods() []string {
	return []string{
		MethodStake,
		MethodWithdraw,
		MethodGetReward,
		MethodExit,
		MethodNotifyRewardAmount,
		MethodSetRewardsDuration,
		MethodRecoverERC20,
		MethodTokenTransfer,
		MethodTokenApprove,
		MethodTokenTransferFrom,
		MethodTokenMint,
	}
}
