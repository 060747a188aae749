// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

// Ledger is the per-account record. A never touched account reads as zero.
type Ledger struct {
	Balance            *uint256.Int
	RewardPerTokenPaid *uint256.Int
	Rewards            *uint256.Int
}

func (l *Ledger) normalize() *Ledger {
	if l.Balance == nil {
		l.Balance = new(uint256.Int)
	}
	if l.RewardPerTokenPaid == nil {
		l.RewardPerTokenPaid = new(uint256.Int)
	}
	if l.Rewards == nil {
		l.Rewards = new(uint256.Int)
	}
	return l
}

// earned is rewards + balance * (rpt - paid) / 1e18.
func (l *Ledger) earned(rpt *uint256.Int) (*uint256.Int, error) {
	delta, err := sub(rpt, l.RewardPerTokenPaid)
	if err != nil {
		return nil, err
	}
	accrued, err := mul(l.Balance, delta)
	if err != nil {
		return nil, err
	}
	accrued.Div(accrued, thor.RewardScale)
	return add(l.Rewards, accrued)
}

func (l *Ledger) settle(rpt *uint256.Int) error {
	earned, err := l.earned(rpt)
	if err != nil {
		return err
	}
	l.Rewards = earned
	l.RewardPerTokenPaid = rpt.Clone()
	return nil
}

// Earned returns what account could claim at now.
func (p *Pool) Earned(account thor.Address, now uint64) (*uint256.Int, error) {
	rpt, err := p.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	ledger, err := p.store.ledger(account)
	if err != nil {
		return nil, err
	}
	return ledger.earned(rpt)
}

// BalanceOf returns the staked balance of account.
func (p *Pool) BalanceOf(account thor.Address) (*uint256.Int, error) {
	ledger, err := p.store.ledger(account)
	if err != nil {
		return nil, err
	}
	return ledger.Balance, nil
}

// Ledger returns the stored, unsettled record of account.
func (p *Pool) Ledger(account thor.Address) (*Ledger, error) {
	return p.store.ledger(account)
}

// Stake pulls amount of the staking token from caller, who must have
// approved the pool, and credits it to caller's balance.
func (p *Pool) Stake(caller thor.Address, now uint64, amount *uint256.Int) error {
	return p.call("stake", func() error {
		if amount == nil || amount.IsZero() {
			return ErrZeroAmount
		}
		ledger, err := p.updateReward(caller, now)
		if err != nil {
			return err
		}
		stakingToken, err := p.stakingToken()
		if err != nil {
			return err
		}
		if err := stakingToken.TransferFrom(p.Address(), caller, p.Address(), amount); err != nil {
			return transferFailed(err)
		}

		if _, err := p.store.totalStaked.Add(amount); err != nil {
			return err
		}
		if ledger.Balance, err = add(ledger.Balance, amount); err != nil {
			return err
		}
		if err := p.store.setLedger(caller, ledger); err != nil {
			return err
		}
		p.emit(StakedEvent, []thor.Address{caller}, amount)
		logger.Debug("staked", "account", caller, "amount", amount, "time", now)
		return nil
	})
}

// Withdraw returns amount of staked tokens to caller.
func (p *Pool) Withdraw(caller thor.Address, now uint64, amount *uint256.Int) error {
	return p.call("withdraw", func() error {
		return p.withdraw(caller, now, amount)
	})
}

func (p *Pool) withdraw(caller thor.Address, now uint64, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	ledger, err := p.updateReward(caller, now)
	if err != nil {
		return err
	}
	if amount.Gt(ledger.Balance) {
		return ErrInsufficientBalance
	}

	if _, err := p.store.totalStaked.Sub(amount); err != nil {
		return err
	}
	ledger.Balance = new(uint256.Int).Sub(ledger.Balance, amount)
	if err := p.store.setLedger(caller, ledger); err != nil {
		return err
	}

	stakingToken, err := p.stakingToken()
	if err != nil {
		return err
	}
	if err := stakingToken.Transfer(p.Address(), caller, amount); err != nil {
		return transferFailed(err)
	}
	p.emit(WithdrawnEvent, []thor.Address{caller}, amount)
	logger.Debug("withdrawn", "account", caller, "amount", amount, "time", now)
	return nil
}

// GetReward pays caller everything owed. It returns the amount paid, zero
// when nothing was owed in which case no transfer happens.
func (p *Pool) GetReward(caller thor.Address, now uint64) (paid *uint256.Int, err error) {
	err = p.call("getReward", func() error {
		paid, err = p.getReward(caller, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (p *Pool) getReward(caller thor.Address, now uint64) (*uint256.Int, error) {
	ledger, err := p.updateReward(caller, now)
	if err != nil {
		return nil, err
	}
	owed := ledger.Rewards
	ledger.Rewards = new(uint256.Int)
	if err := p.store.setLedger(caller, ledger); err != nil {
		return nil, err
	}
	if owed.IsZero() {
		return owed, nil
	}

	rewardsToken, err := p.rewardsToken()
	if err != nil {
		return nil, err
	}
	if err := rewardsToken.Transfer(p.Address(), caller, owed); err != nil {
		return nil, transferFailed(err)
	}
	p.emit(RewardPaidEvent, []thor.Address{caller}, owed)
	logger.Debug("reward paid", "account", caller, "reward", owed, "time", now)
	return owed, nil
}

// Exit withdraws the full balance and then claims rewards. The two steps are
// atomic on their own: a failed claim leaves the withdrawal in place.
func (p *Pool) Exit(caller thor.Address, now uint64) (withdrawn, paid *uint256.Int, err error) {
	ledger, err := p.store.ledger(caller)
	if err != nil {
		return nil, nil, err
	}
	withdrawn = ledger.Balance
	if err := p.Withdraw(caller, now, withdrawn); err != nil {
		return nil, nil, err
	}
	paid, err = p.GetReward(caller, now)
	if err != nil {
		return withdrawn, nil, err
	}
	return withdrawn, paid, nil
}
