// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// lastTimeRewardApplicable is min(now, periodFinish).
func (p *Pool) lastTimeRewardApplicable(now uint64) (uint64, error) {
	finish, err := p.store.periodFinish.Get()
	if err != nil {
		return 0, err
	}
	return min(now, finish), nil
}

// checkClock fails when now precedes the last accumulator update.
func (p *Pool) checkClock(now uint64) error {
	last, err := p.store.lastUpdateTime.Get()
	if err != nil {
		return err
	}
	if now < last {
		return ErrTimeRegression
	}
	return nil
}

// rewardPerToken computes the accumulator at applicable without storing it:
// stored + (applicable - last) * rate * 1e18 / totalStaked.
func (p *Pool) rewardPerToken(applicable uint64) (*uint256.Int, error) {
	stored, err := p.store.rewardPerTokenStored.Get()
	if err != nil {
		return nil, err
	}
	total, err := p.store.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		return stored, nil
	}
	last, err := p.store.lastUpdateTime.Get()
	if err != nil {
		return nil, err
	}
	if applicable < last {
		return nil, ErrTimeRegression
	}
	if applicable == last {
		return stored, nil
	}
	rate, err := p.store.rewardRate.Get()
	if err != nil {
		return nil, err
	}

	inc, err := mul(uint256.NewInt(applicable-last), rate)
	if err != nil {
		return nil, err
	}
	if inc, err = mul(inc, thor.RewardScale); err != nil {
		return nil, err
	}
	inc.Div(inc, total)
	return add(stored, inc)
}

// settleGlobal advances the accumulator to min(now, periodFinish). While
// nothing is staked only the checkpoint moves, so that emission is lost.
func (p *Pool) settleGlobal(now uint64) (*uint256.Int, error) {
	if err := p.checkClock(now); err != nil {
		return nil, err
	}
	applicable, err := p.lastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	rpt, err := p.rewardPerToken(applicable)
	if err != nil {
		return nil, err
	}
	p.store.rewardPerTokenStored.Set(rpt)
	p.store.lastUpdateTime.Set(applicable)
	return rpt, nil
}

// updateReward settles the accumulator, then the ledger of account unless it
// is the zero address. The settled ledger is returned for the caller to act on.
func (p *Pool) updateReward(account thor.Address, now uint64) (*Ledger, error) {
	rpt, err := p.settleGlobal(now)
	if err != nil {
		return nil, err
	}
	if account.IsZero() {
		return nil, nil
	}
	ledger, err := p.store.ledger(account)
	if err != nil {
		return nil, err
	}
	if err := ledger.settle(rpt); err != nil {
		return nil, err
	}
	return ledger, nil
}

// RewardPerToken returns the accumulator as of now.
func (p *Pool) RewardPerToken(now uint64) (*uint256.Int, error) {
	if err := p.checkClock(now); err != nil {
		return nil, err
	}
	applicable, err := p.lastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	return p.rewardPerToken(applicable)
}

// LastTimeRewardApplicable returns min(now, periodFinish).
func (p *Pool) LastTimeRewardApplicable(now uint64) (uint64, error) {
	return p.lastTimeRewardApplicable(now)
}
