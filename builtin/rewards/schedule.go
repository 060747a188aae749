// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

// NotifyRewardAmount pulls amount of the rewards token from the owner and
// starts a new epoch of rewardsDuration at now. Rewards still unpaid from a
// running epoch are folded into the new rate.
func (p *Pool) NotifyRewardAmount(caller thor.Address, now uint64, amount *uint256.Int) error {
	return p.call("notifyRewardAmount", func() error {
		if err := p.onlyOwner(caller); err != nil {
			return err
		}
		if amount == nil {
			amount = new(uint256.Int)
		}
		if _, err := p.updateReward(thor.Address{}, now); err != nil {
			return err
		}

		rewardsToken, err := p.rewardsToken()
		if err != nil {
			return err
		}
		if !amount.IsZero() {
			if err := rewardsToken.TransferFrom(p.Address(), caller, p.Address(), amount); err != nil {
				return transferFailed(err)
			}
		}

		duration, err := p.store.rewardsDuration.Get()
		if err != nil {
			return err
		}
		if duration == 0 {
			return ErrInvalidDuration
		}
		finish, err := p.store.periodFinish.Get()
		if err != nil {
			return err
		}
		rate, err := p.store.rewardRate.Get()
		if err != nil {
			return err
		}

		total := amount
		if now < finish {
			leftover, err := mul(uint256.NewInt(finish-now), rate)
			if err != nil {
				return err
			}
			if total, err = add(amount, leftover); err != nil {
				return err
			}
		}
		newRate := new(uint256.Int).Div(total, uint256.NewInt(duration))

		if err := p.checkSolvency(rewardsToken.BalanceOf, newRate, duration); err != nil {
			return err
		}
		if now > math.MaxUint64-duration {
			return ErrArithmeticOverflow
		}

		p.store.rewardRate.Set(newRate)
		p.store.lastUpdateTime.Set(now)
		p.store.periodFinish.Set(now + duration)

		p.emit(RewardAddedEvent, nil, amount)
		metricRewardRate().Set(gaugeValue(newRate))
		metricPeriodFinish().Set(int64(min(now+duration, math.MaxInt64)))
		logger.Info("reward added", "reward", amount, "rate", newRate, "finish", now+duration)
		return nil
	})
}

// checkSolvency fails unless rate * duration is covered by the pool's
// rewards token balance, excluding staked principal when both tokens are the same.
func (p *Pool) checkSolvency(balanceOf func(thor.Address) (*uint256.Int, error), rate *uint256.Int, duration uint64) error {
	available, err := balanceOf(p.Address())
	if err != nil {
		return err
	}
	same, err := p.sameToken()
	if err != nil {
		return err
	}
	if same {
		staked, err := p.store.totalStaked.Get()
		if err != nil {
			return err
		}
		if staked.Gt(available) {
			return ErrInvalidRate
		}
		available = new(uint256.Int).Sub(available, staked)
	}

	required, err := mul(rate, uint256.NewInt(duration))
	if err != nil {
		return err
	}
	if required.Gt(available) {
		return ErrInvalidRate
	}
	return nil
}

// SetRewardsDuration changes the epoch length used by the next notify.
func (p *Pool) SetRewardsDuration(caller thor.Address, now uint64, duration uint64) error {
	return p.call("setRewardsDuration", func() error {
		if err := p.onlyOwner(caller); err != nil {
			return err
		}
		if err := p.checkClock(now); err != nil {
			return err
		}
		finish, err := p.store.periodFinish.Get()
		if err != nil {
			return err
		}
		if now < finish {
			return ErrEpochActive
		}
		if duration == 0 {
			return ErrInvalidDuration
		}
		p.store.rewardsDuration.Set(duration)
		p.emit(RewardsDurationUpdatedEvent, nil, uint256.NewInt(duration))
		logger.Info("rewards duration updated", "duration", duration)
		return nil
	})
}

// RewardForDuration is rewardRate * rewardsDuration.
func (p *Pool) RewardForDuration() (*uint256.Int, error) {
	rate, err := p.store.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	duration, err := p.store.rewardsDuration.Get()
	if err != nil {
		return nil, err
	}
	return mul(rate, uint256.NewInt(duration))
}
