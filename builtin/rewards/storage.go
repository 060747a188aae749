// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/builtin/solidity"
	"github.com/vechain/stakingrewards/thor"
)

var (
	slotOwner                = solidity.Slot("rewards.owner")
	slotStakingToken         = solidity.Slot("rewards.stakingToken")
	slotRewardsToken         = solidity.Slot("rewards.rewardsToken")
	slotRewardsDuration      = solidity.Slot("rewards.rewardsDuration")
	slotPeriodFinish         = solidity.Slot("rewards.periodFinish")
	slotLastUpdateTime       = solidity.Slot("rewards.lastUpdateTime")
	slotRewardRate           = solidity.Slot("rewards.rewardRate")
	slotRewardPerTokenStored = solidity.Slot("rewards.rewardPerTokenStored")
	slotTotalStaked          = solidity.Slot("rewards.totalSupply")
	slotLedgers              = solidity.Slot("rewards.ledgers")
)

// storage is the slot layout of the pool contract.
type storage struct {
	owner        *solidity.Address
	stakingToken *solidity.Address
	rewardsToken *solidity.Address

	rewardsDuration *solidity.Uint64
	periodFinish    *solidity.Uint64
	lastUpdateTime  *solidity.Uint64

	rewardRate           *solidity.Uint256
	rewardPerTokenStored *solidity.Uint256
	totalStaked          *solidity.Uint256

	ledgers *solidity.Mapping[thor.Address, *Ledger]
}

func newStorage(ctx *solidity.Context) *storage {
	return &storage{
		owner:                solidity.NewAddress(ctx, slotOwner),
		stakingToken:         solidity.NewAddress(ctx, slotStakingToken),
		rewardsToken:         solidity.NewAddress(ctx, slotRewardsToken),
		rewardsDuration:      solidity.NewUint64(ctx, slotRewardsDuration),
		periodFinish:         solidity.NewUint64(ctx, slotPeriodFinish),
		lastUpdateTime:       solidity.NewUint64(ctx, slotLastUpdateTime),
		rewardRate:           solidity.NewUint256(ctx, slotRewardRate),
		rewardPerTokenStored: solidity.NewUint256(ctx, slotRewardPerTokenStored),
		totalStaked:          solidity.NewUint256(ctx, slotTotalStaked),
		ledgers:              solidity.NewMapping[thor.Address, *Ledger](ctx, slotLedgers),
	}
}

func (s *storage) ledger(account thor.Address) (*Ledger, error) {
	ledger, err := s.ledgers.Get(account)
	if err != nil {
		return nil, err
	}
	return ledger.normalize(), nil
}

func (s *storage) setLedger(account thor.Address, ledger *Ledger) error {
	return s.ledgers.Set(account, ledger)
}

// Global is a snapshot of the pool wide state.
type Global struct {
	Owner                thor.Address
	StakingToken         thor.Address
	RewardsToken         thor.Address
	RewardsDuration      uint64
	PeriodFinish         uint64
	LastUpdateTime       uint64
	RewardRate           *uint256.Int
	RewardPerTokenStored *uint256.Int
	TotalStaked          *uint256.Int
}

func (s *storage) global() (*Global, error) {
	var (
		g   Global
		err error
	)
	if g.Owner, err = s.owner.Get(); err != nil {
		return nil, err
	}
	if g.StakingToken, err = s.stakingToken.Get(); err != nil {
		return nil, err
	}
	if g.RewardsToken, err = s.rewardsToken.Get(); err != nil {
		return nil, err
	}
	if g.RewardsDuration, err = s.rewardsDuration.Get(); err != nil {
		return nil, err
	}
	if g.PeriodFinish, err = s.periodFinish.Get(); err != nil {
		return nil, err
	}
	if g.LastUpdateTime, err = s.lastUpdateTime.Get(); err != nil {
		return nil, err
	}
	if g.RewardRate, err = s.rewardRate.Get(); err != nil {
		return nil, err
	}
	if g.RewardPerTokenStored, err = s.rewardPerTokenStored.Get(); err != nil {
		return nil, err
	}
	if g.TotalStaked, err = s.totalStaked.Get(); err != nil {
		return nil, err
	}
	return &g, nil
}
