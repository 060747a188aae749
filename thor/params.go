// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "github.com/holiman/uint256"

// Constants of the reward engine.
const (
	// DefaultRewardsDuration is the epoch length (unit: second) used when none is configured.
	DefaultRewardsDuration uint64 = 7 * 24 * 3600

	// RewardScaleDecimals is the number of decimals carried by the reward-per-token accumulator.
	RewardScaleDecimals = 18
)

// RewardScale is the fixed-point scale of reward-per-token values (1e18).
var RewardScale = uint256.NewInt(1e18)
