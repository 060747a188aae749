// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/builtin/reverts"
	"github.com/vechain/stakingrewards/metrics"
)

var (
	metricCalls        = metrics.LazyLoadCounterVec("pool_call_count", []string{"method", "outcome"})
	metricTotalStaked  = metrics.LazyLoadGauge("pool_total_staked")
	metricRewardRate   = metrics.LazyLoadGauge("pool_reward_rate")
	metricPeriodFinish = metrics.LazyLoadGauge("pool_period_finish")
)

// gaugeValue saturates at MaxInt64.
func gaugeValue(v *uint256.Int) int64 {
	if v == nil {
		return 0
	}
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v.Uint64())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case reverts.IsRevertErr(err):
		return "reverted"
	default:
		return "error"
	}
}
