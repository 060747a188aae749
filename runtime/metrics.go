// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/stakingrewards/metrics"

var (
	metricCallDuration = metrics.LazyLoadHistogramVec("executor_call_duration_us", []string{"method", "outcome"}, metrics.BucketCallMicros)
	metricSeq          = metrics.LazyLoadGauge("executor_seq")
	metricLastTime     = metrics.LazyLoadGauge("executor_last_time")
)
