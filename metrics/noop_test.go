// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	assert.False(t, Enabled())
	assert.Nil(t, HTTPHandler())

	labels := map[string]string{"unknown": "ignored"}
	assert.NotPanics(t, func() {
		Counter("calls").Add(1)
		CounterVec("calls_vec", []string{"method"}).AddWithLabel(2, labels)
		Gauge("staked").Set(10)
		Gauge("staked").Add(-3)
		GaugeVec("staked_vec", nil).SetWithLabel(1, labels)
		Histogram("latency", nil).Observe(5)
		HistogramVec("latency_vec", nil, BucketCallMicros).ObserveWithLabels(5, labels)
	})
}
