// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakingrewards/co"
)

func TestGoesWait(t *testing.T) {
	var (
		goes co.Goes
		n    atomic.Int32
	)
	for range 10 {
		goes.Go(func(context.Context) { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestGoesStop(t *testing.T) {
	var (
		goes    co.Goes
		stopped atomic.Int32
	)
	for range 3 {
		goes.Go(func(ctx context.Context) {
			<-ctx.Done()
			stopped.Add(1)
		})
	}
	goes.Stop()
	assert.Equal(t, int32(3), stopped.Load())
}

func TestGoesStopIdle(t *testing.T) {
	var goes co.Goes
	goes.Stop()
	goes.Wait()
}
