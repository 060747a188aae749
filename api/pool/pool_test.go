// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/test/testpool"
	"github.com/vechain/stakingrewards/thor"
)

func initServer(t *testing.T) (*testpool.Pool, *httptest.Server) {
	p := testpool.New(t)
	router := mux.NewRouter()
	New(p.Exec).Mount(router, "/pool")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return p, ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func addr(a thor.Address) *thor.Address { return &a }

func TestCallsAndViews(t *testing.T) {
	p, ts := initServer(t)
	stk := p.Contracts.StakingToken.Address()
	rwd := p.Contracts.RewardsToken.Address()
	poolAddr := p.Contracts.Pool.Address()

	calls := []CallRequest{
		{Caller: p.Alice, Method: "token.approve", Token: &stk, Spender: &poolAddr, Amount: "100000000000000000000"},
		{Caller: p.Alice, Method: "stake", Amount: "100000000000000000000"},
		{Caller: p.Owner, Method: "token.approve", Token: &rwd, Spender: &poolAddr, Amount: "0x25f273933db5700000"},
		{Caller: p.Owner, Method: "notifyRewardAmount", Amount: "0x25f273933db5700000"},
	}
	for i, c := range calls {
		body, status := httpPost(t, ts.URL+"/pool/calls", c)
		require.Equal(t, http.StatusOK, status, string(body))
		var r Receipt
		require.NoError(t, json.Unmarshal(body, &r))
		assert.Equal(t, uint64(i+1), r.Seq)
		assert.False(t, r.Reverted, r.Error)
		assert.Equal(t, c.Method, r.Method)
		assert.NotEmpty(t, r.Events)
	}

	body, status := httpGet(t, fmt.Sprintf("%s/pool?time=%d", ts.URL, testpool.Start+7*24*3600))
	require.Equal(t, http.StatusOK, status, string(body))
	var g Global
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, p.Owner, g.Owner)
	assert.Equal(t, poolAddr, g.Address)
	assert.Equal(t, uint64(4), g.Seq)
	assert.Equal(t, "100000000000000000000", g.TotalSupply)
	assert.Equal(t, testpool.Start+7*24*3600, g.PeriodFinish)
	assert.Equal(t, g.PeriodFinish, g.LastTimeRewardApplicable)
	assert.NotEqual(t, "0", g.RewardRate)

	body, status = httpGet(t, fmt.Sprintf("%s/pool/accounts/%v?time=%d", ts.URL, p.Alice, testpool.Start+24*3600))
	require.Equal(t, http.StatusOK, status, string(body))
	var a Account
	require.NoError(t, json.Unmarshal(body, &a))
	assert.Equal(t, p.Alice, a.Address)
	assert.Equal(t, "100000000000000000000", a.Balance)
	assert.Equal(t, "900000000000000000000", a.StakingTokenBalance)
	assert.Equal(t, "0", a.Allowance)
	assert.NotEqual(t, "0", a.Earned)
}

func TestCallReverted(t *testing.T) {
	p, ts := initServer(t)

	body, status := httpPost(t, ts.URL+"/pool/calls", CallRequest{Caller: p.Alice, Method: "notifyRewardAmount", Amount: "1"})
	require.Equal(t, http.StatusOK, status)
	var r Receipt
	require.NoError(t, json.Unmarshal(body, &r))
	assert.True(t, r.Reverted)
	assert.Equal(t, rewards.ErrUnauthorized.Error(), r.Error)
	assert.Empty(t, r.Events)
}

func TestCallBadRequests(t *testing.T) {
	p, ts := initServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown method", CallRequest{Caller: p.Alice, Method: "mint"}},
		{"bad amount", CallRequest{Caller: p.Alice, Method: "stake", Amount: "ten"}},
		{"unknown field", map[string]any{"caller": p.Alice, "method": "stake", "gas": 1}},
		{"clock regression", CallRequest{Caller: p.Alice, Method: "getReward", Time: testpool.Start - 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status := httpPost(t, ts.URL+"/pool/calls", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestViewErrors(t *testing.T) {
	p, ts := initServer(t)
	p.Stake(t, p.Alice, testpool.Units(1))
	p.Notify(t, testpool.Units(10))

	_, status := httpGet(t, ts.URL+"/pool/accounts/0xnotanaddress")
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpGet(t, ts.URL+"/pool?time=soon")
	assert.Equal(t, http.StatusBadRequest, status)

	// before the last update
	body, status := httpGet(t, fmt.Sprintf("%s/pool?time=%d", ts.URL, testpool.Start-10))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "before the last update")

	_, status = httpGet(t, ts.URL+"/pool")
	assert.Equal(t, http.StatusOK, status)
}
