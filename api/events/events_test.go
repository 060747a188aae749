// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/builtin/rewards"
	"github.com/vechain/stakingrewards/builtin/token"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/test/testpool"
	"github.com/vechain/stakingrewards/tx"
)

const limit = 50

func initServer(t *testing.T) (*testpool.Pool, *httptest.Server) {
	p := testpool.New(t)
	router := mux.NewRouter()
	New(p.Logs, limit).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	p.Stake(t, p.Alice, testpool.Units(100))
	p.Notify(t, testpool.Units(700))
	p.Clock.Advance(3600)
	p.Stake(t, p.Bob, testpool.Units(50))
	p.Clock.Advance(3600)
	p.Must(t, &runtime.Call{Caller: p.Alice, Method: runtime.MethodGetReward})
	return p, ts
}

func query(t *testing.T, ts *httptest.Server, params url.Values) ([]*FilteredEvent, int) {
	res, err := http.Get(ts.URL + "/events?" + params.Encode()) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode
	}
	var out []*FilteredEvent
	require.NoError(t, json.Unmarshal(body, &out))
	return out, res.StatusCode
}

func TestFilterAll(t *testing.T) {
	_, ts := initServer(t)
	// approve, transfer and staked or added for each of 2 stakes and the
	// notify, then transfer and paid
	events, status := query(t, ts, url.Values{})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, events, 11)
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Meta.Seq, events[i].Meta.Seq)
	}
}

func TestFilterByTopic(t *testing.T) {
	p, ts := initServer(t)

	events, status := query(t, ts, url.Values{
		"address": {p.Contracts.Pool.Address().String()},
		"topic0":  {rewards.StakedEvent.String()},
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 2)
	assert.Equal(t, tx.AddressTopic(p.Alice), events[0].Topics[1])
	assert.Equal(t, tx.AddressTopic(p.Bob), events[1].Topics[1])
	assert.Equal(t, "stake", events[0].Meta.Method)

	events, _ = query(t, ts, url.Values{
		"topic0": {token.TransferEvent.String()},
		"topic2": {tx.AddressTopic(p.Alice).String()},
	})
	require.Len(t, events, 1)
	assert.Equal(t, "getReward", events[0].Meta.Method)
}

func TestFilterCallerTimeOrder(t *testing.T) {
	p, ts := initServer(t)

	events, _ := query(t, ts, url.Values{"caller": {p.Bob.String()}})
	assert.Len(t, events, 3)

	events, _ = query(t, ts, url.Values{"from": {fmt.Sprint(testpool.Start + 3600)}})
	assert.Len(t, events, 5)

	events, _ = query(t, ts, url.Values{
		"from": {fmt.Sprint(testpool.Start)},
		"to":   {fmt.Sprint(testpool.Start + 3600)},
	})
	assert.Len(t, events, 9)

	events, _ = query(t, ts, url.Values{"order": {"desc"}, "limit": {"2"}})
	require.Len(t, events, 2)
	assert.Equal(t, rewards.RewardPaidEvent, events[0].Topics[0])

	events, _ = query(t, ts, url.Values{"offset": {"9"}})
	assert.Len(t, events, 2)
}

func TestFilterBadRequests(t *testing.T) {
	_, ts := initServer(t)

	for _, params := range []url.Values{
		{"address": {"0x1"}},
		{"topic1": {"zz"}},
		{"caller": {"bob"}},
		{"from": {"x"}},
		{"from": {"10"}, "to": {"5"}},
		{"order": {"sideways"}},
		{"limit": {fmt.Sprint(limit + 1)}},
		{"offset": {"-1"}},
	} {
		_, status := query(t, ts, params)
		assert.Equal(t, http.StatusBadRequest, status, params.Encode())
	}
}
