// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/api/admin"
	"github.com/vechain/stakingrewards/test/testpool"
)

func TestRoutes(t *testing.T) {
	p := testpool.New(t)
	var level slog.LevelVar
	handler := New(p.Exec, p.Logs, Options{
		AllowedOrigins: "https://example.org",
		EnableMetrics:  true,
		LogsLimit:      100,
		LogLevel:       &level,
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()

	for _, path := range []string{"/pool", "/events", "/admin/loglevel", "/admin/health"} {
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}

	res, err := http.Get(ts.URL + "/nowhere")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = http.Post(ts.URL+"/admin/loglevel", "application/json", strings.NewReader(`{"level":"warn"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, slog.LevelWarn, level.Level())
}

func TestHealth(t *testing.T) {
	p := testpool.New(t)
	p.Stake(t, p.Alice, testpool.Units(1))
	ts := httptest.NewServer(New(p.Exec, p.Logs, Options{LogLevel: new(slog.LevelVar)}))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/admin/health")
	require.NoError(t, err)
	defer res.Body.Close()
	var h admin.Health
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	assert.True(t, h.Healthy)
	assert.Equal(t, uint64(2), h.Seq)
	assert.Equal(t, testpool.Start, h.LastTime)
}

func TestOptionalRoutes(t *testing.T) {
	p := testpool.New(t)
	ts := httptest.NewServer(New(p.Exec, nil, Options{}))
	defer ts.Close()

	for _, path := range []string{"/events", "/admin/loglevel"} {
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
	}
}

func TestCORS(t *testing.T) {
	p := testpool.New(t)
	ts := httptest.NewServer(New(p.Exec, p.Logs, Options{AllowedOrigins: "https://example.org"}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/pool/calls", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "https://example.org", res.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/pool", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddlewareUnnamedRoute(t *testing.T) {
	called := false
	h := metricsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
