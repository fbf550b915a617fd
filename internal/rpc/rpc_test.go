package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headServer answers eth_blockNumber with block after sleeping delay.
func headServer(t *testing.T, block uint64, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x%x"}`, req.ID, block)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

// ── Probe ──

func TestProbeHealthy(t *testing.T) {
	srv := headServer(t, 1000, 0)

	ep := Probe(context.Background(), srv.URL, 0)
	require.NoError(t, ep.Err)
	assert.True(t, ep.Healthy)
	assert.True(t, ep.Checked)
	assert.Equal(t, uint64(1000), ep.BlockNumber)
	assert.Positive(t, ep.Latency)
}

func TestProbeUnreachable(t *testing.T) {
	ep := Probe(context.Background(), deadURL(t), 0)
	assert.Error(t, ep.Err)
	assert.False(t, ep.Healthy)
	assert.True(t, ep.Checked)
}

func TestProbeRecency(t *testing.T) {
	cases := []struct {
		name    string
		block   uint64
		best    uint64
		healthy bool
	}{
		{"no reference", 0, 0, true},
		{"at threshold", 997, 1000, true},
		{"too far behind", 500, 510, false},
		{"ahead of reference", 1005, 1000, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := headServer(t, tc.block, 0)
			ep := Probe(context.Background(), srv.URL, tc.best)
			require.NoError(t, ep.Err)
			assert.Equal(t, tc.healthy, ep.Healthy)
		})
	}
}

func TestProbeAllKeepsOrderAndMarksStale(t *testing.T) {
	fresh := headServer(t, 2000, 0)
	stale := headServer(t, 1990, 0)
	dead := deadURL(t)

	eps := ProbeAll(context.Background(), []string{stale.URL, dead, fresh.URL})
	require.Len(t, eps, 3)

	assert.Equal(t, stale.URL, eps[0].URL)
	assert.False(t, eps[0].Healthy, "10 blocks behind the best head")
	assert.Error(t, eps[1].Err)
	assert.False(t, eps[1].Healthy)
	assert.True(t, eps[2].Healthy)
}

// ── Pick ──

func TestPickEmpty(t *testing.T) {
	_, err := Pick(nil, StrategyFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestPickDefaultIsFirst(t *testing.T) {
	eps := []Endpoint{{URL: "a", Checked: true}, {URL: "b", Checked: true, Healthy: true}}
	got, err := Pick(eps, StrategyDefault)
	require.NoError(t, err)
	assert.Equal(t, "a", got.URL)
}

func TestPickFastestPrefersLatency(t *testing.T) {
	eps := []Endpoint{
		{URL: "slow", Latency: 200 * time.Millisecond, BlockNumber: 100, Healthy: true, Checked: true},
		{URL: "fast", Latency: 20 * time.Millisecond, BlockNumber: 100, Healthy: true, Checked: true},
	}
	got, err := Pick(eps, StrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, "fast", got.URL)
}

func TestPickFastestSkipsStaleAndUnhealthy(t *testing.T) {
	eps := []Endpoint{
		{URL: "stale", Latency: time.Millisecond, BlockNumber: 90, Healthy: true, Checked: true},
		{URL: "down", Checked: true},
		{URL: "ok", Latency: 300 * time.Millisecond, BlockNumber: 100, Healthy: true, Checked: true},
	}
	got, err := Pick(eps, StrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.URL)
}

func TestPickFastestNothingHealthy(t *testing.T) {
	eps := []Endpoint{{URL: "a", Checked: true}, {URL: "b", Checked: true}}
	_, err := Pick(eps, StrategyFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestPickUncheckedAreCandidates(t *testing.T) {
	got, err := Pick([]Endpoint{{URL: "a"}, {URL: "b"}}, StrategyFailover)
	require.NoError(t, err)
	assert.Equal(t, "a", got.URL)
}

func TestPickFailoverSkipsUnhealthy(t *testing.T) {
	eps := []Endpoint{{URL: "a", Checked: true}, {URL: "b", Checked: true, Healthy: true}}
	got, err := Pick(eps, StrategyFailover)
	require.NoError(t, err)
	assert.Equal(t, "b", got.URL)
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"":         StrategyDefault,
		"default":  StrategyDefault,
		"fastest":  StrategyFastest,
		"failover": StrategyFailover,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("round-robin")
	assert.Error(t, err)
}

// ── Select ──

func TestSelectDefaultDoesNotProbe(t *testing.T) {
	dead := deadURL(t)
	url, err := Select(context.Background(), []string{dead, "http://other"}, StrategyDefault)
	require.NoError(t, err)
	assert.Equal(t, dead, url)
}

func TestSelectFailoverSkipsDeadNode(t *testing.T) {
	live := headServer(t, 10, 0)
	url, err := Select(context.Background(), []string{deadURL(t), live.URL}, StrategyFailover)
	require.NoError(t, err)
	assert.Equal(t, live.URL, url)
}

func TestSelectFastest(t *testing.T) {
	slow := headServer(t, 50, 150*time.Millisecond)
	fast := headServer(t, 50, 0)
	url, err := Select(context.Background(), []string{slow.URL, fast.URL}, StrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, fast.URL, url)
}

func TestSelectAllDead(t *testing.T) {
	_, err := Select(context.Background(), []string{deadURL(t), deadURL(t)}, StrategyFailover)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)

	_, err = Select(context.Background(), nil, StrategyFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}
