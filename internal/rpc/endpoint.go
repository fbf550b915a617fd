package rpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Endpoint is an RPC URL with what the last probe measured.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked is set
	Checked     bool
	Err         error
}

// Probe asks url for its head block and times the round trip. A node that
// answers but trails bestBlock by more than staleBlockThreshold is
// unhealthy; pass 0 to skip the recency check.
func Probe(ctx context.Context, url string, bestBlock uint64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ep := Endpoint{URL: url, Checked: true}

	start := time.Now()
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer client.Close()

	block, err := client.BlockNumber(ctx)
	ep.Latency = time.Since(start)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.BlockNumber = block
	ep.Healthy = bestBlock == 0 || bestBlock <= block || bestBlock-block <= staleBlockThreshold
	return ep
}
