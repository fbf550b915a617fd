package rpc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProbeAll probes every URL concurrently. Results keep the order of urls;
// a failed probe is reported on its Endpoint, never as an error.
func ProbeAll(ctx context.Context, urls []string) []Endpoint {
	out := make([]Endpoint, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			out[i] = Probe(ctx, u, 0)
			return nil
		})
	}
	_ = g.Wait()

	// Re-judge health against the best head seen.
	var best uint64
	for _, e := range out {
		if e.Err == nil && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	for i := range out {
		if out[i].Err == nil && best-out[i].BlockNumber > staleBlockThreshold {
			out[i].Healthy = false
		}
	}
	return out
}
