package rpc

import (
	"context"
	"fmt"
)

// Select resolves the URL to use from a network's endpoint list.
// StrategyDefault and single-entry lists return the first URL without any
// network traffic. StrategyFailover probes in order and stops at the first
// healthy node; StrategyFastest probes all of them.
func Select(ctx context.Context, urls []string, strategy Strategy) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 || strategy == StrategyDefault || strategy == "" {
		return urls[0], nil
	}

	if strategy == StrategyFailover {
		var firstErr error
		for _, u := range urls {
			ep := Probe(ctx, u, 0)
			if ep.Healthy {
				return u, nil
			}
			if firstErr == nil {
				firstErr = ep.Err
			}
		}
		return "", fmt.Errorf("%w: %v", ErrNoHealthyRPC, firstErr)
	}

	winner, err := Pick(ProbeAll(ctx, urls), strategy)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
