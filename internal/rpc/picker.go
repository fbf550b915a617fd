package rpc

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint can serve requests.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Strategy decides how an endpoint is chosen from a network's list.
type Strategy string

const (
	// StrategyDefault uses the first listed endpoint without probing.
	StrategyDefault Strategy = "default"
	// StrategyFastest probes every endpoint and scores latency and recency.
	StrategyFastest Strategy = "fastest"
	// StrategyFailover takes the first endpoint that answers, in list order.
	StrategyFailover Strategy = "failover"

	// Nodes more than this many blocks behind the best are discarded.
	staleBlockThreshold = 3
)

// ParseStrategy validates a configured strategy name. Empty means default.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case "":
		return StrategyDefault, nil
	case StrategyDefault, StrategyFastest, StrategyFailover:
		return st, nil
	default:
		return "", fmt.Errorf("unknown RPC strategy %q (want default, fastest or failover)", s)
	}
}

// Pick chooses an endpoint. Unchecked endpoints are candidates as long as
// no endpoint in the list has been probed.
func Pick(endpoints []Endpoint, strategy Strategy) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	switch strategy {
	case StrategyFastest:
		return pickFastest(endpoints)
	case StrategyFailover:
		return pickFailover(endpoints)
	default:
		return &endpoints[0], nil
	}
}

func pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	candidates := candidates(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	var best uint64
	for _, e := range candidates {
		if e.BlockNumber > best {
			best = e.BlockNumber
		}
	}

	var (
		winner    *Endpoint
		bestScore float64
	)
	for _, e := range candidates {
		if best > 0 && best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if s := score(e, best); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			return e, nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// score rewards low latency and loses a point per block behind best.
func score(e *Endpoint, best uint64) float64 {
	var s float64
	if e.Latency > 0 {
		s += 1000.0 / (float64(e.Latency) / float64(time.Millisecond))
	}
	if best > 0 {
		s += float64(10) - float64(best-e.BlockNumber)
	}
	return s
}

func candidates(endpoints []Endpoint) []*Endpoint {
	anyChecked := false
	for _, e := range endpoints {
		if e.Checked {
			anyChecked = true
			break
		}
	}

	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !anyChecked || !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
