// Package txstatus tracks a submitted write call from broadcast to
// finalization and reduces the provider's status updates to a single
// loading/success/error view.
package txstatus

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the lifecycle position of one write call. Phases only move
// forward; Finalized and Failed are terminal.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseSubmitted
	PhaseIncluded
	PhaseFinalized
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreparing:
		return "preparing"
	case PhaseSubmitted:
		return "submitted"
	case PhaseIncluded:
		return "included"
	case PhaseFinalized:
		return "finalized"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseFinalized || p == PhaseFailed
}

// Loading reports whether a consumer should show an in-flight indicator.
func (p Phase) Loading() bool {
	return p == PhasePreparing || p == PhaseSubmitted || p == PhaseIncluded
}

// Event is one ordered status update from a status source.
type Event struct {
	Phase Phase
	Hash  common.Hash
	Block uint64
	Err   error
}

// Call describes the contract function a write action invoked.
type Call struct {
	Function string
	Args     []interface{}
	Value    *big.Int // payable amount in base units, nil for none
	Selector string   // 0x-prefixed 4-byte selector
}
