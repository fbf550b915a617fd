package txstatus

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrStreamClosed is recorded when a status stream ends before a
	// terminal phase was observed.
	ErrStreamClosed = errors.New("status stream closed before the transaction settled")
	// ErrTransactionFailed is the fallback error of a Failed event without one.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNotObserved is returned by Wait once observation was stopped.
	ErrNotObserved = errors.New("transaction is no longer observed")
)

// Status is the consolidated view consumers render.
type Status struct {
	Phase     Phase
	Hash      common.Hash
	Block     uint64
	Err       error
	IsLoading bool
	IsSuccess bool // true only once Finalized was observed
	IsError   bool
	Detached  bool // observation stopped before a terminal phase
}

// PendingTransaction is the state of a single write action. It is safe for
// concurrent use; each write action owns its own instance.
type PendingTransaction struct {
	call Call

	mu       sync.Mutex
	phase    Phase
	hash     common.Hash
	block    uint64
	err      error
	detached bool
	changed  chan struct{} // closed and replaced on every state change
	done     chan struct{}
	cancel   context.CancelFunc
}

// NewPendingTransaction starts tracking call in the Preparing phase.
func NewPendingTransaction(call Call) *PendingTransaction {
	return &PendingTransaction{
		call:    call,
		phase:   PhasePreparing,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Call returns the descriptor of the submitted call.
func (p *PendingTransaction) Call() Call {
	return p.call
}

// Hash returns the transaction hash, zero until submitted.
func (p *PendingTransaction) Hash() common.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash
}

// Advance applies ev if it moves the transaction forward. Events for the
// current or an earlier phase, and anything after a terminal phase, are
// dropped. Returns whether the event was applied.
func (p *PendingTransaction) Advance(ev Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase.Terminal() || p.detached || ev.Phase <= p.phase {
		return false
	}

	p.phase = ev.Phase
	if ev.Hash != (common.Hash{}) {
		p.hash = ev.Hash
	}
	if ev.Block != 0 {
		p.block = ev.Block
	}
	if ev.Phase == PhaseFailed {
		p.err = ev.Err
		if p.err == nil {
			p.err = ErrTransactionFailed
		}
	}
	p.notifyLocked()
	if p.phase.Terminal() {
		close(p.done)
	}
	return true
}

// Fail moves the transaction to Failed with err.
func (p *PendingTransaction) Fail(err error) bool {
	return p.Advance(Event{Phase: PhaseFailed, Err: err})
}

// Status returns a snapshot of the consolidated state.
func (p *PendingTransaction) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *PendingTransaction) statusLocked() Status {
	return Status{
		Phase:     p.phase,
		Hash:      p.hash,
		Block:     p.block,
		Err:       p.err,
		IsLoading: p.phase.Loading() && !p.detached,
		IsSuccess: p.phase == PhaseFinalized,
		IsError:   p.phase == PhaseFailed,
		Detached:  p.detached,
	}
}

// Follow consumes events until a terminal phase, the stream closes or
// observation is stopped. When the stream closes because ctx ended the
// transaction is detached in its current phase. Any other early close marks
// it Failed so no consumer is left loading forever.
func (p *PendingTransaction) Follow(ctx context.Context, events <-chan Event) {
	for ev := range events {
		p.Advance(ev)
		if p.settled() {
			return
		}
	}
	if p.settled() {
		return
	}
	if ctx.Err() != nil {
		p.Stop()
		return
	}
	p.Fail(ErrStreamClosed)
}

// Observe attaches a cancel function that Stop uses to end the status
// subscription.
func (p *PendingTransaction) Observe(cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel = cancel
}

// Stop ends observation. The on-chain transaction is not affected; the
// tracked state freezes in its current phase.
func (p *PendingTransaction) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.phase.Terminal() || p.detached {
		return
	}
	p.detached = true
	p.notifyLocked()
	close(p.done)
}

// Done is closed when the transaction reaches a terminal phase or
// observation stops.
func (p *PendingTransaction) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until target is reached (a later non-failed phase also counts),
// the transaction fails, observation stops or ctx ends.
func (p *PendingTransaction) Wait(ctx context.Context, target Phase) (Status, error) {
	for {
		p.mu.Lock()
		st := p.statusLocked()
		changed := p.changed
		p.mu.Unlock()

		switch {
		case st.Phase == PhaseFailed:
			return st, st.Err
		case st.Phase >= target:
			return st, nil
		case st.Detached:
			return st, ErrNotObserved
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-changed:
		}
	}
}

func (p *PendingTransaction) settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase.Terminal() || p.detached
}

func (p *PendingTransaction) notifyLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}
