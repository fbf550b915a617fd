package txstatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3raffle/internal/logging"
)

// ErrReverted is the failure recorded for a receipt with status 0.
var ErrReverted = errors.New("transaction reverted")

// ReceiptBackend is the part of a node client the receipt poller needs.
// TransactionReceipt must return ethereum.NotFound while the transaction
// is pending.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ReceiptSource turns receipt polling into an ordered Event stream.
type ReceiptSource struct {
	backend       ReceiptBackend
	interval      time.Duration
	confirmations uint64
	maxErrors     int
	log           *logging.Logger
}

type ReceiptOption func(*ReceiptSource)

// WithPollInterval sets the delay between receipt polls.
func WithPollInterval(d time.Duration) ReceiptOption {
	return func(s *ReceiptSource) { s.interval = d }
}

// WithConfirmations sets how many blocks on top of the inclusion block
// count as finalized. Zero finalizes at inclusion.
func WithConfirmations(n uint64) ReceiptOption {
	return func(s *ReceiptSource) { s.confirmations = n }
}

// WithMaxErrors fails the transaction after n consecutive polling errors.
// Zero retries forever.
func WithMaxErrors(n int) ReceiptOption {
	return func(s *ReceiptSource) { s.maxErrors = n }
}

func WithLogger(l *logging.Logger) ReceiptOption {
	return func(s *ReceiptSource) { s.log = l }
}

func NewReceiptSource(backend ReceiptBackend, opts ...ReceiptOption) *ReceiptSource {
	s := &ReceiptSource{
		backend:       backend,
		interval:      2 * time.Second,
		confirmations: 1,
		maxErrors:     30,
		log:           logging.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Watch emits Submitted, then Included and Finalized (or Failed) for hash.
// The channel is closed when a terminal event was sent or ctx ends.
func (s *ReceiptSource) Watch(ctx context.Context, hash common.Hash) <-chan Event {
	out := make(chan Event, 4)
	go s.run(ctx, hash, out)
	return out
}

func (s *ReceiptSource) run(ctx context.Context, hash common.Hash, out chan<- Event) {
	defer close(out)
	log := s.log.With("tx", hash.Hex())

	emit := func(ev Event) bool {
		ev.Hash = hash
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit(Event{Phase: PhaseSubmitted}) {
		return
	}

	var (
		included uint64
		failures int
	)
	for {
		done, err := s.poll(ctx, hash, &included, emit)
		if done {
			return
		}
		if err != nil {
			failures++
			log.Warnw("receipt poll failed", "attempt", failures, "error", err)
			if s.maxErrors > 0 && failures >= s.maxErrors {
				emit(Event{Phase: PhaseFailed, Err: fmt.Errorf("polling receipt: %w", err)})
				return
			}
		} else {
			failures = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

// poll performs one receipt check. It returns done once a terminal event
// was emitted or the consumer went away.
func (s *ReceiptSource) poll(ctx context.Context, hash common.Hash, included *uint64, emit func(Event) bool) (bool, error) {
	receipt, err := s.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) || (err == nil && receipt == nil) {
		return false, nil
	}
	if err != nil {
		return ctx.Err() != nil, err
	}

	if receipt.Status == types.ReceiptStatusFailed {
		emit(Event{Phase: PhaseFailed, Block: blockOf(receipt), Err: ErrReverted})
		return true, nil
	}

	block := blockOf(receipt)
	if *included == 0 {
		*included = block
		if !emit(Event{Phase: PhaseIncluded, Block: block}) {
			return true, nil
		}
	}

	if s.confirmations == 0 {
		emit(Event{Phase: PhaseFinalized, Block: block})
		return true, nil
	}
	head, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return ctx.Err() != nil, err
	}
	if head >= block+s.confirmations {
		emit(Event{Phase: PhaseFinalized, Block: block})
		return true, nil
	}
	return false, nil
}

func blockOf(r *types.Receipt) uint64 {
	if r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.Uint64()
}

// Track creates the pending transaction for a broadcast hash and follows the
// receipt stream in the background. Stop on the returned transaction ends
// polling.
func (s *ReceiptSource) Track(ctx context.Context, call Call, hash common.Hash) *PendingTransaction {
	tx := NewPendingTransaction(call)
	s.Attach(ctx, tx, hash)
	return tx
}

// Attach follows the receipt stream for hash on an existing transaction.
func (s *ReceiptSource) Attach(ctx context.Context, tx *PendingTransaction, hash common.Hash) {
	ctx, cancel := context.WithCancel(ctx)
	tx.Observe(cancel)
	events := s.Watch(ctx, hash)
	go func() {
		defer cancel()
		tx.Follow(ctx, events)
	}()
}
