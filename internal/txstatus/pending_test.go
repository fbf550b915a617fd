package txstatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHash = common.HexToHash("0xabc1")

func buyCall() Call {
	return Call{Function: "buyTicket", Args: []interface{}{uint64(3)}}
}

func TestNewPendingTransactionIsPreparing(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	st := tx.Status()
	assert.Equal(t, PhasePreparing, st.Phase)
	assert.True(t, st.IsLoading)
	assert.False(t, st.IsSuccess)
	assert.False(t, st.IsError)
	assert.Equal(t, "buyTicket", tx.Call().Function)
}

func TestSuccessOnlyAtFinalized(t *testing.T) {
	tx := NewPendingTransaction(buyCall())

	for _, ph := range []Phase{PhaseSubmitted, PhaseIncluded} {
		require.True(t, tx.Advance(Event{Phase: ph, Hash: testHash}))
		st := tx.Status()
		assert.False(t, st.IsSuccess, "success reported at %s", ph)
		assert.True(t, st.IsLoading)
	}

	require.True(t, tx.Advance(Event{Phase: PhaseFinalized, Block: 12}))
	st := tx.Status()
	assert.True(t, st.IsSuccess)
	assert.False(t, st.IsLoading)
	assert.Equal(t, uint64(12), st.Block)
	assert.Equal(t, testHash, st.Hash)
}

func TestPhasesNeverMoveBackwards(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	tx.Advance(Event{Phase: PhaseIncluded})

	assert.False(t, tx.Advance(Event{Phase: PhaseSubmitted}))
	assert.False(t, tx.Advance(Event{Phase: PhaseIncluded}))
	assert.Equal(t, PhaseIncluded, tx.Status().Phase)
}

func TestTerminalPhaseIsFinal(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	tx.Advance(Event{Phase: PhaseFinalized})
	assert.False(t, tx.Fail(errors.New("late")))
	assert.True(t, tx.Status().IsSuccess)

	select {
	case <-tx.Done():
	default:
		t.Fatal("done not closed at a terminal phase")
	}
}

func TestFailWithoutErrorUsesFallback(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	tx.Advance(Event{Phase: PhaseFailed})
	st := tx.Status()
	assert.True(t, st.IsError)
	assert.False(t, st.IsLoading)
	assert.ErrorIs(t, st.Err, ErrTransactionFailed)
}

func TestFollowOrderedStream(t *testing.T) {
	events := make(chan Event, 3)
	events <- Event{Phase: PhaseSubmitted, Hash: testHash}
	events <- Event{Phase: PhaseIncluded, Block: 5}
	events <- Event{Phase: PhaseFinalized, Block: 5}
	close(events)

	tx := NewPendingTransaction(buyCall())
	tx.Follow(context.Background(), events)
	assert.True(t, tx.Status().IsSuccess)
}

func TestFollowStreamClosedEarlyFails(t *testing.T) {
	events := make(chan Event, 1)
	events <- Event{Phase: PhaseSubmitted, Hash: testHash}
	close(events)

	tx := NewPendingTransaction(buyCall())
	tx.Follow(context.Background(), events)

	st := tx.Status()
	assert.True(t, st.IsError)
	assert.False(t, st.IsLoading)
	assert.ErrorIs(t, st.Err, ErrStreamClosed)
}

func TestFollowCancelledContextDetaches(t *testing.T) {
	events := make(chan Event, 1)
	events <- Event{Phase: PhaseSubmitted, Hash: testHash}
	close(events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx := NewPendingTransaction(buyCall())
	tx.Follow(ctx, events)

	st := tx.Status()
	assert.Equal(t, PhaseSubmitted, st.Phase)
	assert.True(t, st.Detached)
	assert.False(t, st.IsError)
	assert.NoError(t, st.Err)
}

func TestWaitReturnsAtTarget(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	go func() {
		time.Sleep(5 * time.Millisecond)
		tx.Advance(Event{Phase: PhaseSubmitted, Hash: testHash})
		tx.Advance(Event{Phase: PhaseIncluded, Block: 9})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	st, err := tx.Wait(ctx, PhaseIncluded)
	require.NoError(t, err)
	assert.Equal(t, PhaseIncluded, st.Phase)
	assert.False(t, st.IsSuccess)
}

func TestWaitReturnsFailure(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	reason := errors.New("reverted: Raffle not active")
	go tx.Fail(reason)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	st, err := tx.Wait(ctx, PhaseFinalized)
	assert.ErrorIs(t, err, reason)
	assert.True(t, st.IsError)
}

func TestWaitHonoursContext(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tx.Wait(ctx, PhaseFinalized)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopDetachesWithoutFailing(t *testing.T) {
	tx := NewPendingTransaction(buyCall())
	tx.Advance(Event{Phase: PhaseSubmitted, Hash: testHash})

	cancelled := false
	tx.Observe(func() { cancelled = true })
	tx.Stop()

	st := tx.Status()
	assert.True(t, cancelled)
	assert.True(t, st.Detached)
	assert.False(t, st.IsLoading)
	assert.False(t, st.IsError)
	assert.Equal(t, PhaseSubmitted, st.Phase)

	_, err := tx.Wait(context.Background(), PhaseFinalized)
	assert.ErrorIs(t, err, ErrNotObserved)

	assert.False(t, tx.Advance(Event{Phase: PhaseFinalized}))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "finalized", PhaseFinalized.String())
	assert.Equal(t, "unknown", Phase(42).String())
	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhaseIncluded.Terminal())
}
