package ui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWritesMessage(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "buying ticket").Start()
	time.Sleep(20 * time.Millisecond)
	s.StopWithMsg(Success("done"))

	assert.Contains(t, out.String(), "buying ticket")
	assert.Contains(t, out.String(), "done")
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "x").Start()
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "never")
	assert.NotPanics(t, s.Stop)
	s.Start()
	assert.NotContains(t, out.String(), "never")
}

func TestConfirmFrom(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		" y \n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"yep\n": false,
	}
	for in, want := range cases {
		var w bytes.Buffer
		got := ConfirmFrom(bytes.NewBufferString(in), &w, "Cancel raffle?")
		assert.Equal(t, want, got, "input %q", in)
		assert.Contains(t, w.String(), "Cancel raffle? [y/N]")
	}
}
