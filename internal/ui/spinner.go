package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner animates a loading indicator in the terminal.
// This is a lightweight spinner for non-TUI contexts. Stop may be called
// any number of times, so every exit path can stop it.
type Spinner struct {
	frames []string
	msg    string
	out    io.Writer
	stop   chan struct{}
	done   chan struct{}
	start  sync.Once
	once   sync.Once
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(msg string) *Spinner {
	return NewSpinnerTo(os.Stderr, msg)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, msg string) *Spinner {
	return &Spinner{
		frames: spinnerFrames,
		msg:    msg,
		out:    w,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the spinner animation in a goroutine.
func (s *Spinner) Start() *Spinner {
	s.start.Do(func() {
		go func() {
			defer close(s.done)
			ticker := time.NewTicker(80 * time.Millisecond)
			defer ticker.Stop()
			for i := 0; ; i++ {
				frame := StyleChain.Render(s.frames[i%len(s.frames)])
				fmt.Fprintf(s.out, "\r%s  %s", frame, s.msg)
				select {
				case <-s.stop:
					fmt.Fprintf(s.out, "\r%-60s\r", "") // clear line
					return
				case <-ticker.C:
				}
			}
		}()
	})
	return s
}

// Stop halts the spinner and waits for it to finish.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		started := true
		s.start.Do(func() { started = false })
		if started {
			<-s.done
		}
	})
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
