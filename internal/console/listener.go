// Package console provides terminal versions of the listen and speak
// primitives: each line read from the input is one finalized utterance, and
// interviewer lines are written to the output.
package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/jonathan/interview-agent/internal/interview"
)

// Listener reads utterances line by line. Lines read while it is stopped are
// held until the next Start unless ResetBuffer drops them.
type Listener struct {
	mu      sync.Mutex
	active  bool
	onFinal func(string)
	onError func(error)
	pending []string
	eof     bool
	done    chan struct{}
}

// NewListener starts reading r in the background.
func NewListener(r io.Reader) *Listener {
	l := &Listener{done: make(chan struct{})}
	go l.read(r)
	return l
}

// Start delivers held and future lines to onFinal until Stop.
func (l *Listener) Start(_ interview.ListenOptions, onFinal func(string), onError func(error)) error {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return interview.ErrAlreadyStarted
	}
	if l.eof && len(l.pending) == 0 {
		l.mu.Unlock()
		return &interview.ListenError{Kind: interview.ListenErrAborted, Cause: io.EOF}
	}
	l.active = true
	l.onFinal = onFinal
	l.onError = onError
	held := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, line := range held {
		onFinal(line)
	}
	return nil
}

// Stop ends delivery. Stopping an idle listener is a no-op.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	l.onFinal = nil
	l.onError = nil
}

// ResetBuffer drops lines read while the listener was stopped.
func (l *Listener) ResetBuffer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
}

// Done is closed when the input is exhausted.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

func (l *Listener) read(r io.Reader) {
	defer close(l.done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l.deliver(strings.TrimSpace(scanner.Text()))
	}

	l.mu.Lock()
	l.eof = true
	onError := l.onError
	l.mu.Unlock()

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && onError != nil {
		onError(&interview.ListenError{Kind: interview.ListenErrCapture, Cause: err})
	}
}

func (l *Listener) deliver(line string) {
	l.mu.Lock()
	if !l.active {
		l.pending = append(l.pending, line)
		l.mu.Unlock()
		return
	}
	onFinal := l.onFinal
	l.mu.Unlock()
	onFinal(line)
}
