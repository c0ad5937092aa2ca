package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ErrEmptyText is returned when asked to speak nothing.
var ErrEmptyText = errors.New("console: nothing to speak")

// Speaker writes interviewer lines and simulates the time it takes to say them.
type Speaker struct {
	mu      sync.Mutex
	out     io.Writer
	prefix  string
	perWord time.Duration
	timer   *time.Timer
	seq     uint64
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithPrefix sets the label printed before each line.
func WithPrefix(prefix string) SpeakerOption {
	return func(s *Speaker) { s.prefix = prefix }
}

// WithWordDelay sets the simulated speaking time per word.
func WithWordDelay(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		if d >= 0 {
			s.perWord = d
		}
	}
}

// NewSpeaker writes to out. By default lines are printed with no delay.
func NewSpeaker(out io.Writer, opts ...SpeakerOption) *Speaker {
	s := &Speaker{out: out, prefix: "Interviewer: "}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Speak prints text, replacing any line still being spoken, and calls onEnd
// once the simulated playback finishes.
func (s *Speaker) Speak(text string, onEnd func()) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if _, err := fmt.Fprintf(s.out, "%s%s\n", s.prefix, text); err != nil {
		return err
	}

	s.seq++
	seq := s.seq
	delay := time.Duration(len(strings.Fields(text))) * s.perWord
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current := seq == s.seq
		if current {
			s.timer = nil
		}
		s.mu.Unlock()
		if current && onEnd != nil {
			onEnd()
		}
	})
	return nil
}

// Cancel stops the line being spoken; its onEnd never runs.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Speaker) stopLocked() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
