package interview

import (
	"context"
	"sync"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/intent"
	"github.com/jonathan/interview-agent/internal/types"
)

// fakeListener is driven by the test through say and fail.
type fakeListener struct {
	mu       sync.Mutex
	active   bool
	onFinal  func(string)
	onError  func(error)
	starts   int
	resets   int
	startErr error
	lastOpts ListenOptions
}

func (f *fakeListener) Start(opts ListenOptions, onFinal func(string), onError func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		err := f.startErr
		f.startErr = nil
		return err
	}
	if f.active {
		return ErrAlreadyStarted
	}
	f.active = true
	f.starts++
	f.lastOpts = opts
	f.onFinal = onFinal
	f.onError = onError
	return nil
}

func (f *fakeListener) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
}

func (f *fakeListener) ResetBuffer() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeListener) listening() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeListener) say(text string) bool {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return false
	}
	cb := f.onFinal
	f.mu.Unlock()
	cb(text)
	return true
}

func (f *fakeListener) fail(err error) bool {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return false
	}
	cb := f.onError
	f.mu.Unlock()
	cb(err)
	return true
}

// fakeSpeaker finishes every line right away.
type fakeSpeaker struct {
	mu       sync.Mutex
	spoken   []string
	cancels  int
	failNext error
}

func (f *fakeSpeaker) Speak(text string, onEnd func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.spoken = append(f.spoken, text)
	go onEnd()
	return nil
}

func (f *fakeSpeaker) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSpeaker) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func (f *fakeSpeaker) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.spoken) == 0 {
		return ""
	}
	return f.spoken[len(f.spoken)-1]
}

func (f *fakeSpeaker) count(text string) int {
	n := 0
	for _, l := range f.lines() {
		if l == text {
			n++
		}
	}
	return n
}

// MockClassifier falls back to the rule-based classifier for unset funcs.
type MockClassifier struct {
	ClassifyResponseFunc func(ctx context.Context, req advisor.ClassifyRequest) (types.Classification, error)
	ClassifyTimeoutFunc  func(ctx context.Context, req advisor.TimeoutRequest) (types.Classification, error)
}

func (m *MockClassifier) ClassifyResponse(ctx context.Context, req advisor.ClassifyRequest) (types.Classification, error) {
	if m.ClassifyResponseFunc != nil {
		return m.ClassifyResponseFunc(ctx, req)
	}
	return intent.Local{}.ClassifyResponse(ctx, req)
}

func (m *MockClassifier) ClassifyTimeout(ctx context.Context, req advisor.TimeoutRequest) (types.Classification, error) {
	if m.ClassifyTimeoutFunc != nil {
		return m.ClassifyTimeoutFunc(ctx, req)
	}
	return intent.Local{}.ClassifyTimeout(ctx, req)
}

// MockReporter is a function-field Reporter.
type MockReporter struct {
	BuildReportFunc func(ctx context.Context, req advisor.ReportRequest) (*types.PartialReport, error)
}

func (m *MockReporter) BuildReport(ctx context.Context, req advisor.ReportRequest) (*types.PartialReport, error) {
	return m.BuildReportFunc(ctx, req)
}

// eventLog records observer notifications.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) observe(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) lastOf(kind EventKind) (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind == kind {
			return l.events[i], true
		}
	}
	return Event{}, false
}
