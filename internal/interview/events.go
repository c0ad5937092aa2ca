package interview

import "github.com/jonathan/interview-agent/internal/types"

// EventKind identifies an observer notification.
type EventKind string

// Observer notifications.
const (
	EventPhase    EventKind = "phase"
	EventSpeak    EventKind = "speak"
	EventTurn     EventKind = "turn"
	EventFollowUp EventKind = "follow_up"
	EventError    EventKind = "error"
	EventReport   EventKind = "report"
)

// Event is delivered to the observer on the session goroutine. Observers must
// not block and must not call Session methods synchronously.
type Event struct {
	Kind     EventKind
	Phase    types.Phase
	Text     string
	Turn     *types.TurnRecord
	Question *types.QuestionRecord
	Report   *types.Report
	Err      error
}

// Snapshot is a read-only view of the session, safe to read from any goroutine.
type Snapshot struct {
	ID            string
	Phase         types.Phase
	Cursor        int
	PlanLength    int
	Question      string
	Turns         int
	FollowUpsUsed int
	Ended         bool
}
