package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionEnded is returned by requests made after the session reached ending.
	ErrSessionEnded = errors.New("interview: session ended")
	// ErrNotListening is returned when an answer is submitted outside the listening phase.
	ErrNotListening = errors.New("interview: not listening")
	// ErrAlreadyStarted is returned by Start on a running session and by listen
	// primitives asked to start twice. The orchestrator ignores it from primitives.
	ErrAlreadyStarted = errors.New("interview: already started")
	// ErrNotInError is returned by Resume when the session is not in the error phase.
	ErrNotInError = errors.New("interview: session is not in the error phase")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("interview: session loop already running")
)

// Listen error kinds reported by listen primitives.
const (
	ListenErrNoSpeech   = "no-speech"
	ListenErrAborted    = "aborted"
	ListenErrNetwork    = "network"
	ListenErrNotAllowed = "not-allowed"
	ListenErrCapture    = "audio-capture"
)

// silentKinds surface as the error phase without a message for the candidate
var silentKinds = map[string]bool{
	ListenErrNoSpeech: true,
	ListenErrAborted:  true,
	ListenErrNetwork:  true,
}

// ListenError is reported by a listen primitive through its error callback.
type ListenError struct {
	Kind  string
	Cause error
}

func (e *ListenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("listen error (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("listen error (%s)", e.Kind)
}

func (e *ListenError) Unwrap() error {
	return e.Cause
}

// SpeakError wraps a failure of the speak primitive.
type SpeakError struct {
	Cause error
}

func (e *SpeakError) Error() string {
	return fmt.Sprintf("speak error: %v", e.Cause)
}

func (e *SpeakError) Unwrap() error {
	return e.Cause
}

// userMessage returns what the candidate is told about a primitive failure.
func userMessage(err error) string {
	var le *ListenError
	if errors.As(err, &le) {
		if silentKinds[le.Kind] {
			return ""
		}
		if le.Kind == ListenErrNotAllowed {
			return "Microphone access was denied. Allow access, then resume."
		}
		return "The microphone is unavailable. Check your input device, then resume."
	}
	var se *SpeakError
	if errors.As(err, &se) {
		return "Audio playback failed. Check your speakers, then resume."
	}
	return "Something went wrong. You can resume the interview."
}
