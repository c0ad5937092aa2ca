package interview

// ListenOptions configures a listen primitive.
type ListenOptions struct {
	Continuous     bool
	InterimResults bool
	Language       string
}

// Listener captures the candidate's speech. Start delivers each finalized
// utterance to onFinal and failures to onError until Stop is called. Starting
// an active listener returns ErrAlreadyStarted. Callbacks may run on any goroutine.
type Listener interface {
	Start(opts ListenOptions, onFinal func(text string), onError func(err error)) error
	Stop()
	ResetBuffer()
}

// Speaker plays interviewer lines. onEnd runs once playback completes and never
// after Cancel. Callbacks may run on any goroutine.
type Speaker interface {
	Speak(text string, onEnd func()) error
	Cancel()
}
