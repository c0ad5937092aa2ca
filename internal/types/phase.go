package types

// Phase is the orchestrator's externally visible state.
type Phase string

// Orchestrator phases.
const (
	PhaseReady      Phase = "ready"
	PhaseSpeaking   Phase = "ai-speaking"
	PhaseListening  Phase = "listening"
	PhaseProcessing Phase = "processing"
	PhaseEnding     Phase = "ending"
	PhaseError      Phase = "error"
)

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseEnding
}

// InputMode records how an answer was given.
type InputMode string

const (
	// InputVoice is an answer captured by the listen primitive
	InputVoice InputMode = "voice"
	// InputText is a typed answer
	InputText InputMode = "text"
)
