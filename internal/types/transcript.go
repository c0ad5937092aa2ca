package types

import (
	"encoding/json"
	"time"
)

// TurnRecord is one resolved question, answered or skipped.
type TurnRecord struct {
	QuestionID string       `json:"question_id"`
	Prompt     string       `json:"prompt"`
	Answer     string       `json:"answer"`
	Competency Competency   `json:"competency"`
	Kind       QuestionKind `json:"kind"`
	SkillTag   string       `json:"skill_tag,omitempty"`
	InputMode  InputMode    `json:"input_mode"`
	Verdict    Verdict      `json:"verdict"`
	Skipped    bool         `json:"skipped"`
	AnsweredAt time.Time    `json:"answered_at"`
}

// Transcript is the append-only record of an interview.
type Transcript struct {
	entries []TurnRecord
}

// NewTranscript builds a transcript from existing records, in order.
func NewTranscript(entries ...TurnRecord) *Transcript {
	t := &Transcript{entries: make([]TurnRecord, 0, len(entries))}
	t.entries = append(t.entries, entries...)
	return t
}

// Append adds a record at the end.
func (t *Transcript) Append(rec TurnRecord) {
	t.entries = append(t.entries, rec)
}

// Len returns the number of records, skipped ones included.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of all records.
func (t *Transcript) Entries() []TurnRecord {
	if t == nil {
		return nil
	}
	out := make([]TurnRecord, len(t.entries))
	copy(out, t.entries)
	return out
}

// Answered returns a copy of the records that were not skipped.
func (t *Transcript) Answered() []TurnRecord {
	if t == nil {
		return nil
	}
	out := make([]TurnRecord, 0, len(t.entries))
	for _, e := range t.entries {
		if !e.Skipped {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n of the latest records, oldest first.
func (t *Transcript) Recent(n int) []TurnRecord {
	if t == nil || n <= 0 {
		return nil
	}
	start := len(t.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]TurnRecord, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out
}

// MarshalJSON encodes the transcript as a plain array of records.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	if t == nil || t.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.entries)
}

// UnmarshalJSON decodes a plain array of records.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var entries []TurnRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	t.entries = entries
	return nil
}
