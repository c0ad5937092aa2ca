// Package plan builds and holds the ordered question plan of an interview.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/types"
)

// ErrIndexOutOfRange is returned when a plan position does not exist
var ErrIndexOutOfRange = errors.New("plan index out of range")

// NewQuestionID returns a fresh question identifier.
func NewQuestionID() string {
	return "q_" + uuid.NewString()
}

// Plan is an index-addressed question sequence. It only grows, and only by
// insertion directly after the active position.
type Plan struct {
	records []types.QuestionRecord
}

// New creates a plan holding records in order.
func New(records ...types.QuestionRecord) *Plan {
	p := &Plan{records: make([]types.QuestionRecord, 0, len(records))}
	p.records = append(p.records, records...)
	return p
}

// Len returns the number of questions, answered ones included.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.records)
}

// At returns the question at index i.
func (p *Plan) At(i int) (types.QuestionRecord, error) {
	if p == nil || i < 0 || i >= len(p.records) {
		return types.QuestionRecord{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, p.Len())
	}
	return p.records[i], nil
}

// InsertAfter splices rec in at cursor+1, so it becomes the next question asked.
func (p *Plan) InsertAfter(cursor int, rec types.QuestionRecord) error {
	if cursor < 0 || cursor >= p.Len() {
		return fmt.Errorf("%w: cannot insert after %d of %d", ErrIndexOutOfRange, cursor, p.Len())
	}
	pos := cursor + 1
	p.records = append(p.records, types.QuestionRecord{})
	copy(p.records[pos+1:], p.records[pos:])
	p.records[pos] = rec
	return nil
}

// Records returns a copy of the sequence.
func (p *Plan) Records() []types.QuestionRecord {
	if p == nil {
		return nil
	}
	out := make([]types.QuestionRecord, len(p.records))
	copy(out, p.records)
	return out
}

// MainCount returns the number of questions that are not follow-ups.
func (p *Plan) MainCount() int {
	n := 0
	for _, r := range p.Records() {
		if !r.Kind.IsFollowUp() {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the plan as a plain array of records.
func (p *Plan) MarshalJSON() ([]byte, error) {
	if p == nil || p.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.records)
}

// UnmarshalJSON decodes a plain array of records.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var records []types.QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	p.records = records
	return nil
}
