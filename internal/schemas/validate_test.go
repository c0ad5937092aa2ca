package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Verdict(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid verdict",
			doc:  `{"score": 4, "feedback": ["clear"], "is_relevant": true, "needs_follow_up": false}`,
		},
		{
			name: "null follow-up question allowed",
			doc:  `{"score": 2, "is_relevant": true, "follow_up_question": null}`,
		},
		{
			name:    "missing score",
			doc:     `{"is_relevant": true}`,
			wantErr: true,
		},
		{
			name:    "score is a string",
			doc:     `{"score": "four", "is_relevant": true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Verdict, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidate_Plan(t *testing.T) {
	valid := `{"introduction": "Hi", "questions": [{"id": "q1", "prompt": "Why?", "competency": "technical", "follow_ups": [{"id": "q1_f1", "prompt": "How?"}]}]}`
	assert.NoError(t, Validate(Plan, valid))

	assert.Error(t, Validate(Plan, `{"introduction": "Hi", "questions": []}`))
	assert.Error(t, Validate(Plan, `{"questions": [{"prompt": ""}]}`))
}

func TestValidate_Classification(t *testing.T) {
	assert.NoError(t, Validate(Classification, `{"intent": "thinking", "response": "Take your time.", "extra_time": 20}`))
	assert.Error(t, Validate(Classification, `{"response": "no intent"}`))
	assert.Error(t, Validate(Classification, `{"intent": "thinking", "extra_time": -5}`))
}

func TestValidate_Transcript(t *testing.T) {
	valid := `[{"question_id": "q1", "prompt": "Intro?", "answer": "", "skipped": true, "kind": "main", "verdict": {"score": 1, "feedback": ["Question skipped"]}}]`
	assert.NoError(t, Validate(Transcript, valid))

	invalid := `[{"question_id": "q1", "prompt": "Intro?", "answer": "x", "skipped": false, "verdict": {"score": 7}}]`
	assert.Error(t, Validate(Transcript, invalid))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", `{}`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "missing.schema.json")
}

func TestValidate_MalformedDocument(t *testing.T) {
	assert.Error(t, Validate(Report, `{not json`))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "Asha"}`))

	err := ValidateJSONString(schema, `{"name": 3}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	err = ValidateJSONString(`{invalid`, `{}`)
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
}
