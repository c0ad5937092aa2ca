package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_EveryTemplateHasQuestions(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	for _, tmpl := range all {
		assert.NotEmpty(t, tmpl.Label, tmpl.ID)
		assert.NotEmpty(t, tmpl.Questions, tmpl.ID)
		for _, q := range tmpl.Questions {
			assert.NotEmpty(t, q.Prompt)
			assert.NotEmpty(t, q.Competency)
		}
	}
}

func TestDomains(t *testing.T) {
	assert.Equal(t,
		[]string{"frontend", "backend", "fullstack", "devops", "qa", "sre", "dsa", "behavioral"},
		Domains())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		domain string
		wantID string
	}{
		{"Backend", "backend"},
		{"devops", "devops"},
		{" SRE ", "sre"},
		{"Behavioral", "behavioral"},
		{"Site Reliability Engineer", "sre"},
		{"data science", "frontend"},
		{"", "frontend"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.wantID, Lookup(tt.domain).ID)
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("QA"))
	assert.False(t, Known("mobile"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("templates: [}"))
	assert.Error(t, err)

	_, err = Parse([]byte("templates: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("templates:\n  - label: No ID\n"))
	assert.Error(t, err)
}

func TestAll_ReturnsCopy(t *testing.T) {
	first := All()
	first[0].ID = "mutated"
	assert.Equal(t, "frontend", All()[0].ID)
}

func TestAll_ReserveCoversLongestPlan(t *testing.T) {
	for _, tmpl := range All() {
		// intro plus bank plus reserve must reach the nine-question cap
		assert.GreaterOrEqual(t, 1+len(tmpl.Questions)+len(tmpl.Reserve), 9, tmpl.ID)

		seen := make(map[string]bool)
		all := make([]BankQuestion, 0, len(tmpl.Questions)+len(tmpl.Reserve))
		all = append(all, tmpl.Questions...)
		all = append(all, tmpl.Reserve...)
		for _, q := range all {
			assert.False(t, seen[q.Prompt], "%s repeats %q", tmpl.ID, q.Prompt)
			seen[q.Prompt] = true
			assert.NotEmpty(t, q.Competency)
		}
	}
}
