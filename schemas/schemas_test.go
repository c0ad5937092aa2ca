package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles := []string{
		"plan.schema.json",
		"verdict.schema.json",
		"classification.schema.json",
		"report.schema.json",
		"transcript.schema.json",
	}

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := fs.ReadFile(Files, schemaFile)
			require.NoError(t, err, "schema file should be embedded")

			var schema map[string]any
			require.NoError(t, json.Unmarshal(data, &schema), "schema should be valid JSON")

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
			assert.NotEmpty(t, schema["title"])
			assert.NotEmpty(t, schema["type"])
		})
	}
}

func TestEmbeddedFilesAreAllListed(t *testing.T) {
	matches, err := fs.Glob(Files, "*.schema.json")
	require.NoError(t, err)
	assert.Len(t, matches, 5)
}
