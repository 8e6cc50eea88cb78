package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "count"],
	"properties": {
		"name": {"type": "string"},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestSchema_Valid(t *testing.T) {
	s := MustSchema("test", testSchema)

	assert.NoError(t, s.Validate([]byte(`{"name": "a", "count": 2}`)))
	assert.Equal(t, "test", s.Name())
}

func TestSchema_Violations(t *testing.T) {
	s := MustSchema("test", testSchema)

	err := s.Validate([]byte(`{"count": -1}`))
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 2)
	assert.Contains(t, err.Error(), "test: document does not match schema")
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustSchema("test", testSchema)

	err := s.Validate([]byte(`{not json`))
	require.Error(t, err)

	var verr *Error
	assert.False(t, errors.As(err, &verr))
}

func TestNewSchema_InvalidSource(t *testing.T) {
	_, err := NewSchema("broken", `{"type": 12}`)
	assert.Error(t, err)
}
