package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid UTF-8 string unchanged",
			input:    "BRK.B résumé",
			expected: "BRK.B résumé",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "invalid UTF-8 bytes removed",
			input:    "XY\xffZ",
			expected: "XYZ",
		},
		{
			name:     "multiple invalid UTF-8 sequences",
			input:    "Start\xffMiddle\xfeEnd\xfd",
			expected: "StartMiddleEnd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUTF8(tt.input))
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	runID := NewRunID()
	e := NewEnvelope(EventFlowReport, "", runID)

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, EventFlowReport, e.Type)
	assert.Equal(t, runID, e.RunID)
	assert.Equal(t, "insideredge", e.Source)
	assert.Equal(t, EnvelopeVersion, e.Version)
	assert.False(t, e.Timestamp.IsZero())

	assert.NotEqual(t, e.ID, NewEnvelope(EventFlowReport, "", runID).ID)
	assert.Equal(t, "worker", NewEnvelope(EventFiveFactors, "worker", runID).Source)
}
