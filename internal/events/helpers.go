package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventFlowReport  = "options.flow_report"
	EventFiveFactors = "options.five_factors"
	EventFlowRequest = "options.flow_request"
	EnvelopeVersion  = "1.0"
	defaultSource    = "insideredge"
)

// Envelope carries the metadata shared by every published event
type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// NewEnvelope creates a new envelope with defaults
func NewEnvelope(eventType, source, runID string) Envelope {
	if source == "" {
		source = defaultSource
	}
	return Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Version:   EnvelopeVersion,
	}
}

// NewRunID returns an identifier grouping the events of one analytics run
func NewRunID() string {
	return uuid.NewString()
}

// SanitizeUTF8 drops invalid UTF-8 sequences from externally supplied text
func SanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
