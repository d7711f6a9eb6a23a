package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lead-lens/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContactUpdated EventType = "contact_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	PrincipalID string      `json:"principal_id"`
	Role        domain.Role `json:"role"`
	IP          string      `json:"ip,omitempty"`
	UserAgent   string      `json:"user_agent,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RecordID  string      `json:"record_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ContactUpdatedPayload carries the snapshots of one successful Salesforce write. Before is
// keyed by Salesforce field names, After by internal names.
type ContactUpdatedPayload struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, recordID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RecordID:  recordID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
