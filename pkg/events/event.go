package events

import (
	"context"
	"time"
)

const (
	TypeAdmissionSubmitted = "admission.submitted"
	TypeEmailSent          = "email.sent"
	TypeEmailFailed        = "email.failed"
	TypeReportFiled        = "report.filed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the dotted subject suffix for this event (e.g. "email.sent").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

// SessionID returns the dialog session an event belongs to, if any
func SessionID(e Event) string {
	if v, ok := e.Payload()["session_id"].(string); ok {
		return v
	}
	return ""
}

// Publisher fans domain events out to the bus
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
