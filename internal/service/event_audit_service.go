package service

import (
	"context"
	"fmt"

	"school-assist-be/internal/pkg/logger"
	"school-assist-be/pkg/events"
	pktNats "school-assist-be/pkg/nats" // Renamed to avoid collision
)

const (
	auditModule  = "EventAudit"
	auditSubject = pktNats.SubjectPrefix + ">"
	auditDurable = "audit-log-worker"
)

// SessionNotifier pushes real-time updates to the connected channels of a session.
// Implemented by the WebSocket Hub.
type SessionNotifier interface {
	Notify(sessionID string, frameType string, data interface{})
}

// EventSource is the part of the NATS subscriber used here
type EventSource interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// EventAuditService writes every domain event to the audit log and forwards
// email delivery outcomes to the session that requested them.
type EventAuditService struct {
	source   EventSource
	notifier SessionNotifier
	audit    logger.ILogger
}

func NewEventAuditService(source EventSource, notifier SessionNotifier, audit logger.ILogger) *EventAuditService {
	return &EventAuditService{
		source:   source,
		notifier: notifier,
		audit:    audit,
	}
}

// Start begins listening to the event bus.
func (s *EventAuditService) Start(ctx context.Context) error {
	if err := s.source.Subscribe(ctx, auditSubject, auditDurable, s.handleEvent); err != nil {
		return fmt.Errorf("start audit subscriber: %w", err)
	}
	s.audit.Info(auditModule, "Event audit started, listening to "+auditSubject, nil)
	return nil
}

func (s *EventAuditService) handleEvent(ctx context.Context, event events.Event) error {
	s.audit.Info(auditModule, event.EventType(), map[string]interface{}{
		"occurred_at": event.Timestamp(),
		"payload":     event.Payload(),
	})

	switch event.EventType() {
	case events.TypeEmailSent, events.TypeEmailFailed:
		sessionID := events.SessionID(event)
		if sessionID == "" || s.notifier == nil {
			return nil
		}
		s.notifier.Notify(sessionID, event.EventType(), event.Payload())
	}
	return nil
}
