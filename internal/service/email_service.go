package service

import (
	"context"
	"errors"
	"time"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/entity"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/mailer"
	"school-assist-be/internal/pkg/metrics"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/dialog/handoff"
	"school-assist-be/pkg/events"
)

const emailModule = "EmailService"

var (
	ErrEmailNotConfigured = errors.New("email credentials not set in environment")
	ErrEmailSendFailed    = errors.New("failed to send email")
)

type IEmailService interface {
	handoff.Dispatcher
	SendMail(ctx context.Context, sessionID string, req *dto.SendMailRequest) error
}

type emailService struct {
	mailer     mailer.IEmailService
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func NewEmailService(
	m mailer.IEmailService,
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	mt *metrics.Metrics,
	log logger.ILogger,
) IEmailService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &emailService{
		mailer:     m,
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    mt,
		logger:     log,
	}
}

// Dispatch mails grounded notes for the email hand-off; it never returns an error, only success.
func (s *emailService) Dispatch(ctx context.Context, sessionID, to, payload string) bool {
	start := time.Now()
	err := s.mailer.SendNotes(ctx, to, "", payload)
	s.metrics.ObserveCall("smtp", start, err)

	s.record(ctx, sessionID, to, "", err)
	return err == nil
}

// SendMail sends caller-provided HTML, as the direct /email/send-mail endpoint does
func (s *emailService) SendMail(ctx context.Context, sessionID string, req *dto.SendMailRequest) error {
	start := time.Now()
	err := s.mailer.SendMessage(ctx, req.RecipientEmail, req.Title, req.Message)
	s.metrics.ObserveCall("smtp", start, err)

	s.record(ctx, sessionID, req.RecipientEmail, req.Title, err)

	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		return ErrEmailNotConfigured
	case err != nil:
		return ErrEmailSendFailed
	}
	return nil
}

// record audits the attempt; audit failures are logged and never fail the send
func (s *emailService) record(ctx context.Context, sessionID, to, title string, sendErr error) {
	delivery := &entity.EmailDelivery{
		SessionId: sessionID,
		Recipient: to,
		Title:     title,
		Status:    entity.EmailDeliverySent,
	}
	eventType := events.TypeEmailSent
	if sendErr != nil {
		delivery.Status = entity.EmailDeliveryFailed
		delivery.Error = sendErr.Error()
		eventType = events.TypeEmailFailed
		s.logger.Error(emailModule, "Email dispatch failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      sendErr.Error(),
		})
	} else {
		s.logger.Info(emailModule, "Email dispatched", map[string]interface{}{"session_id": sessionID})
	}

	// A cancelled turn still leaves an audit row
	auditCtx := context.WithoutCancel(ctx)

	uow := s.uowFactory.NewUnitOfWork(auditCtx)
	if err := uow.EmailDeliveryRepository().Create(auditCtx, delivery); err != nil {
		s.logger.Error(emailModule, "Failed to record email delivery", map[string]interface{}{"error": err.Error()})
	}

	event := events.New(eventType, map[string]interface{}{
		"session_id":  sessionID,
		"delivery_id": delivery.Id.String(),
		"recipient":   to,
		"status":      delivery.Status,
	})
	if err := s.publisher.Publish(auditCtx, event); err != nil {
		s.logger.Warn(emailModule, "Failed to publish email event", map[string]interface{}{"error": err.Error()})
	}
}
