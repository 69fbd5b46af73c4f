package service

import (
	"context"
	"fmt"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/metrics"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/events"
)

type IAdmissionService interface {
	Submit(ctx context.Context, sessionID, domain, channel string, slots map[string]string) (*entity.AdmissionRequest, error)
}

type admissionService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func NewAdmissionService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, m *metrics.Metrics, log logger.ILogger) IAdmissionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &admissionService{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    m,
		logger:     log,
	}
}

// Submit persists a completed admission request. Every call appends a row;
// repeated submissions are not deduplicated.
func (s *admissionService) Submit(ctx context.Context, sessionID, domain, channel string, slots map[string]string) (*entity.AdmissionRequest, error) {
	admission := &entity.AdmissionRequest{
		SessionId:   sessionID,
		Domain:      domain,
		StudentName: slots["student_name"],
		Phone:       slots["phone"],
		Address:     slots["address"],
		Channel:     channel,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AdmissionRepository().Create(ctx, admission); err != nil {
		return nil, fmt.Errorf("persist admission request: %w", err)
	}
	s.metrics.ObserveAdmission()

	s.logger.Info("AdmissionService", "Admission request stored", map[string]interface{}{
		"admission_id": admission.Id.String(),
		"session_id":   sessionID,
	})

	event := events.New(events.TypeAdmissionSubmitted, map[string]interface{}{
		"session_id":   sessionID,
		"admission_id": admission.Id.String(),
		"domain":       domain,
		"channel":      channel,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AdmissionService", "Failed to publish admission event", map[string]interface{}{"error": err.Error()})
	}

	return admission, nil
}
