package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/entity"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/events"
)

const (
	complaintPrefix = "COMP"
	emergencyPrefix = "EMG"

	referenceAttempts = 5

	EmergencyContactInfo = "Emergency Response Team: 1800-XXX-XXXX"
	ChildHelplineInfo    = "For immediate assistance, please also contact the Child Helpline at 1098"
)

var complaintTypes = []dto.ReportType{
	{Id: "bullying", Name: "Bullying", Description: "Report incidents of bullying or harassment"},
	{Id: "absenteeism", Name: "Teacher Absenteeism", Description: "Report when teachers are frequently absent"},
	{Id: "discrimination", Name: "Discrimination", Description: "Report unfair treatment based on gender, caste, religion, etc."},
	{Id: "misconduct", Name: "Teacher Misconduct", Description: "Report inappropriate behavior by teachers"},
	{Id: "infrastructure", Name: "Infrastructure Issues", Description: "Report problems with school facilities"},
	{Id: "other", Name: "Other Issues", Description: "Report any other issues not listed above"},
}

var emergencyTypes = []dto.ReportType{
	{Id: "abuse", Name: "Child Abuse", Description: "Report incidents of physical, emotional, or sexual abuse"},
	{Id: "violence", Name: "Violence in School", Description: "Report violent incidents in or around school premises"},
	{Id: "health", Name: "Health Emergency", Description: "Report health-related emergencies requiring immediate attention"},
	{Id: "safety", Name: "Safety Hazard", Description: "Report dangerous conditions or safety hazards in school"},
	{Id: "other", Name: "Other Emergency", Description: "Report any other emergency situations"},
}

// Emergencies of these types also point the reporter at the child helpline
var helplineTypes = []string{"abuse", "violence", "assault"}

type IReportService interface {
	FileComplaint(ctx context.Context, req *dto.FileComplaintRequest) (*dto.FileComplaintResponse, error)
	ReportEmergency(ctx context.Context, req *dto.ReportEmergencyRequest) (*dto.ReportEmergencyResponse, error)
	ComplaintTypes() []dto.ReportType
	EmergencyTypes() []dto.ReportType
}

type reportService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	digits     func() int
}

func NewReportService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IReportService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &reportService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		digits:     func() int { return rand.IntN(1_000_000) },
	}
}

func (s *reportService) FileComplaint(ctx context.Context, req *dto.FileComplaintRequest) (*dto.FileComplaintResponse, error) {
	metadata := map[string]any{"anonymous": req.Anonymous}
	if req.Language != "" {
		metadata["language"] = req.Language
	}
	report := &entity.Report{
		Kind:        entity.ReportKindComplaint,
		Category:    strings.ToLower(req.Type),
		Description: req.Description,
		Priority:    "Normal",
		Status:      "Submitted",
		Metadata:    metadata,
	}
	if !req.Anonymous {
		report.ContactName = req.StudentId
	}

	if err := s.store(ctx, report, complaintPrefix); err != nil {
		return nil, err
	}

	return &dto.FileComplaintResponse{
		ComplaintId: report.ReferenceId,
		Message:     "Your complaint has been filed successfully",
		NextSteps:   "Your complaint will be reviewed within 24 hours. You can check the status using your complaint ID.",
	}, nil
}

func (s *reportService) ReportEmergency(ctx context.Context, req *dto.ReportEmergencyRequest) (*dto.ReportEmergencyResponse, error) {
	report := &entity.Report{
		Kind:        entity.ReportKindEmergency,
		Category:    strings.ToLower(req.Type),
		Description: req.Description,
		Location:    req.Location,
		Priority:    "High",
		Status:      "Submitted",
		Metadata:    map[string]any{"anonymous": req.Anonymous},
	}
	if !req.Anonymous {
		report.ContactPhone = req.Contact
	}

	if err := s.store(ctx, report, emergencyPrefix); err != nil {
		return nil, err
	}

	resp := &dto.ReportEmergencyResponse{
		CaseId:      report.ReferenceId,
		Message:     "Your emergency report has been submitted and will be addressed immediately",
		Priority:    report.Priority,
		ContactInfo: EmergencyContactInfo,
	}
	if slices.Contains(helplineTypes, report.Category) {
		resp.AdditionalInfo = ChildHelplineInfo
	}
	return resp, nil
}

func (s *reportService) ComplaintTypes() []dto.ReportType {
	return slices.Clone(complaintTypes)
}

func (s *reportService) EmergencyTypes() []dto.ReportType {
	return slices.Clone(emergencyTypes)
}

// store assigns a reference id that is not yet taken and persists the report
func (s *reportService) store(ctx context.Context, report *entity.Report, prefix string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ReportRepository()

	for attempt := 0; ; attempt++ {
		if attempt == referenceAttempts {
			return fmt.Errorf("no free %s reference after %d attempts", prefix, referenceAttempts)
		}
		ref := fmt.Sprintf("%s%06d", prefix, s.digits())
		taken, err := repo.ExistsByReference(ctx, ref)
		if err != nil {
			return fmt.Errorf("check reference: %w", err)
		}
		if !taken {
			report.ReferenceId = ref
			break
		}
	}

	if err := repo.Create(ctx, report); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	s.logger.Info("ReportService", "Report filed", map[string]interface{}{
		"reference_id": report.ReferenceId,
		"kind":         report.Kind,
		"category":     report.Category,
	})

	event := events.New(events.TypeReportFiled, map[string]interface{}{
		"reference_id": report.ReferenceId,
		"kind":         report.Kind,
		"category":     report.Category,
		"priority":     report.Priority,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ReportService", "Failed to publish report event", map[string]interface{}{"error": err.Error()})
	}
	return nil
}
