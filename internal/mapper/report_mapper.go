package mapper

import (
	"encoding/json"
	"time"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"

	"gorm.io/datatypes"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}

	var metadata map[string]any
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &metadata)
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.Report{
		Id:           r.Id,
		ReferenceId:  r.ReferenceId,
		Kind:         r.Kind,
		Category:     r.Category,
		Description:  r.Description,
		Location:     r.Location,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		Priority:     r.Priority,
		Status:       r.Status,
		Metadata:     metadata,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.Report) *model.Report {
	if r == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(r.Metadata) > 0 {
		raw, err := json.Marshal(r.Metadata)
		if err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.Report{
		Id:           r.Id,
		ReferenceId:  r.ReferenceId,
		Kind:         r.Kind,
		Category:     r.Category,
		Description:  r.Description,
		Location:     r.Location,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		Priority:     r.Priority,
		Status:       r.Status,
		Metadata:     metadata,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
