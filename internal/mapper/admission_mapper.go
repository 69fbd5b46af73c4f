package mapper

import (
	"time"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"

	"gorm.io/gorm"
)

type AdmissionMapper struct{}

func NewAdmissionMapper() *AdmissionMapper {
	return &AdmissionMapper{}
}

func (m *AdmissionMapper) ToEntity(a *model.AdmissionRequest) *entity.AdmissionRequest {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	return &entity.AdmissionRequest{
		Id:          a.Id,
		SessionId:   a.SessionId,
		Domain:      a.Domain,
		StudentName: a.StudentName,
		Phone:       a.Phone,
		Address:     a.Address,
		Channel:     a.Channel,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   a.DeletedAt.Valid,
	}
}

func (m *AdmissionMapper) ToModel(a *entity.AdmissionRequest) *model.AdmissionRequest {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.AdmissionRequest{
		Id:          a.Id,
		SessionId:   a.SessionId,
		Domain:      a.Domain,
		StudentName: a.StudentName,
		Phone:       a.Phone,
		Address:     a.Address,
		Channel:     a.Channel,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
