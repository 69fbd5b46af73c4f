package mapper

import (
	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"
)

type EmailDeliveryMapper struct{}

func NewEmailDeliveryMapper() *EmailDeliveryMapper {
	return &EmailDeliveryMapper{}
}

func (m *EmailDeliveryMapper) ToEntity(d *model.EmailDelivery) *entity.EmailDelivery {
	if d == nil {
		return nil
	}
	return &entity.EmailDelivery{
		Id:        d.Id,
		SessionId: d.SessionId,
		Recipient: d.Recipient,
		Title:     d.Title,
		Status:    d.Status,
		Error:     d.Error,
		CreatedAt: d.CreatedAt,
	}
}

func (m *EmailDeliveryMapper) ToModel(d *entity.EmailDelivery) *model.EmailDelivery {
	if d == nil {
		return nil
	}
	return &model.EmailDelivery{
		Id:        d.Id,
		SessionId: d.SessionId,
		Recipient: d.Recipient,
		Title:     d.Title,
		Status:    d.Status,
		Error:     d.Error,
		CreatedAt: d.CreatedAt,
	}
}
