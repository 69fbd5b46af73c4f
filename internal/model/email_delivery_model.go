package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailDelivery struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId string    `gorm:"type:varchar(128);index"`
	Recipient string    `gorm:"type:varchar(320);not null"`
	Title     string    `gorm:"type:varchar(255)"`
	Status    string    `gorm:"type:varchar(16);not null;index"` // sent, failed
	Error     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EmailDelivery) TableName() string {
	return "email_deliveries"
}

func (e *EmailDelivery) BeforeCreate(tx *gorm.DB) error {
	if e.Id == uuid.Nil {
		e.Id = uuid.New()
	}
	return nil
}
