package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdmissionRequest struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId   string         `gorm:"type:varchar(128);index"`
	Domain      string         `gorm:"type:varchar(64)"`
	StudentName string         `gorm:"type:varchar(255);not null"`
	Phone       string         `gorm:"type:varchar(32);not null"`
	Address     string         `gorm:"type:text;not null"`
	Channel     string         `gorm:"type:varchar(16);default:'web'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (AdmissionRequest) TableName() string {
	return "admission_requests"
}

func (a *AdmissionRequest) BeforeCreate(tx *gorm.DB) error {
	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	return nil
}
