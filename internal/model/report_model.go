package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is a complaint or an emergency filed through the web channel
type Report struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ReferenceId  string         `gorm:"type:varchar(16);not null;uniqueIndex"` // COMP123456 / EMG123456
	Kind         string         `gorm:"type:varchar(16);not null;index"`       // complaint, emergency
	Category     string         `gorm:"type:varchar(64);not null"`
	Description  string         `gorm:"type:text;not null"`
	Location     string         `gorm:"type:text"`
	ContactName  string         `gorm:"type:varchar(255)"`
	ContactPhone string         `gorm:"type:varchar(32)"`
	ContactEmail string         `gorm:"type:varchar(320)"`
	Priority     string         `gorm:"type:varchar(16)"`
	Status       string         `gorm:"type:varchar(32);default:'Submitted'"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.Id == uuid.Nil {
		r.Id = uuid.New()
	}
	return nil
}
