package entity

import (
	"time"

	"github.com/google/uuid"
)

type AdmissionRequest struct {
	Id          uuid.UUID
	SessionId   string
	Domain      string
	StudentName string
	Phone       string
	Address     string
	Channel     string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
