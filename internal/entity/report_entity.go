package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportKindComplaint = "complaint"
	ReportKindEmergency = "emergency"
)

type Report struct {
	Id           uuid.UUID
	ReferenceId  string
	Kind         string
	Category     string
	Description  string
	Location     string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Priority     string
	Status       string
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
