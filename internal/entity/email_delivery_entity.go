package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EmailDeliverySent   = "sent"
	EmailDeliveryFailed = "failed"
)

type EmailDelivery struct {
	Id        uuid.UUID
	SessionId string
	Recipient string
	Title     string
	Status    string
	Error     string
	CreatedAt time.Time
}
