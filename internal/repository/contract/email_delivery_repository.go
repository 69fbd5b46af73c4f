package contract

import (
	"context"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/repository/specification"
)

type EmailDeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.EmailDelivery) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailDelivery, error)
}
