package contract

import (
	"context"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/repository/specification"
)

type AdmissionRepository interface {
	Create(ctx context.Context, admission *entity.AdmissionRequest) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AdmissionRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
