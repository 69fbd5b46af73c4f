package contract

import (
	"context"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/repository/specification"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Report, error)
	ExistsByReference(ctx context.Context, referenceId string) (bool, error)
}
