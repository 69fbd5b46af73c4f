package unitofwork

import (
	"context"

	"school-assist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AdmissionRepository() contract.AdmissionRepository
	CorpusRecordRepository() contract.CorpusRecordRepository
	EmailDeliveryRepository() contract.EmailDeliveryRepository
	ReportRepository() contract.ReportRepository
}
