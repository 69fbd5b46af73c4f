package implementation

import (
	"context"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/mapper"
	"school-assist-be/internal/model"
	"school-assist-be/internal/repository/contract"
	"school-assist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AdmissionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdmissionMapper
}

func NewAdmissionRepository(db *gorm.DB) contract.AdmissionRepository {
	return &AdmissionRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdmissionMapper(),
	}
}

func (r *AdmissionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Create always inserts; resubmitting the same details yields a second row
func (r *AdmissionRepositoryImpl) Create(ctx context.Context, admission *entity.AdmissionRequest) error {
	m := r.mapper.ToModel(admission)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*admission = *r.mapper.ToEntity(m)
	return nil
}

func (r *AdmissionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AdmissionRequest, error) {
	var models []*model.AdmissionRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AdmissionRequest, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *AdmissionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.AdmissionRequest{}).Count(&count).Error
	return count, err
}
