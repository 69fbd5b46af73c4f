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

type EmailDeliveryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmailDeliveryMapper
}

func NewEmailDeliveryRepository(db *gorm.DB) contract.EmailDeliveryRepository {
	return &EmailDeliveryRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmailDeliveryMapper(),
	}
}

func (r *EmailDeliveryRepositoryImpl) Create(ctx context.Context, delivery *entity.EmailDelivery) error {
	m := r.mapper.ToModel(delivery)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*delivery = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmailDeliveryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailDelivery, error) {
	var models []*model.EmailDelivery
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EmailDelivery, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
