package mapper

import (
	"encoding/json"
	"time"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type CorpusRecordMapper struct{}

func NewCorpusRecordMapper() *CorpusRecordMapper {
	return &CorpusRecordMapper{}
}

func (m *CorpusRecordMapper) ToEntity(c *model.CorpusRecord) *entity.CorpusRecord {
	if c == nil {
		return nil
	}

	fields := map[string]string{}
	if len(c.Fields) > 0 {
		// Rows with a malformed payload keep their document and lose their fields
		_ = json.Unmarshal(c.Fields, &fields)
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.CorpusRecord{
		Id:             c.Id,
		Corpus:         c.Corpus,
		RowKey:         c.RowKey,
		Document:       c.Document,
		Fields:         fields,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *CorpusRecordMapper) ToModel(c *entity.CorpusRecord) *model.CorpusRecord {
	if c == nil {
		return nil
	}

	fields := c.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	raw, _ := json.Marshal(fields)

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.CorpusRecord{
		Id:             c.Id,
		Corpus:         c.Corpus,
		RowKey:         c.RowKey,
		Document:       c.Document,
		Fields:         datatypes.JSON(raw),
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *CorpusRecordMapper) ToEntities(records []*model.CorpusRecord) []*entity.CorpusRecord {
	entities := make([]*entity.CorpusRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *CorpusRecordMapper) ToModels(records []*entity.CorpusRecord) []*model.CorpusRecord {
	models := make([]*model.CorpusRecord, len(records))
	for i, r := range records {
		models[i] = m.ToModel(r)
	}
	return models
}
