package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CorpusRecord is one ingested dataset row; (corpus, row_key) is unique so re-ingestion upserts
type CorpusRecord struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Corpus         string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_corpus_row"`
	RowKey         string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_corpus_row"`
	Document       string          `gorm:"type:text"`
	Fields         datatypes.JSON  `gorm:"not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (CorpusRecord) TableName() string {
	return "corpus_records"
}

func (c *CorpusRecord) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
