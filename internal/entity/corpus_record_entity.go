package entity

import (
	"time"

	"github.com/google/uuid"
)

type CorpusRecord struct {
	Id             uuid.UUID
	Corpus         string
	RowKey         string
	Document       string
	Fields         map[string]string
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// ScoredCorpusRecord carries the cosine similarity of a search hit
type ScoredCorpusRecord struct {
	Record     *CorpusRecord
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}
