package contract

import (
	"context"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/repository/specification"
)

type CorpusRecordRepository interface {
	// Upsert inserts or replaces records keyed by (corpus, row_key)
	Upsert(ctx context.Context, records []*entity.CorpusRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByCorpus(ctx context.Context, corpus string) error
	// SearchSimilarWithScore returns records of one corpus ordered by cosine similarity, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, corpus string, embedding []float32, limit int, threshold float64) ([]*entity.ScoredCorpusRecord, error)
}
