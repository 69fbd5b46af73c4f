package implementation

import (
	"context"
	"math"
	"sort"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/mapper"
	"school-assist-be/internal/model"
	"school-assist-be/internal/repository/contract"
	"school-assist-be/internal/repository/specification"
	"school-assist-be/pkg/database"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CorpusRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusRecordMapper
}

func NewCorpusRecordRepository(db *gorm.DB) contract.CorpusRecordRepository {
	return &CorpusRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusRecordMapper(),
	}
}

func (r *CorpusRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CorpusRecordRepositoryImpl) Upsert(ctx context.Context, records []*entity.CorpusRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := r.mapper.ToModels(records)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "corpus"}, {Name: "row_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "fields", "embedding_value", "updated_at"}),
		}).
		Create(models).Error
	if err != nil {
		return err
	}

	for i, m := range models {
		*records[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *CorpusRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusRecord, error) {
	var models []*model.CorpusRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CorpusRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CorpusRecord{}).Count(&count).Error
	return count, err
}

func (r *CorpusRecordRepositoryImpl) DeleteByCorpus(ctx context.Context, corpus string) error {
	return r.db.WithContext(ctx).Unscoped().Where("corpus = ?", corpus).Delete(&model.CorpusRecord{}).Error
}

func (r *CorpusRecordRepositoryImpl) SearchSimilarWithScore(ctx context.Context, corpus string, embedding []float32, limit int, threshold float64) ([]*entity.ScoredCorpusRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	if !database.IsPostgres(r.db) {
		return r.searchInMemory(ctx, corpus, embedding, limit, threshold)
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.CorpusRecord
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("corpus_records").
		Select("corpus_records.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("corpus = ?", corpus).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredCorpusRecord, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredCorpusRecord{
			Record:     r.mapper.ToEntity(&res.CorpusRecord),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

// searchInMemory ranks a corpus without the vector extension (sqlite dev databases)
func (r *CorpusRecordRepositoryImpl) searchInMemory(ctx context.Context, corpus string, embedding []float32, limit int, threshold float64) ([]*entity.ScoredCorpusRecord, error) {
	records, err := r.FindAll(ctx, specification.ByCorpus{Corpus: corpus})
	if err != nil {
		return nil, err
	}

	var scored []*entity.ScoredCorpusRecord
	for _, rec := range records {
		sim := cosineSimilarity(embedding, rec.EmbeddingValue)
		if sim >= threshold {
			scored = append(scored, &entity.ScoredCorpusRecord{Record: rec, Similarity: sim})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
