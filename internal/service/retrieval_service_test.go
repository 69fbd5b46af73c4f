package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/database"
	"school-assist-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// keywordEmbedder maps text onto three axes: schools, scholarships, anything else
type keywordEmbedder struct {
	err   error
	calls int
}

func (e *keywordEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "school"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "scholarship"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func newCorpusFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.CorpusRecord{}))
	return unitofwork.NewRepositoryFactory(db)
}

func seedSchools(t *testing.T, f unitofwork.RepositoryFactory) {
	t.Helper()
	ctx := context.Background()
	err := f.NewUnitOfWork(ctx).CorpusRecordRepository().Upsert(ctx, []*entity.CorpusRecord{
		{Corpus: retrieval.CorpusKarnatakaSchools, RowKey: "0", Document: "Govt School in Jayanagar", Fields: map[string]string{"school_name": "Govt School", "village": "Jayanagar"}, EmbeddingValue: []float32{1, 0, 0}},
		{Corpus: retrieval.CorpusKarnatakaSchools, RowKey: "1", Document: "Model School in Mysore", Fields: map[string]string{"school_name": "Model School", "village": "Mysore"}, EmbeddingValue: []float32{0.9, 0.1, 0}},
		{Corpus: retrieval.CorpusKarnatakaSchools, RowKey: "2", Document: "Unrelated row", Fields: map[string]string{"school_name": "Far Away"}, EmbeddingValue: []float32{0, 0, 1}},
	})
	require.NoError(t, err)
}

func TestRetrievalService_RanksBySimilarity(t *testing.T) {
	f := newCorpusFactory(t)
	seedSchools(t, f)
	gw := NewRetrievalService(f, &keywordEmbedder{}, 0.5, 0, nil, logger.NewNopLogger())

	res, err := gw.Query(context.Background(), retrieval.CorpusKarnatakaSchools, "find schools near Jayanagar", 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Govt School", res[0].Get("school_name"))
	assert.Equal(t, "Model School", res[1].Get("school_name"))

	res, err = gw.Query(context.Background(), retrieval.CorpusKarnatakaSchools, "find schools", 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestRetrievalService_EmptyTextAndUnknownCorpus(t *testing.T) {
	embedder := &keywordEmbedder{}
	gw := NewRetrievalService(newCorpusFactory(t), embedder, 0.5, 0, nil, logger.NewNopLogger())

	res, err := gw.Query(context.Background(), retrieval.CorpusNCERTBooks, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Zero(t, embedder.calls)

	_, err = gw.Query(context.Background(), "library_books", "anything", 5)
	assert.ErrorIs(t, err, retrieval.ErrUnknownCorpus)
}

func TestRetrievalService_EmbeddingFailureFallsBackToKeywords(t *testing.T) {
	f := newCorpusFactory(t)
	seedSchools(t, f)
	gw := NewRetrievalService(f, &keywordEmbedder{err: errors.New("ollama down")}, 0.5, 0, nil, logger.NewNopLogger())

	res, err := gw.Query(context.Background(), retrieval.CorpusKarnatakaSchools, "schools in Jayanagar", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Jayanagar", res[0].Get("village"))

	// Short words are too vague to match on
	res, err = gw.Query(context.Background(), retrieval.CorpusKarnatakaSchools, "a b c", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
