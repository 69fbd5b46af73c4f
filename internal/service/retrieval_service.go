package service

import (
	"context"
	"strings"
	"time"

	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/metrics"
	"school-assist-be/internal/repository/specification"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/embedding"
	"school-assist-be/pkg/retrieval"
)

const retrievalModule = "RetrievalService"

type retrievalService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
	timeout           time.Duration
	metrics           *metrics.Metrics
	logger            logger.ILogger
}

// NewRetrievalService returns the pgvector-backed retrieval gateway
func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	threshold float64,
	timeout time.Duration,
	m *metrics.Metrics,
	log logger.ILogger,
) retrieval.Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &retrievalService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
		timeout:           timeout,
		metrics:           m,
		logger:            log,
	}
}

func (s *retrievalService) Query(ctx context.Context, corpus, text string, topK int) (retrieval.Result, error) {
	if err := retrieval.CheckCorpus(corpus); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return retrieval.Result{}, nil
	}
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	vector, err := s.embeddingProvider.Generate(ctx, text)
	s.metrics.ObserveCall("embedding", start, err)
	if err != nil {
		s.logger.Warn(retrievalModule, "Embedding failed, falling back to keyword match", map[string]interface{}{
			"corpus": corpus,
			"error":  err.Error(),
		})
		return s.keywordFallback(ctx, corpus, text, topK), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	start = time.Now()
	hits, err := uow.CorpusRecordRepository().SearchSimilarWithScore(ctx, corpus, vector, topK, s.threshold)
	s.metrics.ObserveCall("vector_search", start, err)
	if err != nil {
		s.logger.Error(retrievalModule, "Vector search failed", map[string]interface{}{
			"corpus": corpus,
			"error":  err.Error(),
		})
		return retrieval.Result{}, nil
	}

	result := make(retrieval.Result, 0, len(hits))
	for _, hit := range hits {
		result = append(result, recordOf(hit.Record.Fields))
	}

	s.logger.Debug(retrievalModule, "Corpus query", map[string]interface{}{
		"corpus": corpus,
		"hits":   len(result),
	})
	return result, nil
}

// keywordFallback matches the most specific word of the query against stored documents
func (s *retrievalService) keywordFallback(ctx context.Context, corpus, text string, topK int) retrieval.Result {
	term := longestWord(text)
	if len(term) < 4 {
		return retrieval.Result{}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.CorpusRecordRepository().FindAll(ctx,
		specification.ByCorpus{Corpus: corpus},
		specification.DocumentContains{Terms: []string{term}},
		specification.Pagination{Limit: topK},
	)
	if err != nil {
		s.logger.Error(retrievalModule, "Keyword fallback failed", map[string]interface{}{"error": err.Error()})
		return retrieval.Result{}
	}

	result := make(retrieval.Result, 0, len(records))
	for _, r := range records {
		result = append(result, recordOf(r.Fields))
	}
	return result
}

func recordOf(fields map[string]string) retrieval.Record {
	rec := make(retrieval.Record, len(fields))
	for k, v := range fields {
		rec[k] = v
	}
	return rec
}

func longestWord(text string) string {
	var longest string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '-' || r == '\'' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
	}) {
		if len(w) > len(longest) {
			longest = w
		}
	}
	return longest
}
