package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/pkg/retrieval"
)

type IIngestService interface {
	// IngestCSV queues every row of a dataset for embedding and returns the number queued.
	// Row keys are the zero-based data row index, so re-running replaces rows in place.
	IngestCSV(ctx context.Context, corpus string, r io.Reader, limit int) (int, error)
}

type ingestService struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewIngestService(publisher IPublisherService, log logger.ILogger) IIngestService {
	return &ingestService{publisher: publisher, logger: log}
}

func (s *ingestService) IngestCSV(ctx context.Context, corpus string, r io.Reader, limit int) (int, error) {
	if err := retrieval.CheckCorpus(corpus); err != nil {
		return 0, fmt.Errorf("%w: %s", err, corpus)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	queued := 0
	for index := 0; limit <= 0 || queued < limit; index++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			// Bad lines are skipped, like the dataset loader always did
			s.logger.Warn("IngestService", "Skipping malformed row", map[string]interface{}{"line": perr.Line, "error": perr.Err.Error()})
			continue
		}
		if err != nil {
			return queued, fmt.Errorf("read row %d: %w", index, err)
		}
		if len(row) != len(header) {
			s.logger.Warn("IngestService", "Skipping row with wrong column count", map[string]interface{}{"row": index})
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = row[i]
		}

		payload, err := json.Marshal(dto.PublishCorpusRowMessage{
			Corpus: corpus,
			RowKey: strconv.Itoa(index),
			Fields: fields,
		})
		if err != nil {
			return queued, err
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			return queued, fmt.Errorf("publish row %d: %w", index, err)
		}
		queued++
	}

	s.logger.Info("IngestService", "Dataset queued", map[string]interface{}{"corpus": corpus, "rows": queued})
	return queued, nil
}
