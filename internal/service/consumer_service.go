package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/entity"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/embedding"
	"school-assist-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	consumerModule   = "ConsumerService"
	embedAttempts    = 3
	embedRetryBase   = 500 * time.Millisecond
	defaultIngestTTL = 30 * time.Second
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until every worker has exited (the topic closed or ctx ended)
	Wait()
}

// ProcessedHook observes each row once it has been stored or given up on
type ProcessedHook func(row dto.PublishCorpusRowMessage, err error)

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
	workers           int
	onProcessed       ProcessedHook
	wg                sync.WaitGroup
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
	workers int,
	onProcessed ProcessedHook,
) IConsumerService {
	if workers <= 0 {
		workers = 1
	}
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
		workers:           workers,
		onProcessed:       onProcessed,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < cs.workers; i++ {
		cs.wg.Add(1)
		go func() {
			defer cs.wg.Done()
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}

	return nil
}

func (cs *consumerService) Wait() {
	cs.wg.Wait()
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var row dto.PublishCorpusRowMessage
	if err := json.Unmarshal(msg.Payload, &row); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		cs.done(row, err)
		return
	}

	err := cs.store(ctx, row)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to ingest row", map[string]interface{}{
			"corpus":  row.Corpus,
			"row_key": row.RowKey,
			"error":   err.Error(),
		})
	}
	// Failures were already retried; redelivering would loop on a dead backend
	msg.Ack()
	cs.done(row, err)
}

func (cs *consumerService) store(ctx context.Context, row dto.PublishCorpusRowMessage) error {
	document, err := retrieval.FormatDocument(row.Corpus, retrieval.Record(row.Fields))
	if err != nil {
		return err
	}

	vector, err := cs.embed(ctx, document)
	if err != nil {
		return err
	}

	record := &entity.CorpusRecord{
		Corpus:         row.Corpus,
		RowKey:         row.RowKey,
		Document:       document,
		Fields:         row.Fields,
		EmbeddingValue: vector,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	return uow.CorpusRecordRepository().Upsert(ctx, []*entity.CorpusRecord{record})
}

func (cs *consumerService) embed(ctx context.Context, document string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < embedAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(embedRetryBase * time.Duration(1<<(attempt-1))):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, defaultIngestTTL)
		vector, err := cs.embeddingProvider.Generate(callCtx, document)
		cancel()
		if err == nil {
			return vector, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (cs *consumerService) done(row dto.PublishCorpusRowMessage, err error) {
	if cs.onProcessed != nil {
		cs.onProcessed(row, err)
	}
}
