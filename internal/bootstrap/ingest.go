package bootstrap

import (
	"context"

	"school-assist-be/internal/config"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/internal/service"
	"school-assist-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// IngestPipeline queues dataset rows on an in-process bus and embeds them with a worker pool
type IngestPipeline struct {
	Ingest   service.IIngestService
	Consumer service.IConsumerService

	pubSub *gochannel.GoChannel
}

func NewIngestPipeline(db *gorm.DB, cfg *config.Config, log logger.ILogger, onProcessed service.ProcessedHook) (*IngestPipeline, error) {
	embeddingProvider, err := embedding.NewProvider(embeddingConfig(cfg))
	if err != nil {
		return nil, err
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			// Rows published before the workers subscribe would be dropped
			BlockPublishUntilSubscriberAck: true,
			OutputChannelBuffer:            int64(cfg.Ingest.Workers),
		},
		watermillLogger,
	)

	uowFactory := unitofwork.NewRepositoryFactory(db)
	publisher := service.NewPublisherService(cfg.Ingest.Topic, pubSub)

	return &IngestPipeline{
		Ingest:   service.NewIngestService(publisher, log),
		Consumer: service.NewConsumerService(pubSub, cfg.Ingest.Topic, uowFactory, embeddingProvider, log, cfg.Ingest.Workers, onProcessed),
		pubSub:   pubSub,
	}, nil
}

// Start subscribes the workers; call it before queueing any rows
func (p *IngestPipeline) Start(ctx context.Context) error {
	return p.Consumer.Consume(ctx)
}

// Close stops the bus and waits for the workers to drain
func (p *IngestPipeline) Close() error {
	err := p.pubSub.Close()
	p.Consumer.Wait()
	return err
}
