package bootstrap

import (
	"context"
	"log"
	"time"

	"school-assist-be/internal/config"
	"school-assist-be/internal/controller"
	"school-assist-be/internal/handler"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/mailer"
	"school-assist-be/internal/pkg/metrics"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/repository/cache"
	"school-assist-be/internal/repository/contract"
	"school-assist-be/internal/repository/memory"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/internal/service"
	"school-assist-be/internal/websocket"
	"school-assist-be/pkg/dialog/domain"
	"school-assist-be/pkg/dialog/handoff"
	"school-assist-be/pkg/dialog/lock"
	"school-assist-be/pkg/dialog/response"
	"school-assist-be/pkg/embedding"
	"school-assist-be/pkg/events"
	"school-assist-be/pkg/llm/factory"
	pktNats "school-assist-be/pkg/nats"
	"school-assist-be/pkg/store"
	"school-assist-be/pkg/voice"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// sessionLockTTL bounds how long a crashed instance can hold a session
const sessionLockTTL = 3 * time.Minute

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	LanguageController  controller.ILanguageController
	EmailController     controller.IEmailController
	ReportController    controller.IReportController
	IVRController       controller.IIVRController
	ChatSocketHandler   *handler.ChatSocketHandler

	SessionTokens *serverutils.SessionTokens
	Metrics       *metrics.Metrics
	Logger        logger.ILogger

	// Background Services (Exposed for main.go to run)
	WebSocketHub *websocket.Hub
	AuditService *service.EventAuditService

	nc  *nats.Conn
	rdb *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	m := metrics.New()

	smtp := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.DefaultTitle,
		cfg.SMTP.Timeout,
	)

	// 2. Infrastructure
	// Redis
	rdb := connectRedis(cfg.App.RedisURL)

	// NATS
	var publisher events.Publisher = events.NopPublisher{}
	var natsSub *pktNats.Subscriber
	nc, err := pktNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v. Events are dropped", err)
	} else {
		if natsPub, err := pktNats.NewPublisher(nc); err != nil {
			log.Printf("[WARN] Failed to create NATS Publisher: %v", err)
		} else {
			publisher = natsPub
		}
		if natsSub, err = pktNats.NewSubscriber(nc); err != nil {
			log.Printf("[WARN] Failed to create NATS Subscriber: %v", err)
		}
	}

	// Session storage and the per-session gate live together
	var sessions contract.SessionRepository
	var gate lock.Gate
	if cfg.Session.Store == "redis" && rdb != nil {
		sessions = cache.NewSessionRepository(rdb, cfg.Session.TTL)
		gate = lock.NewRedisGate(rdb, sessionLockTTL, sysLogger)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		gate = lock.NewKeyedGate()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 3. AI Collaborators
	embeddingProvider, err := embedding.NewProvider(embeddingConfig(cfg))
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   cfg.Keys.OpenAI,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	synthesizer := response.NewSynthesizer(llmProvider, sysLogger,
		response.WithTimeout(cfg.Dialog.LLMTimeout),
		response.WithTierObserver(func(t response.Tier) { m.ObserveTier(string(t)) }),
	)

	var translator service.Translator
	if cfg.Keys.Translate != "" {
		translator = voice.NewTranslator(cfg.Voice.TranslateBaseURL, cfg.Keys.Translate, cfg.Voice.TranslateTimeout)
	}
	speaker := voice.NewSpeaker(cfg.Voice.TTSBaseURL, cfg.Voice.TTSTimeout)

	// 4. Services
	emailService := service.NewEmailService(smtp, uowFactory, publisher, m, sysLogger)
	machine := handoff.NewMachine(emailService, synthesizer, sysLogger,
		handoff.WithTransitionObserver(func(from, to store.EmailFlowState) { m.ObserveTransition(string(from), string(to)) }),
	)
	gateway := service.NewRetrievalService(uowFactory, embeddingProvider, cfg.Dialog.RetrievalThreshold, cfg.Dialog.RetrievalTimeout, m, sysLogger)
	admissionService := service.NewAdmissionService(uowFactory, publisher, m, sysLogger)
	languageService := service.NewLanguageService(sessions, gate)
	reportService := service.NewReportService(uowFactory, publisher, sysLogger)

	registry := domain.DefaultRegistry()
	dialogService := service.NewDialogService(service.DialogDependencies{
		Registry:    registry,
		Sessions:    sessions,
		Gate:        gate,
		Gateway:     gateway,
		Synthesizer: synthesizer,
		Handoff:     machine,
		Admissions:  admissionService,
		Translator:  translator,
		Speaker:     speaker,
		TopK:        cfg.Dialog.RetrievalTopK,
		Metrics:     m,
		Logger:      sysLogger,
	})

	// 5. Real-time delivery and event audit
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	wsHub := websocket.NewHub(rdb, sysLogger)

	var auditService *service.EventAuditService
	if natsSub != nil {
		auditService = service.NewEventAuditService(natsSub, wsHub, auditLogger) // Hub implements SessionNotifier
	}

	tokens := serverutils.NewSessionTokens(cfg.Session.Secret, cfg.Session.TTL)

	// 6. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(dialogService),
		LanguageController:  controller.NewLanguageController(languageService),
		EmailController:     controller.NewEmailController(emailService),
		ReportController:    controller.NewReportController(reportService),
		IVRController:       controller.NewIVRController(dialogService, languageService, cfg.Twilio.AuthToken, cfg.Twilio.PublicURL),
		ChatSocketHandler:   handler.NewChatSocketHandler(dialogService, wsHub, tokens, registry, sysLogger),

		SessionTokens: tokens,
		Metrics:       m,
		Logger:        sysLogger,

		WebSocketHub: wsHub,
		AuditService: auditService,

		nc:  nc,
		rdb: rdb,
	}
}

// Start runs the background workers until ctx is done
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	if c.AuditService != nil {
		if err := c.AuditService.Start(ctx); err != nil {
			log.Printf("[WARN] %v", err)
		}
	}
}

func (c *Container) Close() {
	if c.nc != nil {
		c.nc.Drain()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
	c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func embeddingConfig(cfg *config.Config) embedding.Config {
	ec := embedding.Config{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
	}
	if cfg.Ai.EmbeddingProvider == "openai" {
		ec.BaseURL = cfg.Keys.OpenAIBaseURL
		ec.APIKey = cfg.Keys.OpenAI
	}
	return ec
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Keys.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
