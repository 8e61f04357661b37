package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/controller"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/internal/repository/unitofwork"
	"genai-chatbot-be/internal/service"
	"genai-chatbot-be/pkg/extractor"
	"genai-chatbot-be/pkg/llm/factory"
	"genai-chatbot-be/pkg/store"

	pktNats "genai-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const startupTimeout = 5 * time.Second

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func() error
}

// NewContainer wires every dependency. db may be nil when no database is
// configured; the context store then degrades to the null store unless
// another driver is selected.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	exchangeLogger := logger.NewIsolatedLogger(cfg.App.ExchangeLogPath)

	c := &Container{}
	c.closers = append(c.closers, syncQuietly(sysLogger), syncQuietly(exchangeLogger))

	// 1. Context store
	contextStore := NewContextStoreFromConfig(db, cfg)
	c.closers = append(c.closers, contextStore.Close)
	log.Printf("[INFO] Using Context Store: %s", contextStore.Name())

	// 2. Generation gateway
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.Provider,
		Model:    cfg.Ai.Model,
		BaseURL:  cfg.LLMBaseURL(),
		APIKey:   cfg.LLMAPIKey(),
		Timeout:  cfg.Ai.Timeout,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", llmProvider.Name())

	// 3. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		cancel()
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, func() error {
				natsPub.Close()
				return nil
			})
		}
	}

	c.closers = append(c.closers, pubSub.Close)

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.TelemetryTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.TelemetryTopic,
		uowFactory,
		eventPublisher,
		exchangeLogger,
		sysLogger,
	)

	chatbotService := service.NewChatbotService(
		contextStore,
		llmProvider,
		extractor.NewExtractor(cfg.Upload.MaxChars),
		publisherService,
		sysLogger,
		cfg.Upload.TempDir,
	)

	// 5. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.ConsumerService = consumerService

	return c
}

// NewContextStoreFromConfig builds the configured store, falling back to the
// null store when its backend does not answer.
func NewContextStoreFromConfig(db *gorm.DB, cfg *config.Config) store.ContextStore {
	opts := store.Options{
		Driver:    cfg.Store.Driver,
		DB:        db,
		RedisTTL:  cfg.Store.RedisTTL,
		MemoryTTL: cfg.Store.MemoryTTL,
	}

	if cfg.Store.Driver == store.DriverRedis {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		opts.Redis = redis.NewClient(opt)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	contextStore, err := store.NewContextStore(ctx, opts)
	if err != nil {
		log.Printf("[WARN] Context store %q unavailable, history is disabled: %v", cfg.Store.Driver, err)
		if opts.Redis != nil {
			_ = opts.Redis.Close()
		}
		return store.NewNullStore()
	}
	return contextStore
}

// syncQuietly flushes a logger on shutdown. Syncing a console sink fails on
// most terminals, so the error is dropped.
func syncQuietly(l logger.ILogger) func() error {
	return func() error {
		_ = l.Sync()
		return nil
	}
}

// Close releases the bus, the store and external connections, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
