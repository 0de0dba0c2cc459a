package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/janhq/pm-assistant/internal/config"
	"github.com/janhq/pm-assistant/internal/domain/confirmation"
	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/llm"
	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/retry"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/domain/tool/builtin"
	"github.com/janhq/pm-assistant/internal/infrastructure/auth"
	"github.com/janhq/pm-assistant/internal/infrastructure/cache"
	"github.com/janhq/pm-assistant/internal/infrastructure/database"
	"github.com/janhq/pm-assistant/internal/infrastructure/llmprovider"
	"github.com/janhq/pm-assistant/internal/infrastructure/metrics"
	conversationrepo "github.com/janhq/pm-assistant/internal/infrastructure/repository/conversation"
	projectrepo "github.com/janhq/pm-assistant/internal/infrastructure/repository/project"
	"github.com/janhq/pm-assistant/internal/infrastructure/seed"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver"
	"github.com/janhq/pm-assistant/internal/interfaces/mcpserver"
	v1 "github.com/janhq/pm-assistant/internal/interfaces/httpserver/routes/v1"
	"github.com/janhq/pm-assistant/internal/webhook"
	"github.com/janhq/pm-assistant/internal/worker"
)

// Storage bundles the project repository with the transcript store.
type Storage struct {
	Repo     project.Repository
	Messages conversation.MessageStore
	Ready    httpserver.ReadinessCheck
	Close    func()
}

// Coordination bundles the confirmation store with the session locker.
type Coordination struct {
	Confirmations confirmation.Store
	Locker        orchestrator.Locker
	Ready         httpserver.ReadinessCheck
	Close         func()
}

// Notifications delivers accepted and rejected changes to the configured webhook.
type Notifications struct {
	Notifier orchestrator.ChangeNotifier
	Close    func()
}

func newNotifications(ctx context.Context, cfg *config.Config, log zerolog.Logger) *Notifications {
	if cfg.ChangeWebhookURL == "" {
		return &Notifications{Close: func() {}}
	}

	pool := worker.NewPool(worker.Config{
		WorkerCount: cfg.WebhookWorkers,
		QueueSize:   cfg.WebhookQueueSize,
		TaskTimeout: 4 * cfg.WebhookTimeout,
		StopTimeout: cfg.ShutdownTimeout,
	}, log)
	pool.Start(ctx)

	sender := webhook.NewHTTPService(cfg.ChangeWebhookURL, cfg.ChangeWebhookSecret, cfg.WebhookTimeout, retry.Default(), log)
	log.Info().Str("url", cfg.ChangeWebhookURL).Int("workers", cfg.WebhookWorkers).Msg("change webhook enabled")
	return &Notifications{
		Notifier: webhook.NewNotifier(sender, pool, log),
		Close:    pool.Stop,
	}
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	if cfg.StorageBackend == config.StorageMemory {
		repo := projectrepo.NewMemoryRepository()
		doc, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, repo, doc); err != nil {
			return nil, err
		}
		log.Info().Int("projects", len(doc.Projects)).Int("employees", len(doc.Employees)).Msg("in-memory storage seeded")
		return &Storage{Repo: repo, Messages: conversationrepo.NewMemoryStore(), Close: func() {}}, nil
	}

	db, err := database.Connect(ctx, database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	repo := projectrepo.NewPostgresRepository(db)
	if cfg.SeedFile != "" {
		doc, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, repo, doc); err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.SeedFile).Msg("database seeded")
	}

	return &Storage{
		Repo:     repo,
		Messages: conversationrepo.NewPostgresStore(db),
		Ready: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		Close: func() {
			if err := database.Close(db); err != nil {
				log.Error().Err(err).Msg("close database")
			}
		},
	}, nil
}

func newCoordination(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Coordination, error) {
	if cfg.RedisURL == "" {
		store, err := cache.NewMemoryConfirmationStore(cfg.ConfirmationCacheCap)
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("REDIS_URL not set, confirmations and session locks are process local")
		return &Coordination{Confirmations: store, Locker: cache.NewLocalLocker(), Close: func() {}}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return &Coordination{
		Confirmations: cache.NewRedisConfirmationStore(client),
		Locker:        cache.NewRedisLocker(client, cfg.SessionLockTTL, log),
		Ready: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		Close: func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("close redis")
			}
		},
	}, nil
}

func newLLMProvider(cfg *config.Config) llm.Provider {
	if cfg.LLMProvider == config.LLMProviderOpenAI {
		return llmprovider.NewOpenAIClient(cfg.LLMAPIURL, cfg.LLMAPIKey)
	}
	return llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}

func newGateway(cfg *config.Config, provider llm.Provider) *llm.Gateway {
	policy := retry.Default()
	policy.MaxRetries = cfg.LLMMaxRetries
	return llm.NewGateway(provider, llm.GatewayOptions{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
		MaxHistory:  cfg.MaxHistoryMessages,
		Retry:       policy,
	})
}

func newToolRegistry(cfg *config.Config, log zerolog.Logger) (*tool.Registry, error) {
	return builtin.NewRegistry(log, cfg.ToolTimeout)
}

func newChatService(
	cfg *config.Config,
	gateway *llm.Gateway,
	registry *tool.Registry,
	storage *Storage,
	coordination *Coordination,
	notifications *Notifications,
	log zerolog.Logger,
) *orchestrator.Service {
	return orchestrator.NewService(
		gateway,
		registry,
		confirmation.NewGate(coordination.Confirmations, cfg.ConfirmationTTL),
		storage.Messages,
		storage.Repo,
		coordination.Locker,
		metrics.NewRecorder(),
		log,
		orchestrator.Options{TurnTimeout: cfg.TurnTimeout, Notifier: notifications.Notifier},
	)
}

func newMCPServer(registry *tool.Registry, storage *Storage, log zerolog.Logger) *mcpserver.Server {
	return mcpserver.New(registry, storage.Repo, log)
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	chat *orchestrator.Service,
	validator *auth.Validator,
	mcp *mcpserver.Server,
	storage *Storage,
	coordination *Coordination,
) *httpserver.HTTPServer {
	readiness := map[string]httpserver.ReadinessCheck{}
	if storage.Ready != nil {
		readiness["database"] = storage.Ready
	}
	if coordination.Ready != nil {
		readiness["redis"] = coordination.Ready
	}
	return httpserver.New(cfg, log, chat, httpserver.Options{
		Auth:      validator,
		Extra:     []v1.Registrar{mcp},
		Readiness: readiness,
	})
}
