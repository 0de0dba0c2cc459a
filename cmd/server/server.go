package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/pm-assistant/internal/config"
	"github.com/janhq/pm-assistant/internal/infrastructure/logger"
	"github.com/janhq/pm-assistant/internal/infrastructure/observability"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver"
)

// @title PM Assistant API
// @version 1.0
// @description Tool-orchestrating chat assistant for project management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	cfg        *config.Config
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

func NewApplication(cfg *config.Config, httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		cfg:        cfg,
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the API listener and, when configured, the pprof listener until ctx ends or one fails.
func (a *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	if a.cfg.PprofPort > 0 {
		pprofServer := &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", a.cfg.PprofPort),
			Handler:           http.DefaultServeMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		eg.Go(func() error {
			a.log.Info().Str("addr", pprofServer.Addr).Msg("pprof listening")
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		return a.httpServer.Run(ctx)
	})

	return eg.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	storage, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("initialize storage")
	}
	defer storage.Close()

	coordination, err := newCoordination(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize confirmation store")
	}
	defer coordination.Close()

	authValidator, err := newAuthValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	registry, err := newToolRegistry(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("register tools")
	}

	notifications := newNotifications(ctx, cfg, log)
	defer notifications.Close()

	gateway := newGateway(cfg, newLLMProvider(cfg))
	chatService := newChatService(cfg, gateway, registry, storage, coordination, notifications, log)
	mcpServer := newMCPServer(registry, storage, log)

	httpServer := newHTTPServer(cfg, log, chatService, authValidator, mcpServer, storage, coordination)
	app := NewApplication(cfg, httpServer, log)

	log.Info().
		Str("storage", cfg.StorageBackend).
		Str("llm_provider", cfg.LLMProvider).
		Strs("mcp_tools", mcpServer.ToolNames()).
		Msg("pm assistant starting")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
