// Package server wires the HTTP surface: places API, chat endpoints, the
// embedded web UI and lifecycle management.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewisedginton/local_places/internal/bridge"
	appconfig "github.com/lewisedginton/local_places/internal/config"
	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/oracle/anthropic"
	"github.com/lewisedginton/local_places/internal/oracle/gemini"
	"github.com/lewisedginton/local_places/internal/oracle/openai"
	"github.com/lewisedginton/local_places/internal/places"
	"github.com/lewisedginton/local_places/internal/session"
	"github.com/lewisedginton/local_places/internal/tools"
	"github.com/lewisedginton/local_places/pkg/logger"
	"github.com/lewisedginton/local_places/pkg/metrics"
)

// ServiceName appears in health responses and log fields.
const ServiceName = "local-places-mcp"

// Server bundles every component behind the HTTP surface. Store and
// bridge may be nil when their configuration is missing; the affected
// endpoints fail closed with configuration errors.
type Server struct {
	cfg      *appconfig.AppConfig
	log      logger.Logger
	metrics  *metrics.Metrics
	db       *pgxpool.Pool
	store    places.Store
	sessions *session.Store
	bridge   *bridge.Bridge
	cancel   context.CancelFunc
}

// New creates a server instance with all configured components.
func New(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics(log),
	}

	if err := s.createStore(ctx); err != nil {
		return nil, err
	}
	if err := s.createBridge(ctx); err != nil {
		return nil, err
	}

	s.sessions = session.NewStore(session.Config{
		MaxIdle: cfg.Session.MaxIdle,
		Logger:  log,
	})

	return s, nil
}

// createStore connects the database and prepares the place store. A
// missing DATABASE_URL is not fatal; the data endpoints report it instead.
func (s *Server) createStore(ctx context.Context) error {
	if s.cfg.Database.URL == "" {
		s.log.Warn("DATABASE_URL not set, place endpoints will be unavailable")
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(s.cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(s.cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	s.db = pool

	if s.cfg.Database.MigrateOnStart {
		manager := places.NewMigrationManager(pool, s.log)
		if err := manager.RunMigrations(); err != nil {
			return err
		}
		if err := manager.Close(); err != nil {
			s.log.Warn("failed to close migration connection", logger.ErrorField(err))
		}
	}

	s.store = places.NewPlaceStore(pool, s.log)
	return nil
}

// createBridge initializes the oracle and the chat bridge. Missing API
// keys leave the bridge nil; chat requests then fail closed.
func (s *Server) createBridge(ctx context.Context) error {
	if s.store == nil {
		s.log.Warn("chat bridge disabled, no place store")
		return nil
	}
	if s.cfg.LLM.APIKey() == "" {
		s.log.Warn("no API key for configured provider, chat endpoints will be unavailable",
			logger.StringField("provider", s.cfg.LLM.Provider))
		return nil
	}

	backend, err := s.createOracle(ctx)
	if err != nil {
		return err
	}
	s.log.Info("oracle initialized",
		logger.StringField("provider", s.cfg.LLM.Provider),
		logger.StringField("model", backend.Name()))

	s.bridge = bridge.New(bridge.Config{
		Oracle:    backend,
		Executor:  tools.NewExecutor(s.store, s.log),
		Logger:    s.log,
		Recorder:  s.metrics,
		MaxRounds: s.cfg.LLM.MaxToolRounds,
	})
	return nil
}

// createOracle builds the model backend for the configured provider.
func (s *Server) createOracle(ctx context.Context) (oracle.Oracle, error) {
	llm := s.cfg.LLM
	switch llm.Provider {
	case appconfig.ProviderAnthropic:
		return anthropic.New(llm.AnthropicAPIKey, llm.Model, s.log)
	case appconfig.ProviderOpenAI:
		return openai.New(llm.OpenAIAPIKey, llm.Model, s.log)
	case appconfig.ProviderGemini:
		return gemini.New(ctx, llm.GeminiAPIKey, llm.Model, s.log)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", llm.Provider)
	}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer cancel()

	s.setupGracefulShutdown()

	if s.cfg.Metrics.Enabled {
		metricsErr := s.metrics.Listen(s.cfg.Metrics.Port)
		go func() {
			if err := <-metricsErr; err != nil && err != http.ErrServerClosed {
				s.log.Error("metrics server failed", logger.ErrorField(err))
			}
		}()
	}

	stopSweep := make(chan struct{})
	go s.sessions.Sweep(s.cfg.Session.SweepInterval, stopSweep, s.metrics.SetActiveSessions)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.Info("HTTP server listening", logger.IntField("port", s.cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server failed", logger.ErrorField(err))
			cancel()
		}
	}()

	<-ctx.Done()
	close(stopSweep)
	s.log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP server shutdown error", logger.ErrorField(err))
	}
	if s.cfg.Metrics.Enabled {
		if err := s.metrics.Shutdown(shutdownCtx); err != nil {
			s.log.Error("metrics shutdown error", logger.ErrorField(err))
		}
	}
	if s.db != nil {
		s.db.Close()
	}

	s.log.Info("Server stopped")
	return nil
}

// setupGracefulShutdown cancels the run context on SIGINT/SIGTERM.
func (s *Server) setupGracefulShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		s.log.Info("Received shutdown signal", logger.StringField("signal", sig.String()))
		if s.cancel != nil {
			s.cancel()
		}

		time.AfterFunc(30*time.Second, func() {
			s.log.Warn("Force exiting due to timeout")
			os.Exit(1)
		})
	}()
}
