// Package server wires the assistant pipeline behind an HTTP API and
// manages its lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luthortech/aiops-assistant/internal/audit"
	"github.com/luthortech/aiops-assistant/internal/composer"
	appconfig "github.com/luthortech/aiops-assistant/internal/config"
	"github.com/luthortech/aiops-assistant/internal/executor"
	"github.com/luthortech/aiops-assistant/internal/governance"
	"github.com/luthortech/aiops-assistant/internal/planner"
	"github.com/luthortech/aiops-assistant/internal/sqlgen"
	"github.com/luthortech/aiops-assistant/internal/storage"
	"github.com/luthortech/aiops-assistant/pkg/health"
	"github.com/luthortech/aiops-assistant/pkg/httpmiddleware"
	"github.com/luthortech/aiops-assistant/pkg/logger"
	"github.com/luthortech/aiops-assistant/pkg/metrics"
	"github.com/luthortech/aiops-assistant/pkg/utils"
)

// Server encapsulates the assistant components and lifecycle management.
type Server struct {
	cfg      *appconfig.AppConfig
	log      logger.Logger
	planner  *planner.Planner
	executor *executor.Executor
	composer *composer.Composer
	fileSink *audit.FileSink
	checker  *health.Checker
	metrics  *metrics.Metrics
	cancel   context.CancelFunc
}

// New creates a server with all components initialized.
func New(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger) (*Server, error) {
	s := &Server{
		cfg: cfg,
		log: log,
	}

	provider, err := s.createStorageProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage provider: %w", err)
	}

	m := metrics.NewMetrics(cfg.Metrics.EnableHTTPMetrics, cfg.Metrics.EnablePipelineMetrics, log)
	s.metrics = &m

	schemaProvider := storage.NewPrefixedFileProvider(provider, cfg.SQL.SchemaPrefix)
	generator := sqlgen.New(schemaProvider, cfg.SQL.TopN)

	s.planner = planner.New(governance.NewPolicyEngine())
	s.executor = executor.New(generator, log)

	sink, err := s.createAuditSink(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit sink: %w", err)
	}
	s.composer = composer.New(sink, s.metrics, log)

	s.checker = s.createHealthChecker()

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer cancel()

	s.setupGracefulShutdown()

	if s.cfg.Metrics.ExposeMetrics {
		s.metrics.Listen(s.cfg.Metrics.Port)
	}

	httpServer := &http.Server{
		Addr:           s.cfg.HTTP.Addr(),
		Handler:        s.Handler(),
		ReadTimeout:    s.cfg.HTTP.ReadTimeout(),
		WriteTimeout:   s.cfg.HTTP.WriteTimeout(),
		IdleTimeout:    s.cfg.HTTP.IdleTimeout(),
		MaxHeaderBytes: s.cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.IntField("port", s.cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	errChans := []chan error{errCh}
	if ch := s.metrics.ErrChan(); ch != nil {
		errChans = append(errChans, ch)
	}
	merged := utils.MergeErrorChans(errChans...)

	select {
	case err := <-merged:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP server shutdown error", logger.ErrorField(err))
		return err
	}

	s.metrics.Stop()

	if s.fileSink != nil {
		if err := s.fileSink.Close(); err != nil {
			s.log.Error("Failed to close audit log", logger.ErrorField(err))
		}
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Handler builds the HTTP handler with the full middleware stack and
// all routes registered.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	mwConfig := httpmiddleware.DefaultConfig()
	mwConfig.Logger = s.log
	mwConfig.EnableLogging = true
	httpmiddleware.ApplyToRouter(router, mwConfig)
	if s.cfg.Metrics.EnableHTTPMetrics {
		router.Use(s.metrics.HTTPMiddleware())
	}

	s.registerRoutes(router)
	return router
}

// Stop triggers a graceful shutdown.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) createStorageProvider(ctx context.Context) (storage.FileProvider, error) {
	settings := s.cfg.StorageSettings()

	switch settings.Backend {
	case storage.BackendLocal, "":
		s.log.Info("Using local file-based storage", logger.StringField("directory", settings.BaseDir))
	case storage.BackendS3:
		s.log.Info("Using S3-based storage",
			logger.StringField("bucket", settings.S3Bucket),
			logger.StringField("prefix", settings.S3Prefix),
			logger.StringField("region", settings.S3Region))
	}

	return storage.NewFileProvider(ctx, settings)
}

func (s *Server) createAuditSink(provider storage.FileProvider) (audit.Sink, error) {
	if !s.cfg.Audit.Enabled {
		s.log.Info("Audit logging disabled")
		return nil, nil
	}

	fileSink, err := audit.NewFileSink(s.cfg.Audit.Path)
	if err != nil {
		return nil, err
	}
	s.fileSink = fileSink
	s.log.Info("Audit log opened", logger.StringField("path", s.cfg.Audit.Path))

	if !s.cfg.Audit.ArchiveEnabled {
		return fileSink, nil
	}

	archiveProvider := storage.NewPrefixedFileProvider(provider, s.cfg.Audit.ArchivePrefix)
	s.log.Info("Audit archive enabled", logger.StringField("prefix", s.cfg.Audit.ArchivePrefix))
	return audit.NewMultiSink(fileSink, audit.NewArchiveSink(archiveProvider)), nil
}

func (s *Server) createHealthChecker() *health.Checker {
	checker := health.New(
		health.WithLogger(s.log),
		health.WithTimeout(5*time.Second),
	)

	if s.cfg.Audit.Enabled {
		auditDir := filepath.Dir(s.cfg.Audit.Path)
		checker.AddReadinessCheck(health.NewCheckFunc("audit_log", func(ctx context.Context) error {
			info, err := os.Stat(auditDir)
			if err != nil {
				return fmt.Errorf("audit directory unavailable: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("audit path parent %s is not a directory", auditDir)
			}
			return nil
		}))
	}

	return checker
}

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
