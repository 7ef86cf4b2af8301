package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keagan/promoreel/internal/config"
	"github.com/keagan/promoreel/internal/pipeline"
	"github.com/keagan/promoreel/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Runner executes render passes
type Runner interface {
	Pass1(ctx context.Context, req pipeline.Pass1Request) (*pipeline.Pass1Result, error)
	Pass2(ctx context.Context, req pipeline.Pass2Request) (*pipeline.Result, error)
}

// Server exposes the pipeline over HTTP and prunes old artifacts on a schedule
type Server struct {
	logger zerolog.Logger
	cfg    *config.Config
	runner Runner
	store  store.Store
	router *gin.Engine
	cron   *cron.Cron

	mediaRoot string
}

// NewServer wires routes and the retention janitor
func NewServer(logger zerolog.Logger, cfg *config.Config, runner Runner, st store.Store) (*Server, error) {
	s := &Server{
		logger: logger.With().Str("component", "api").Logger(),
		cfg:    cfg,
		runner: runner,
		store:  st,
		cron:   cron.New(),
	}

	root, err := filepath.Abs(cfg.Server.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid server.media_root %q: %w", cfg.Server.MediaRoot, err)
	}
	s.mediaRoot = root

	if cfg.Store.Retention > 0 && cfg.Store.PruneEvery != "" {
		if _, err := s.cron.AddFunc(cfg.Store.PruneEvery, s.prune); err != nil {
			return nil, fmt.Errorf("invalid store.prune_every %q: %w", cfg.Store.PruneEvery, err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.router = router
	s.setupRoutes()
	return s, nil
}

// Router returns the HTTP handler
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/pass1", s.createPass1)
		v1.GET("/artifacts", s.listArtifacts)
		v1.GET("/artifacts/:id", s.getArtifact)
		v1.DELETE("/artifacts/:id", s.deleteArtifact)
		v1.POST("/artifacts/:id/render", s.render)
		v1.GET("/schema/:name", s.schema)
	}
}

// Run serves on cfg.Server.Addr until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.cron.Start()
	defer s.cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// prune removes artifacts older than the configured retention
func (s *Server) prune() {
	cutoff := time.Now().Add(-s.cfg.Store.Retention)
	pruned, err := store.Prune(context.Background(), s.store, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("artifact prune failed")
		return
	}
	if len(pruned) > 0 {
		s.logger.Info().Int("pruned", len(pruned)).Time("cutoff", cutoff).Msg("pruned old artifacts")
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
