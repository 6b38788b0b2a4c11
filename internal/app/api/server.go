package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/internal/service/notes"
	"github.com/kotche/notekeeper/internal/service/users"
	"net/http"
	"time"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type Server struct {
	engine  *gin.Engine
	notes   notes.Service
	users   users.Service
	limiter *clientLimiter
}

type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies lists addresses or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

func New(notes notes.Service, users users.Service, opts Options) (*Server, error) {
	s := &Server{
		engine: gin.New(),
		notes:  notes,
		users:  users,
	}
	// gin trusts every proxy unless told otherwise; none makes ClientIP the socket peer.
	if err := s.engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), requestContext(), accessLog())
	if s.limiter != nil {
		s.engine.Use(rateLimit(s.limiter))
	}

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	api.POST("/auth/login", s.login)

	notes := api.Group("/notes")
	notes.Use(s.requireActor())
	{
		notes.GET("", s.listNotes)
		notes.GET("/:id", s.getNote)
		notes.POST("", s.createNote)
		notes.PUT("/:id", s.updateNote)
		notes.DELETE("/:id", s.deleteNote)
		notes.POST("/:id/restore", s.restoreNote)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("api server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	logger.Log.Info("api server stopped")
	return nil
}
