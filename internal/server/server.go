// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/pipeline"
	"github.com/cozypet/loan-processor-ai/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline runs one loan submission end to end.
type Pipeline interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// ApplicationReader loads persisted applications for retrieval and report
// export.
type ApplicationReader interface {
	FindByID(ctx context.Context, id string) (*store.Application, error)
}

// Server is the HTTP surface in front of the pipeline.
type Server struct {
	cfg      config.Config
	pipeline Pipeline
	reader   ApplicationReader
	logger   logger.Logger
	engine   *gin.Engine
	httpSrv  *http.Server
}

func New(cfg config.Config, p Pipeline, reader ApplicationReader, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		pipeline: p,
		reader:   reader,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/applications", s.handleSubmit)
		v1.GET("/applications/:id", s.handleGet)
		v1.GET("/applications/:id/report", s.handleReport)
	}

	return router
}

// Handler exposes the router, used by httptest in handler tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
	}
	s.logger.Info("http server listening", map[string]interface{}{"address": s.cfg.Server.Address})
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
