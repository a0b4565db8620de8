// Package api implements the small admin/health HTTP surface described in
// SPEC_FULL.md's supplemented-features section: a health check and a
// read-only record lookup for the chat UI's follow-up queries. Grounded on
// pkg/api/handlers.go's gin.Server shape.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/dispatcher"
	"github.com/matchmind/matchmind/internal/observability"
	"github.com/matchmind/matchmind/internal/store"
)

// Pinger reports whether the database connection is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecordGetter is the subset of store.RecordService the record-lookup
// endpoint depends on, narrowed to an interface for testability.
type RecordGetter interface {
	GetRecord(ctx context.Context, key core.RecordKey) (core.AnalysisRecord, error)
}

// AnalyzeDispatcher is the subset of dispatcher.Dispatcher the /internal/analyze
// endpoint depends on.
type AnalyzeDispatcher interface {
	Dispatch(ctx context.Context, cmd dispatcher.Command) (dispatcher.Ack, error)
}

var (
	_ Pinger            = (*store.DB)(nil)
	_ RecordGetter      = (*store.RecordService)(nil)
	_ AnalyzeDispatcher = (*dispatcher.Dispatcher)(nil)
)

// Server is the admin/health HTTP server.
type Server struct {
	engine     *gin.Engine
	db         Pinger
	records    RecordGetter
	dispatcher AnalyzeDispatcher
}

// NewServer constructs a Server and registers its routes.
func NewServer(db Pinger, records RecordGetter, d AnalyzeDispatcher) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, db: db, records: records, dispatcher: d}
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/internal/metrics", s.metrics)
	s.engine.GET("/internal/records/:matchID/:requesterID", s.getRecord)
	s.engine.POST("/internal/analyze", s.postAnalyze)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": observability.Metrics.Snapshots()})
}

func (s *Server) getRecord(c *gin.Context) {
	key := core.RecordKey{MatchID: c.Param("matchID"), RequesterID: c.Param("requesterID")}
	rec, err := s.records.GetRecord(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// postAnalyze is the dispatcher's HTTP ingress: the chat platform's gateway
// (or a test harness) posts a slash-command payload here and receives a
// deferred-interaction ack, per spec.md §4.1.
func (s *Server) postAnalyze(c *gin.Context) {
	var cmd dispatcher.Command
	if err := c.BindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ack, err := s.dispatcher.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		if core.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"request_id": ack.RequestID})
}
