// Package httpapi exposes the search runtime over HTTP with gin.
package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leobook/canondict/internal/app"
	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/domain"
	"github.com/leobook/canondict/internal/search"
)

// Server wires the search runtime into HTTP handlers.
type Server struct {
	rt  *search.Runtime
	log *slog.Logger
}

// NewServer creates a Server around a search runtime.
func NewServer(rt *search.Runtime, log *slog.Logger) *Server {
	return &Server{rt: rt, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/search", s.handleSearch)
	v1.POST("/refresh", s.handleRefresh)

	return r
}

// HTTPServer wraps the router in an http.Server with the configured
// listen address and timeouts.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

type matchResponse struct {
	CanonicalID string   `json:"canonical_id"`
	EntityKind  string   `json:"entity_kind"`
	DisplayName string   `json:"display_name"`
	Region      string   `json:"region"`
	Aliases     []string `json:"aliases"`
	Score       float64  `json:"score"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []matchResponse `json:"results"`
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_query", "message": "q parameter is required"})
		return
	}

	kind := domain.EntityKind(c.Query("kind"))
	if kind != "" && !kind.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_kind", "message": "kind must be team, league or region_league"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit", "message": "limit must be an integer"})
			return
		}
		limit = n
	}

	matches, err := s.rt.Search(c.Request.Context(), query, kind, limit)
	if err != nil {
		if errors.Is(err, domain.ErrDictionaryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dictionary_unavailable"})
			return
		}
		s.log.Error("search failed", slog.String("query", query), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	resp := searchResponse{Query: query, Results: make([]matchResponse, 0, len(matches))}
	for _, m := range matches {
		resp.Results = append(resp.Results, matchResponse{
			CanonicalID: m.Entity.CanonicalID,
			EntityKind:  string(m.Entity.Kind),
			DisplayName: m.Entity.DisplayName,
			Region:      m.Entity.Region,
			Aliases:     m.Entity.Aliases,
			Score:       m.Score,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.rt.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, domain.ErrDictionaryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dictionary_unavailable"})
			return
		}
		s.log.Error("refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "entities": s.rt.Len()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"ready":   s.rt.Ready(),
		"version": app.Version,
	})
}

// requestLog logs one line per request in the structured format the rest of
// the process uses.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
