package server

//
// Wikiprovenance, provenance statistics for Wikidata items
// Copyright (C) 2026 Wikiprovenance contributors

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wikiprovenance/internal/compare"
	"wikiprovenance/internal/config"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/report"
	"wikiprovenance/internal/results"
	"wikiprovenance/internal/wikidata"
)

// Executor runs SPARQL queries for both reports and comparisons.
type Executor interface {
	Execute(ctx context.Context, query string) (*results.ResultSet, error)
}

// Server exposes reports and comparisons as a JSON API.
type Server struct {
	exec     Executor
	reports  *report.Builder
	wikitext report.WikitextSource
	searcher report.Searcher
	cfg      config.CompareConfig
	logger   *slog.Logger
}

// New creates a Server.
func New(exec Executor, wikitext report.WikitextSource, searcher report.Searcher, cfg config.CompareConfig, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "server"))
	return &Server{
		exec:     exec,
		reports:  report.NewBuilder(exec, logger),
		wikitext: wikitext,
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetupRouter registers the API routes.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/item", s.Item)
	api.GET("/compare", s.Compare)
	api.GET("/search", s.Search)
	api.GET("/projects/:project", s.ProjectLinks)
	api.GET("/references", s.References)
	api.GET("/queries", s.Queries)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

func (s *Server) language(c *gin.Context) (string, bool) {
	lang := c.DefaultQuery("language", s.cfg.Language)
	if !query.ValidLanguage(lang) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid language: " + lang})
		return "", false
	}
	return lang, true
}

func (s *Server) item(c *gin.Context) (string, bool) {
	id := c.DefaultQuery("item", s.cfg.DefaultItem)
	if !query.ValidItemID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id: " + id})
		return "", false
	}
	return id, true
}

// fail maps an error to a status: remote failures are 502, the rest 500.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if wikidata.IsFetchError(err) {
		status = http.StatusBadGateway
	}
	s.logger.Error("request failed", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// Item serves the provenance report of ?item=.
func (s *Server) Item(c *gin.Context) {
	id, ok := s.item(c)
	if !ok {
		return
	}
	lang, ok := s.language(c)
	if !ok {
		return
	}
	r, err := s.reports.Item(c.Request.Context(), id, lang)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CompareResponse is a finished comparison run.
type CompareResponse struct {
	ID          string            `json:"id"`
	Language    string            `json:"language"`
	Identifiers []string          `json:"identifiers"`
	Records     []*compare.Record `json:"records"`
}

// Compare compares the comma separated ?compare= items. Every request gets its own
// engine, so concurrent clients never supersede each other.
func (s *Server) Compare(c *gin.Context) {
	ids := compare.ParseIdentifiers(c.DefaultQuery("compare", s.cfg.DefaultItems))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items given"})
		return
	}
	for _, id := range ids {
		if !query.ValidItemID(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id: " + id})
			return
		}
	}

	lang, ok := s.language(c)
	if !ok {
		return
	}

	engine := compare.NewEngine(s.exec,
		compare.WithLanguage(lang),
		compare.WithConcurrency(s.cfg.Concurrency),
		compare.WithLogger(s.logger))
	run, err := engine.CompareItems(c.Request.Context(), ids)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, CompareResponse{
		ID:          run.ID.String(),
		Language:    run.Language,
		Identifiers: run.Identifiers,
		Records:     run.Ordered(),
	})
}

// Search finds entities matching ?search=.
func (s *Server) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
			return
		}
		limit = n
	}
	lang, ok := s.language(c)
	if !ok {
		return
	}
	hits, err := report.Search(c.Request.Context(), s.searcher, c.Query("search"), lang, limit)
	if err != nil {
		if errors.Is(err, report.ErrEmptySearch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}

// ProjectLinks lists ?item='s sitelinks on one sister project.
func (s *Server) ProjectLinks(c *gin.Context) {
	id, ok := s.item(c)
	if !ok {
		return
	}
	links, err := s.reports.Project(c.Request.Context(), id, c.Param("project"))
	if err != nil {
		var unknown *report.UnknownProjectError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// References counts the <ref> tags of the Wikipedia article at ?url=.
func (s *Server) References(c *gin.Context) {
	raw := c.Query("url")
	if _, err := report.ParseArticleURL(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	refs, err := report.CountArticleReferences(c.Request.Context(), s.wikitext, raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

// Queries lists the query catalog.
func (s *Server) Queries(c *gin.Context) {
	out := make([]query.Spec, 0)
	for _, name := range query.Names() {
		out = append(out, query.MustLookup(name))
	}
	c.JSON(http.StatusOK, gin.H{"queries": out})
}
