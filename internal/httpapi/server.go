// Package httpapi is the query server: a small gin-gonic router
// exposing the search box, its script, the search endpoint and the
// stats endpoint. Grounded on the route-table shape of the original
// project's serve_request dispatch (exact paths and status codes
// preserved) and on AleutianFOSS's cmd/trace use of gin.New plus
// gin.Recovery for the router construction itself.
package httpapi

import (
	_ "embed"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/anomitroid/local-search-engine/internal/engine"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var indexHTML []byte

//go:embed static/index.js
var indexJS []byte

// Server is the HTTP front end over an Engine.
type Server struct {
	engine *engine.Engine
	router *gin.Engine
	log    logging.Logger
}

// New builds a Server with routes registered but not yet listening.
func New(e *engine.Engine, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{engine: e, router: r, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", s.handleIndexHTML)
	s.router.GET("/index.html", s.handleIndexHTML)
	s.router.GET("/index.js", s.handleIndexJS)
	s.router.POST("/api/search", s.handleSearch)
	s.router.GET("/api/stats", s.handleStats)
	s.router.NoRoute(s.handleNotFound)
}

// Run starts listening on address, blocking until the listener fails.
func (s *Server) Run(address string) error {
	s.log.Info("listening", "address", address)
	return s.router.Run(address)
}

// Handler exposes the underlying http.Handler, for use with httptest
// in tests and for embedding behind another server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleIndexHTML(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleIndexJS(c *gin.Context) {
	c.Data(http.StatusOK, "text/javascript; charset=utf-8", indexJS)
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404")
}

// handleSearch reads the raw request body as the query string — the
// original protocol has no JSON envelope for search requests, just a
// UTF-8 query — tokenizes it through the shared pipeline inside the
// engine, and returns up to 20 [path, score] pairs.
func (s *Server) handleSearch(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.log.Error("reading search body failed", "error", err)
		c.String(http.StatusInternalServerError, "500: could not read request body")
		return
	}
	if !utf8.Valid(body) {
		c.String(http.StatusBadRequest, "400: request body is not valid UTF-8")
		return
	}

	results, err := s.engine.Search(string(body))
	if err != nil {
		s.log.Error("search failed", "error", err)
		c.String(http.StatusInternalServerError, "500: search failed")
		return
	}
	if len(results) > 20 {
		results = results[:20]
	}

	pairs := make([][2]any, len(results))
	for i, r := range results {
		pairs[i] = [2]any{r.Path, r.Score}
	}
	c.JSON(http.StatusOK, pairs)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Stats()
	if err != nil {
		s.log.Error("stats failed", "error", err)
		c.String(http.StatusInternalServerError, "500: stats failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"docs_count":  stats.Docs,
		"terms_count": stats.Terms,
	})
}
