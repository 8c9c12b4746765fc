// Package api - Thin HTTP layer over the estimation engine.
// The API is ONLY responsible for: input decoding, engine invocation, output
// serialization. It never performs cost logic.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/adapters/storage"
	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// maxBodySize limits request bodies
const maxBodySize = 1 << 20

// Server is the API server. It serves one immutable catalog snapshot.
type Server struct {
	router  chi.Router
	engine  *engine.Engine
	cat     *catalog.Catalog
	catWarn *catalog.PartialCatalogWarning
	schema  types.FacetSchema
	index   *facets.Index
	store   storage.Store
	version string
	logger  *zap.Logger
	started time.Time
}

// Options configure a Server
type Options struct {
	Version string

	// Schema is the default key schema; empty means inferred from cat
	Schema types.FacetSchema

	// CatalogWarning is the loader's partial-catalog signal for cat
	CatalogWarning *catalog.PartialCatalogWarning

	// Store keeps issued quotations; nil disables the /quotations routes
	Store storage.Store

	Logger *zap.Logger
}

// NewServer creates a server over eng and cat
func NewServer(eng *engine.Engine, cat *catalog.Catalog, opts Options) *Server {
	schema := opts.Schema
	if len(schema) == 0 {
		schema = facets.InferSchema(cat)
	}
	s := &Server{
		engine:  eng,
		cat:     cat,
		catWarn: opts.CatalogWarning,
		schema:  schema,
		index:   facets.Build(cat, schema),
		store:   opts.Store,
		version: opts.Version,
		logger:  logging.OrGlobal(opts.Logger),
		started: time.Now().UTC(),
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Get("/facets", s.handleFacets)
	r.Get("/facets/{dimension}", s.handleFacet)
	r.Get("/suggest", s.handleSuggest)
	r.Get("/keys", s.handleKeys)
	r.Get("/line-items", s.handleLineItems)

	r.Post("/estimate", s.handleEstimate)

	if s.store != nil {
		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", s.handleListQuotations)
			r.Get("/{id}", s.handleGetQuotation)
			r.Delete("/{id}", s.handleDeleteQuotation)
			r.Get("/{id}/compare/{other}", s.handleCompareQuotations)
		})
	}

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}
