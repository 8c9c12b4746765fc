package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/adapters/storage"
	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/input"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Offers:  s.cat.Len(),
		Pages:   s.cat.Pages(),
		Partial: s.catWarn != nil,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// indexFor returns the server index, or a fresh one when the request names
// its own schema
func (s *Server) indexFor(r *http.Request) *facets.Index {
	raw := r.URL.Query().Get("schema")
	if raw == "" {
		return s.index
	}
	return facets.Build(s.cat, types.ParseSchema(raw))
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	ix := s.indexFor(r)
	resp := FacetsResponse{Schema: ix.Schema()}
	for _, name := range ix.Dimensions() {
		d, _ := ix.Dimension(name)
		resp.Dimensions = append(resp.Dimensions, d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFacet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dimension")
	d, ok := s.indexFor(r).Dimension(name)
	if !ok {
		writeError(w, errors.Input("unknown dimension: "+name).WithContext("dimension", name))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dim := q.Get("dimension")
	value := strings.ToLower(strings.TrimSpace(q.Get("value")))
	if dim == "" || value == "" {
		writeError(w, errors.Input("dimension and value are required"))
		return
	}

	ix := s.indexFor(r)
	resp := SuggestResponse{Dimension: dim, Value: value, Valid: ix.Contains(dim, value)}
	if !resp.Valid {
		if sug, ok := resolver.Suggest(ix, dim, value); ok {
			resp.Suggestion = &sug
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var keys []types.OfferKey
	if substr := r.URL.Query().Get("contains"); substr != "" {
		keys = s.cat.KeysContaining(substr)
	} else {
		keys = s.cat.Keys()
	}
	keys = limit(keys, r)
	writeJSON(w, http.StatusOK, KeysResponse{Keys: keys, Count: len(keys)})
}

func (s *Server) handleLineItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.LineItemFilter{
		Region:   q.Get("region"),
		Service:  q.Get("service"),
		Product:  q.Get("product"),
		SKU:      q.Get("sku"),
		Meter:    q.Get("meter"),
		Type:     q.Get("type"),
		Contains: q.Get("contains"),
	}

	records := limit(s.cat.Filter(f), r)
	resp := LineItemsResponse{Items: make([]LineItem, 0, len(records))}
	for _, rec := range records {
		item := LineItem{
			Key:           rec.Key,
			Fields:        rec.Fields,
			UnitOfMeasure: rec.UnitOfMeasure,
			Currency:      rec.Currency,
		}
		if rec.UnitPrice != nil {
			item.UnitPrice = rec.UnitPrice.String()
		}
		resp.Items = append(resp.Items, item)
	}
	resp.Count = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}

// handleEstimate accepts a profile as JSON, or as HCL when the content type
// says so
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, errors.Input("read request body: "+err.Error()))
		return
	}
	if len(body) > maxBodySize {
		writeError(w, errors.Input("request body too large").WithContext("limit", maxBodySize))
		return
	}

	var env *input.Envelope
	if strings.Contains(r.Header.Get("Content-Type"), "hcl") {
		env, err = input.FromBytes(input.SourceInfo{Type: input.SourceAPI, Path: "request.hcl"}, body)
	} else {
		env, err = input.FromJSON(body)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := env.Request()
	if err != nil {
		writeError(w, err)
		return
	}
	if len(req.Schema) == 0 {
		req.Schema = s.schema
	}
	req.CatalogWarning = s.catWarn

	quote, err := s.engine.Estimate(r.Context(), s.cat, req)
	if err != nil {
		s.logger.Warn("estimate failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, err)
		return
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), storage.NewRecord(quote, env.ContentHash)); err != nil {
			s.logger.Warn("quotation not stored", zap.String("id", quote.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, EstimateResponse{
		RequestID:   middleware.GetReqID(r.Context()),
		ContentHash: env.ContentHash,
		Quotation:   quote,
		DurationMs:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleListQuotations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &storage.ListFilter{
		Region:      q.Get("region"),
		ContentHash: q.Get("content_hash"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}

	recs, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := QuotationsResponse{Quotations: make([]QuotationSummary, 0, len(recs))}
	for _, rec := range recs {
		resp.Quotations = append(resp.Quotations, QuotationSummary{
			ID:          rec.ID,
			ContentHash: rec.ContentHash,
			Region:      rec.Region,
			Currency:    rec.Currency,
			Total:       rec.Total,
			Complete:    rec.Complete,
			CreatedAt:   rec.CreatedAt,
		})
	}
	resp.Count = len(resp.Quotations)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetQuotation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Quotation)
}

func (s *Server) handleDeleteQuotation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompareQuotations(w http.ResponseWriter, r *http.Request) {
	cmp, err := storage.Compare(r.Context(), s.store, chi.URLParam(r, "id"), chi.URLParam(r, "other"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// limit truncates items to the ?limit query parameter when it is a positive
// integer
func limit[T any](items []T, r *http.Request) []T {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// statusFor maps an error type to an HTTP status
func statusFor(err error) int {
	if stderrors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeInvalidSelection, errors.TypeParsing:
		return http.StatusBadRequest
	case errors.TypeCurrencyMismatch:
		return http.StatusUnprocessableEntity
	case errors.TypeNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	e, ok := errors.As(err)
	if !ok {
		e = errors.Internal("unexpected error", err)
	}
	body := ErrorResponse{Error: e}
	if e.Cause != nil {
		// Cause is not serialized; fold its text into the message
		body.Error = &errors.Error{Type: e.Type, Message: e.Message + ": " + e.Cause.Error(), Context: e.Context}
	}
	writeJSON(w, statusFor(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
