package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	"github.com/openviglet/sitesearch/internal/domain/site"
	healthuc "github.com/openviglet/sitesearch/internal/usecase/health"
)

// ErrorCode is the machine-readable error code returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeSiteNotFound  ErrorCode = "site_not_found"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// searcher is the search use case the handlers drive.
type searcher interface {
	Search(ctx context.Context, siteName string, req request.Request) (*result.Result, error)
	FacetRefresh(ctx context.Context, siteName, facet string, req request.Request) (*result.Facet, error)
	Locales(ctx context.Context, siteName string) ([]site.Locale, error)
}

// Server serves the site search HTTP API.
type Server struct {
	search        searcher
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSiteNotFound, http.StatusNotFound, ErrorCodeSiteNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrInvalidSite, http.StatusBadRequest, ErrorCodeBadRequest),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/sn/{site}", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/facet/{facet}", s.FacetRefresh)
		r.Get("/locales", s.Locales)
	})
}

// Search handles GET /api/sn/{site}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := bindSearchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), chi.URLParam(r, "site"), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSearchResponse(res))
}

// FacetRefresh handles GET /api/sn/{site}/facet/{facet}.
func (s *Server) FacetRefresh(w http.ResponseWriter, r *http.Request) {
	req, err := bindSearchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	f, err := s.search.FacetRefresh(r.Context(), chi.URLParam(r, "site"), chi.URLParam(r, "facet"), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, facetToResponse(*f))
}

// Locales handles GET /api/sn/{site}/locales.
func (s *Server) Locales(w http.ResponseWriter, r *http.Request) {
	locales, err := s.search.Locales(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]LocaleResponse, 0, len(locales))
	for _, l := range locales {
		items = append(items, LocaleResponse{Locale: l.Tag, Core: l.Core})
	}
	writeJSON(w, http.StatusOK, items)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSiteNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrInvalidSite,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// invalidParam wraps a binding failure as an invalid request.
func invalidParam(name string, err error) error {
	return fmt.Errorf("parameter %s: %w: %w", name, domain.ErrInvalidRequest, err)
}
