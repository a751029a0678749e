// Package httpapi exposes the assessd use cases over a chi HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	assessmentuc "github.com/cardioai/assessd/internal/usecase/assessment"
	backfilluc "github.com/cardioai/assessd/internal/usecase/backfill"
	healthuc "github.com/cardioai/assessd/internal/usecase/health"
	provideruc "github.com/cardioai/assessd/internal/usecase/provider"
	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Narrow views of the use case services, sized to what the handlers call.
type searchService interface {
	Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
}

type assessmentService interface {
	Submit(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error)
	Get(ctx context.Context, token, id string) (domassess.Assessment, error)
	List(ctx context.Context, token, status string, offset, limit int) (assessmentuc.Page, error)
	Review(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error)
}

type providerService interface {
	Register(ctx context.Context, in provideruc.RegisterInput) (domassess.Provider, error)
}

type backfillService interface {
	Run(ctx context.Context, limit int) (backfilluc.Report, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the use case services.
type Server struct {
	search        searchService
	assessments   assessmentService
	providers     providerService
	backfill      backfillService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	assessments assessmentService,
	providers providerService,
	backfill backfillService,
	health healthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		assessments: assessments,
		providers:   providers,
		backfill:    backfill,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized),
		sentinelHandler(domain.ErrScopeNotFound, http.StatusBadRequest),
		sentinelHandler(domain.ErrAssessmentNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrProviderNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
	}
	return s
}

// Mount registers all routes on the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchAssessments)
		r.Post("/assessments", s.SubmitAssessment)
		r.Get("/assessments", s.ListAssessments)
		r.Get("/assessments/{id}", s.GetAssessment)
		r.Post("/assessments/{id}/review", s.ReviewAssessment)
		r.Post("/embeddings/backfill", s.RunBackfill)
		r.Post("/providers", s.RegisterProvider)
	})
}

// SearchAssessments handles POST /v1/search.
func (s *Server) SearchAssessments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), searchuc.Request{
		Query:  req.Query,
		Status: req.Status,
		Token:  bearerToken(r),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchToResponse(resp))
}

// SubmitAssessment handles POST /v1/assessments.
func (s *Server) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req submitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	a, err := s.assessments.Submit(r.Context(), assessmentuc.SubmitInput{
		Token:           bearerToken(r),
		PatientID:       req.PatientID,
		RiskScore:       req.RiskScore,
		RiskCategory:    req.RiskCategory,
		Inputs:          req.Inputs,
		Recommendations: recommendationsFromRequest(req.Recommendations),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/assessments/%s", a.ID()))
	writeJSON(w, http.StatusCreated, assessmentToResponse(a))
}

// GetAssessment handles GET /v1/assessments/{id}.
func (s *Server) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), bearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assessmentToResponse(a))
}

// ListAssessments handles GET /v1/assessments.
func (s *Server) ListAssessments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if offset < 0 || limit <= 0 || limit > maxListLimit {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("offset must be >= 0 and limit between 1 and %d", maxListLimit))
		return
	}

	page, err := s.assessments.List(r.Context(), bearerToken(r), status, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]assessmentResponse, len(page.Items))
	for i, a := range page.Items {
		items[i] = assessmentToResponse(a)
	}
	writeJSON(w, http.StatusOK, assessmentListResponse{Items: items, Total: page.Total})
}

// ReviewAssessment handles POST /v1/assessments/{id}/review.
func (s *Server) ReviewAssessment(w http.ResponseWriter, r *http.Request) {
	var req reviewAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	a, err := s.assessments.Review(r.Context(), assessmentuc.ReviewInput{
		Token:                 bearerToken(r),
		ID:                    chi.URLParam(r, "id"),
		OverallRecommendation: req.OverallRecommendation,
		ProviderComments:      req.ProviderComments,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assessmentToResponse(a))
}

// RunBackfill handles POST /v1/embeddings/backfill. The body is optional;
// an absent or zero limit falls back to the configured batch size.
func (s *Server) RunBackfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	report, err := s.backfill.Run(r.Context(), req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// RegisterProvider handles POST /v1/providers.
func (s *Server) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	var req registerProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := s.providers.Register(r.Context(), provideruc.RegisterInput{
		UserID:        req.UserID,
		Email:         req.Email,
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		Country:       req.Country,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, providerToResponse(p))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnauthorized,
		domain.ErrScopeNotFound,
		domain.ErrAssessmentNotFound,
		domain.ErrProviderNotFound,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// validationHandler surfaces the full validation message. Validation errors
// describe the caller's own input, so the detail is safe to return.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
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
	writeError(w, http.StatusInternalServerError, "internal error")
}
