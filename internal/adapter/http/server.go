package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	maxBodyBytes = 1 << 20
)

// FusionAPI is the application surface served over HTTP.
type FusionAPI interface {
	sharedobs.ReadinessChecker
	GetFused(ctx context.Context) (domain.FusedRecord, error)
	StoreCustom(ctx context.Context, in domain.CustomInput) (domain.CustomRecord, error)
	History(ctx context.Context, page, limit int) (domain.HistoryPage, error)
}

// Server exposes the fusion API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	api        FusionAPI
	logger     *slog.Logger
}

// envelope is the body of every API response.
type envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// NewServer creates an HTTP server with the API routes under CORS and the
// operational routes /healthz, /readyz, and /metrics.
func NewServer(addr string, api FusionAPI, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(api))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.logRequests)
		r.Use(allowAnyOrigin)

		r.Get("/fusionados", s.handleFused)
		r.Get("/historial", s.handleHistory)
		r.Post("/almacenar", s.handleStore)
		for _, path := range []string{"/fusionados", "/historial", "/almacenar"} {
			r.Options(path, preflight)
		}
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleFused(w http.ResponseWriter, r *http.Request) {
	rec, err := s.api.GetFused(r.Context())
	if err != nil {
		s.logger.Error("get fused failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		sharedobs.WriteJSON(w, http.StatusInternalServerError, envelope{
			Error:   err.Error(),
			Message: "failed to fetch fused data",
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    rec,
		Message: "fused data fetched",
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		writeBadRequest(w, "invalid page parameter", `"page" must be an integer greater than 0`)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		writeBadRequest(w, "invalid limit parameter", `"limit" must be an integer between 1 and 100`)
		return
	}

	hp, err := s.api.History(r.Context(), page, limit)
	if errors.Is(err, domain.ErrInvalidPagination) {
		writeBadRequest(w, err.Error(), "page must be at least 1 and limit between 1 and 100")
		return
	}
	if err != nil {
		s.logger.Error("list history failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		sharedobs.WriteJSON(w, http.StatusInternalServerError, envelope{
			Error:   err.Error(),
			Message: "failed to fetch history",
		})
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       hp.Records,
		Pagination: &hp.Pagination,
		Message:    "history fetched",
	})
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	var in domain.CustomInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON", "request body must be a valid JSON object")
		return
	}

	rec, err := s.api.StoreCustom(r.Context(), in)
	if errors.Is(err, domain.ErrInvalidRecord) {
		writeBadRequest(w, err.Error(), "field title is required")
		return
	}
	if err != nil {
		s.logger.Error("store custom record failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		sharedobs.WriteJSON(w, http.StatusInternalServerError, envelope{
			Error:   err.Error(),
			Message: "failed to store custom data",
		})
		return
	}

	sharedobs.WriteJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data:    rec,
		Message: "custom data stored",
	})
}

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeBadRequest(w http.ResponseWriter, errMsg, message string) {
	sharedobs.WriteJSON(w, http.StatusBadRequest, envelope{Error: errMsg, Message: message})
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
