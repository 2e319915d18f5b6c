// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/config"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/session"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// Server is the advisor HTTP API.
type Server struct {
	cfg      *config.Config
	advisor  *advisor.Advisor
	sessions *session.Manager
	router   chi.Router
}

// New creates a Server wired with all dependencies.
func New(cfg *config.Config, a *advisor.Advisor, sessions *session.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		advisor:  a,
		sessions: sessions,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)
	if len(cfg.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
		r.Get("/stats", s.handleStats)

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/advice", s.handleAdvice)
			r.Post("/questions", s.handleQuestion)
			r.Get("/history", s.handleHistory)
			r.Delete("/history", s.handleClearHistory)
			r.Put("/locale", s.handleLocale)
			r.Post("/reset", s.handleReset)
		})
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("advisor listening", zap.String("addr", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

type adviceRequest struct {
	models.ProfileRequest
	IncomeBracket string `json:"income_bracket,omitempty"`
}

type localeRequest struct {
	Locale string `json:"locale"`
}

type localeResponse struct {
	Locale  string `json:"locale"`
	Changed bool   `json:"changed"`
}

type cacheStatsResponse struct {
	models.CacheStats
	HitRate float64 `json:"hit_rate"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(s.cfg.Backends))
	for i, b := range s.cfg.Backends {
		names[i] = b.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "backends": names})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.advisor.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.advisor.CacheStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cacheStatsResponse{CacheStats: stats, HitRate: stats.HitRate()})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	expiredOnly := r.URL.Query().Get("expired") == "true"
	if err := s.advisor.ClearCache(expiredOnly); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	j := s.advisor.Journal()
	if j == nil {
		writeJSON(w, http.StatusOK, []models.ResolutionSummary{})
		return
	}
	since := time.Now().Add(-24 * time.Hour)
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid since duration")
			return
		}
		since = time.Now().Add(-d)
	}
	sums, err := j.Summary(r.Context(), since)
	if err != nil {
		writeError(w, err)
		return
	}
	if sums == nil {
		sums = []models.ResolutionSummary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.sessions.List()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req adviceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IncomeBracket != "" && req.MonthlyIncome == 0 {
		income, ok := catalog.IncomeForBracket(req.IncomeBracket)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown income bracket %q", req.IncomeBracket))
			return
		}
		req.MonthlyIncome = income
	}

	res, err := s.advisor.Advise(r.Context(), sess, req.ProfileRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req models.QueryRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.advisor.Ask(r.Context(), sess, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	n := s.cfg.Conversation.Display
	if v := r.URL.Query().Get("n"); v != "" {
		limit := sess.Log().Retention()
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 || parsed > limit {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("n must be an integer between 0 and %d", limit))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, sess.Log().Recent(n))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req localeRequest
	if !decode(w, r, &req) {
		return
	}
	changed, err := s.advisor.SetLocale(sess, req.Locale)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, localeResponse{Locale: sess.Locale(), Changed: changed})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.advisor.NewConsultation(sess)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Context, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// writeError maps pipeline errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSONError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrStale):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"advisor_error","code":%d}}`, message, code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
