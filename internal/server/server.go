// Package server exposes the submission and export services over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/entity"
	"github.com/joseph-ayodele/certificate-verifier/internal/services/submissions"
)

// SubmissionService is the behavior the HTTP layer needs from submissions.Service.
type SubmissionService interface {
	Submit(ctx context.Context, req submissions.SubmitRequest) (*submissions.SubmitResult, error)
	List(ctx context.Context) ([]*entity.Submission, error)
	Get(ctx context.Context, id int64) (*entity.Submission, error)
	ListByPhone(ctx context.Context, phone string) ([]*entity.Submission, error)
	UpdateStatus(ctx context.Context, id int64, upd submissions.StatusUpdate) error
}

// Exporter renders every submission as a downloadable file.
type Exporter interface {
	CSV(ctx context.Context) ([]byte, error)
	XLSX(ctx context.Context) ([]byte, error)
}

// Pinger reports whether the store is reachable.
type Pinger func(ctx context.Context) error

type Config struct {
	MaxUploadBytes int64
	UploadDir      string
}

type Server struct {
	cfg         Config
	submissions SubmissionService
	exporter    Exporter
	ping        Pinger
	logger      *slog.Logger
	now         func() time.Time
}

func New(cfg Config, subs SubmissionService, exporter Exporter, ping Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Server{
		cfg:         cfg,
		submissions: subs,
		exporter:    exporter,
		ping:        ping,
		logger:      logger,
		now:         time.Now,
	}
}

// Routes builds the chi router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withRequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/submit", s.submit)
		r.Get("/records", s.listRecords)
		r.Get("/record/{id}", s.getRecord)
		r.Post("/record/{id}/status", s.updateStatus)
		r.Get("/status/{phone}", s.statusByPhone)
		r.Get("/export/csv", s.exportCSV)
		r.Get("/export/excel", s.exportExcel)
	})

	if s.cfg.UploadDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
			if name := chi.URLParam(r, "*"); name == "" || strings.HasSuffix(name, "/") {
				notFound(w, r)
				return
			}
			files.ServeHTTP(w, r)
		})
	}

	r.NotFound(notFound)
	return r
}

// withRequestID copies chi's request id into the context key the services log with.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(common.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", common.RequestIDFromContext(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
