// Package server exposes the info, download and serve endpoints over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"fetcharr/internal/config"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/downloads"
	"fetcharr/internal/file"
	"fetcharr/internal/models"
	"fetcharr/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

// Pipeline is the part of the download service the handlers use.
type Pipeline interface {
	Info(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error)
	Download(ctx context.Context, req models.DownloadRequest) (models.Artifact, error)
	CheckTools(ctx context.Context) []downloads.ToolStatus
}

// Server holds the handler dependencies.
type Server struct {
	settings config.Settings
	pipeline Pipeline
	files    *file.Server
	ledger   ratelimit.Ledger
	limiter  *rate.Limiter
	now      func() time.Time
}

// New returns a Server. A nil ledger disables per-address limits.
func New(s config.Settings, p Pipeline, files *file.Server, ledger ratelimit.Ledger) *Server {
	if ledger == nil {
		ledger = ratelimit.Unlimited{}
	}
	var limiter *rate.Limiter
	if s.GlobalRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.GlobalRPS), max(s.GlobalBurst, 1))
	}
	return &Server{
		settings: s,
		pipeline: p,
		files:    files,
		ledger:   ledger,
		limiter:  limiter,
		now:      time.Now,
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	if s.settings.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(logger.Pl.Zerolog()))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(s.globalLimit)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.addressLimit)
			r.Get("/info", s.handleInfo)
			r.Post("/info", s.handleInfo)
			r.Get("/download", s.handleDownload)
			r.Post("/download", s.handleDownload)
		})
		r.Get("/serve", s.handleServe)
		r.Get("/formats", s.handleFormats)
		r.Get("/health", s.handleHealth)
	})

	// --- Legacy paths ---
	r.Group(func(r chi.Router) {
		r.Use(s.addressLimit)
		r.Get("/info.php", s.handleInfo)
		r.Post("/info.php", s.handleInfo)
		r.Get("/download.php", s.handleDownload)
		r.Post("/download.php", s.handleDownload)
	})
	r.Get("/serve.php", s.handleServe)

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
