package webapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	// AllowedOrigins enables CORS for the listed origins. Empty means
	// same-origin only.
	AllowedOrigins []string
	// Timeout bounds each request; zero means 30s.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewRouter mounts all web API routes on a chi router.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(cfg.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.HandleHealth)

		api.Get("/rubric", h.HandleRubric)
		api.Patch("/rubric/{criterion}/{subCriterion}", h.HandleAdjustThreshold)
		api.Put("/rubric/{criterion}/weights", h.HandleSetWeights)

		api.Post("/evaluate", h.HandleEvaluate)

		api.Get("/results", h.HandleResults)
		api.Get("/results/{id}", h.HandleResultDetail)
		api.Get("/summary", h.HandleSummary)
	})
	return r
}

// requestLogger logs one Debug line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"durationMs", time.Since(start).Milliseconds(),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
