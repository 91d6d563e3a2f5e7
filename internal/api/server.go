package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiqai/intro-scorer/internal/audio"
	"github.com/lexiqai/intro-scorer/internal/config"
	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/sentiment"
	"github.com/lexiqai/intro-scorer/internal/stt"
)

// multipartSlack covers form boundaries and fields around an uploaded file.
const multipartSlack = 64 << 10

// Server serves the scoring API
type Server struct {
	cfg         *config.Config
	evaluator   *scoring.Evaluator
	transcriber stt.Transcriber
	vad         *audio.VADConfig
}

// NewServer builds a Server. transcriber may be nil, in which case audio
// evaluation answers 503.
func NewServer(cfg *config.Config, evaluator *scoring.Evaluator, transcriber stt.Transcriber) *Server {
	if evaluator == nil {
		evaluator = scoring.NewEvaluator()
	}
	vad := audio.DefaultVADConfig()
	if cfg.VADEnergyThreshold > 0 {
		vad.EnergyThreshold = cfg.VADEnergyThreshold
	}
	if cfg.VADFrameMillis > 0 {
		vad.FrameMillis = cfg.VADFrameMillis
	}
	return &Server{
		cfg:         cfg,
		evaluator:   evaluator,
		transcriber: transcriber,
		vad:         vad,
	}
}

// Routes builds the HTTP handler for every endpoint
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", observability.HealthCheckHandler())
	r.Get("/ready", observability.ReadinessHandler(s.readinessChecks()))
	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rubric", s.handleRubric)
		r.Post("/evaluations", s.handleEvaluate)
		r.Post("/evaluations/upload", s.handleUpload)
		r.Post("/evaluations/audio", s.handleAudio)
	})
	r.Get("/ws/evaluate", s.handleStream)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) readinessChecks() map[string]observability.HealthCheckFunc {
	checks := map[string]observability.HealthCheckFunc{
		"sentiment": func(ctx context.Context) (bool, error) {
			if err := sentiment.Check(s.evaluator.Analyzer()); err != nil {
				return false, err
			}
			return true, nil
		},
	}
	if s.transcriber != nil {
		checks["deepgram"] = s.transcriber.Ready
	}
	return checks
}

// requestLogger attaches a correlated zerolog logger to the request context
// and logs each completed request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := observability.WithCorrelationID(middleware.GetReqID(r.Context()))
		ctx := observability.IntoContext(r.Context(), logger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	})
}
