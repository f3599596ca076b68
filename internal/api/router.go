package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/analyzer"
	apimiddleware "github.com/xaenox/osint-chat/internal/api/middleware"
	"github.com/xaenox/osint-chat/internal/models"
	"github.com/xaenox/osint-chat/internal/storage"
)

// requestTimeout bounds a whole chat turn: a search plus up to two
// generation calls.
const requestTimeout = 3 * time.Minute

// ChatHandler answers one conversational turn.
type ChatHandler interface {
	Handle(ctx context.Context, req models.ChatRequest) models.ChatResponse
}

// StatusReporter reports AI availability.
type StatusReporter interface {
	Status() analyzer.Status
}

type Config struct {
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
}

// Router holds dependencies for the API router
type Router struct {
	config Config
	chat   ChatHandler
	status StatusReporter
	store  storage.Storage
	logger *zap.Logger
}

func NewRouter(cfg Config, chat ChatHandler, status StatusReporter, store storage.Storage, logger *zap.Logger) *Router {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		config: cfg,
		chat:   chat,
		status: status,
		store:  store,
		logger: logger.Named("api"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", r.health)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.config.Gatherer, promhttp.HandlerOpts{}))

	router.Route("/api", func(api chi.Router) {
		api.Post("/chat", r.handleChat)
		api.Get("/ai/status", r.aiStatus)
	})

	return router
}
