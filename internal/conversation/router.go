// Package conversation routes a single chat turn: it classifies the query,
// resolves the target username and dispatches to the intent's handler.
package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/classifier"
	"github.com/xaenox/osint-chat/internal/extractor"
	"github.com/xaenox/osint-chat/internal/metrics"
	"github.com/xaenox/osint-chat/internal/models"
	"github.com/xaenox/osint-chat/internal/search"
)

// DefaultListLimit caps how many found sites an investigation lists unless
// the user asks to see all of them.
const DefaultListLimit = 10

// Analyst is the AI side of the pipeline. Its methods never fail; they
// return fallback records instead.
type Analyst interface {
	Configured() bool
	AssessSuspicion(ctx context.Context, username string, sites []models.FoundSite) models.RiskAssessment
	HighestRiskPlatform(ctx context.Context, username string, sites []models.FoundSite) models.PlatformRiskAssessment
	GenerateReport(ctx context.Context, username string, sites []models.FoundSite, assessment *models.RiskAssessment) models.Report
}

// Router handles one turn at a time. It holds no per-conversation state, so
// one Router serves any number of concurrent conversations.
type Router struct {
	classifier classifier.Classifier
	extractor  *extractor.Extractor
	searcher   search.Searcher
	analyst    Analyst
	logger     *zap.Logger
	metrics    *metrics.ChatMetrics
	listLimit  int
	now        func() time.Time
}

type Option func(*Router)

func WithClassifier(c classifier.Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(r *Router) { r.metrics = m }
}

func WithListLimit(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.listLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

func NewRouter(searcher search.Searcher, analyst Analyst, logger *zap.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		classifier: classifier.NewKeywordClassifier(),
		extractor:  extractor.New(),
		searcher:   searcher,
		analyst:    analyst,
		logger:     logger,
		listLimit:  DefaultListLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// turn is what an intent handler produces.
type turn struct {
	text    string
	data    any
	context models.ConversationContext
}

// Handle routes one query. It always returns a well-formed response; missing
// usernames, missing configuration and upstream failures become reply text.
func (r *Router) Handle(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	q := models.Query{ID: uuid.NewString(), Text: req.Query, ReceivedAt: r.now()}
	in := models.ConversationContext{LastUsername: req.LastUsername}
	intent := r.classifier.Classify(q.Text)
	r.metrics.ObserveQuery(string(intent))

	logger := r.logger.With(zap.String("query_id", q.ID), zap.String("intent", string(intent)))
	logger.Debug("Routing query", zap.String("last_username", in.LastUsername))

	var out turn
	switch intent {
	case models.IntentInvestigation:
		out = r.investigate(ctx, logger, q, in)
	case models.IntentIntelligence:
		out = r.intelligence(ctx, logger, q, in)
	case models.IntentAnalysis:
		out = r.analysis(ctx, logger, q, in)
	case models.IntentReporting:
		out = r.reporting(ctx, logger, q, in)
	case models.IntentGeneral:
		out = r.general(in)
	default:
		logger.Error("Unhandled intent")
		intent = models.IntentGeneral
		out = r.general(in)
	}

	return models.ChatResponse{
		Query:          q.Text,
		Response:       out.text,
		QueryType:      intent,
		Timestamp:      q.ReceivedAt.UTC().Format(time.RFC3339),
		Data:           out.data,
		LastUsername:   out.context.LastUsername,
		ConversationID: req.ConversationID,
	}
}

// resolveUsername extracts a username from text, falling back to the carried
// context only when useContext is set.
func (r *Router) resolveUsername(text string, in models.ConversationContext, useContext bool) (string, bool) {
	if username, ok := r.extractor.Extract(text); ok {
		return username, true
	}
	if useContext && in.LastUsername != "" {
		return in.LastUsername, true
	}
	return "", false
}

func (r *Router) search(ctx context.Context, logger *zap.Logger, username string) ([]models.FoundSite, error) {
	start := time.Now()
	sites, err := r.searcher.Search(ctx, username)
	status := "ok"
	if err != nil {
		status = "error"
		logger.Error("Search failed", zap.Error(err), zap.String("username", username))
	}
	r.metrics.ObserveSearch(status, time.Since(start).Seconds())
	return sites, err
}
