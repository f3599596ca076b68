package analyzer

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/metrics"
	"github.com/xaenox/osint-chat/internal/models"
)

const (
	opAssessSuspicion = "assess_suspicion"
	opHighestRisk     = "highest_risk_platform"
	opGenerateReport  = "generate_report"

	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 30 * time.Second
)

type params struct {
	temperature float32
	topP        float32
	maxTokens   int
}

var (
	scoringParams  = params{temperature: 0.3, topP: 0.9, maxTokens: 500}
	platformParams = params{temperature: 0.3, maxTokens: 300}
	reportParams   = params{temperature: 0.4, maxTokens: 800}
)

// Status describes whether AI-backed answers are available.
type Status struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

type describer interface {
	Model() string
	Provider() string
}

// RiskAnalyzer composes prompts for risk scoring, platform triage and report
// writing, and turns whatever comes back into well-typed records. It never
// returns an error: every failure becomes a fallback record.
type RiskAnalyzer struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.ChatMetrics
	now     func() time.Time
}

type Option func(*RiskAnalyzer)

func WithTimeout(d time.Duration) Option {
	return func(a *RiskAnalyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(a *RiskAnalyzer) { a.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(a *RiskAnalyzer) { a.now = now }
}

// NewRiskAnalyzer accepts a nil generator; the analyzer then reports itself
// as not configured.
func NewRiskAnalyzer(gen Generator, logger *zap.Logger, opts ...Option) *RiskAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &RiskAnalyzer{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *RiskAnalyzer) Configured() bool {
	return a != nil && a.gen != nil
}

func (a *RiskAnalyzer) Status() Status {
	if !a.Configured() {
		return Status{}
	}
	st := Status{Configured: true}
	if d, ok := a.gen.(describer); ok {
		st.Provider = d.Provider()
		st.Model = d.Model()
	}
	return st
}

func (a *RiskAnalyzer) complete(ctx context.Context, system, prompt string, p params) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.gen.Complete(ctx, CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: p.temperature,
		TopP:        p.topP,
		MaxTokens:   p.maxTokens,
	})
}

// AssessSuspicion scores how suspicious username looks given where it was found.
func (a *RiskAnalyzer) AssessSuspicion(ctx context.Context, username string, sites []models.FoundSite) models.RiskAssessment {
	if len(sites) == 0 {
		a.metrics.ObserveGeneration(opAssessSuspicion, metrics.OutcomeShortCircuit)
		return models.RiskAssessment{
			Username:      username,
			RiskScore:     0,
			IsSuspicious:  false,
			RiskLevel:     models.RiskUnknown,
			Indicators:    []string{"No accounts found"},
			Explanation:   fmt.Sprintf("No accounts found for username '%s'. Cannot perform risk analysis.", username),
			TotalAccounts: 0,
		}
	}

	raw, err := a.complete(ctx, scoringSystemPrompt, suspicionPrompt(username, sites), scoringParams)
	if err != nil {
		class := FailureClass(err)
		a.logger.Warn("Failed to get risk assessment",
			zap.Error(err),
			zap.String("username", username),
			zap.String("failure", class))
		a.metrics.ObserveGeneration(opAssessSuspicion, metrics.OutcomeCallFallback)
		return callFallback(username, len(sites), class, err)
	}

	assessment, err := ParseRiskAssessment(raw, username, len(sites))
	if err != nil {
		a.logger.Warn("Failed to parse risk assessment",
			zap.Error(err),
			zap.String("username", username),
			zap.String("response", truncate(raw, 500)))
		a.metrics.ObserveGeneration(opAssessSuspicion, metrics.OutcomeParseFallback)
		return assessment
	}

	a.metrics.ObserveGeneration(opAssessSuspicion, metrics.OutcomeOK)
	return assessment
}

// HighestRiskPlatform asks which single found platform is the riskiest.
func (a *RiskAnalyzer) HighestRiskPlatform(ctx context.Context, username string, sites []models.FoundSite) models.PlatformRiskAssessment {
	if len(sites) == 0 {
		a.metrics.ObserveGeneration(opHighestRisk, metrics.OutcomeShortCircuit)
		return models.PlatformRiskAssessment{
			Platform:  "None",
			Reason:    "No accounts found",
			RiskScore: 0,
		}
	}

	raw, err := a.complete(ctx, platformSystemPrompt, platformPrompt(username, sites), platformParams)
	outcome := metrics.OutcomeCallFallback
	if err == nil {
		var result models.PlatformRiskAssessment
		if result, err = ParsePlatformRisk(raw); err == nil {
			if !containsSite(sites, result.Platform) {
				a.logger.Warn("Model named a platform outside the found sites",
					zap.String("username", username),
					zap.String("platform", result.Platform))
			}
			a.metrics.ObserveGeneration(opHighestRisk, metrics.OutcomeOK)
			return result
		}
		outcome = metrics.OutcomeParseFallback
	}

	a.logger.Warn("Failed to get highest risk platform",
		zap.Error(err),
		zap.String("username", username),
		zap.String("outcome", outcome))
	a.metrics.ObserveGeneration(opHighestRisk, outcome)

	reason := fmt.Sprintf("AI analysis unavailable (%s): %v", FailureClass(err), err)
	if outcome == metrics.OutcomeParseFallback {
		reason = fmt.Sprintf("AI analysis produced invalid JSON: %v", err)
	}
	return models.PlatformRiskAssessment{
		Platform:  sites[0].Site,
		Reason:    reason,
		RiskScore: fallbackScore,
	}
}

// GenerateReport writes a narrative report. When assessment is nil it is
// computed first. A report is always returned.
func (a *RiskAnalyzer) GenerateReport(ctx context.Context, username string, sites []models.FoundSite, assessment *models.RiskAssessment) models.Report {
	if assessment == nil {
		computed := a.AssessSuspicion(ctx, username, sites)
		assessment = &computed
	}

	text, err := a.complete(ctx, reportSystemPrompt, reportPrompt(username, sites, *assessment), reportParams)
	if err == nil && text == "" {
		err = errEmptyCompletion
	}
	if err != nil {
		a.logger.Warn("Failed to generate report",
			zap.Error(err),
			zap.String("username", username),
			zap.String("failure", FailureClass(err)))
		a.metrics.ObserveGeneration(opGenerateReport, metrics.OutcomeCallFallback)
		at := a.now().Format("2006-01-02 15:04:05")
		return models.Report{Text: fallbackReport(username, sites, *assessment, at)}
	}

	a.metrics.ObserveGeneration(opGenerateReport, metrics.OutcomeOK)
	return models.Report{Text: text}
}

func containsSite(sites []models.FoundSite, name string) bool {
	for _, s := range sites {
		if s.Site == name {
			return true
		}
	}
	return false
}

// truncate keeps at most n bytes of s without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
