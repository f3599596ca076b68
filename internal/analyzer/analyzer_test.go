package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/metrics"
	"github.com/xaenox/osint-chat/internal/models"
)

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	requests []CompletionRequest
}

func (s *stubGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func sitesNamed(n int) []models.FoundSite {
	sites := make([]models.FoundSite, n)
	for i := range sites {
		sites[i] = models.FoundSite{
			Site: fmt.Sprintf("Site%02d", i),
			URL:  fmt.Sprintf("https://site%02d.example/user", i),
		}
	}
	return sites
}

func TestAssessSuspicion_NoSitesSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{response: bareAssessment}
	a := NewRiskAnalyzer(gen, zap.NewNop())

	got := a.AssessSuspicion(context.Background(), "ghost", nil)

	assert.Equal(t, 0, gen.calls())
	assert.Equal(t, 0.0, got.RiskScore)
	assert.False(t, got.IsSuspicious)
	assert.Equal(t, 0, got.TotalAccounts)
	assert.Equal(t, models.RiskUnknown, got.RiskLevel)
}

func TestAssessSuspicion_Success(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + bareAssessment + "\n```"}
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	a := NewRiskAnalyzer(gen, zap.NewNop(), WithMetrics(m))

	got := a.AssessSuspicion(context.Background(), "bob123", sitesNamed(45))

	require.Equal(t, 1, gen.calls())
	assert.Equal(t, 7.5, got.RiskScore)
	assert.Equal(t, models.RiskHigh, got.RiskLevel)
	assert.Equal(t, 45, got.TotalAccounts)

	req := gen.requests[0]
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, scoringSystemPrompt, req.System)
	assert.Contains(t, req.Prompt, "**Total Accounts Found:** 45")
	assert.Contains(t, req.Prompt, "Site29")
	assert.NotContains(t, req.Prompt, "Site30")

	count, err := testutil.GatherAndCount(reg, "osint_chat_generation_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssessSuspicion_Fallbacks(t *testing.T) {
	tests := []struct {
		name          string
		gen           *stubGenerator
		wantIndicator string
	}{
		{
			name:          "invalid json",
			gen:           &stubGenerator{response: "risk is high, trust me"},
			wantIndicator: parseFailureIndicator,
		},
		{
			name:          "rate limited",
			gen:           &stubGenerator{err: &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}},
			wantIndicator: "AI error: rate_limited",
		},
		{
			name:          "auth",
			gen:           &stubGenerator{err: fmt.Errorf("chat completion: %w", &openai.RequestError{HTTPStatusCode: 401, Err: errors.New("bad key")})},
			wantIndicator: "AI error: auth",
		},
		{
			name:          "timeout",
			gen:           &stubGenerator{err: context.DeadlineExceeded},
			wantIndicator: "AI error: timeout",
		},
		{
			name:          "transport",
			gen:           &stubGenerator{err: errors.New("connection reset")},
			wantIndicator: "AI error: transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewRiskAnalyzer(tt.gen, zap.NewNop())
			got := a.AssessSuspicion(context.Background(), "bob", sitesNamed(3))

			assert.Equal(t, 1, tt.gen.calls())
			assert.Equal(t, 5.0, got.RiskScore)
			assert.Equal(t, models.RiskMedium, got.RiskLevel)
			assert.False(t, got.IsSuspicious)
			assert.Equal(t, 3, got.TotalAccounts)
			assert.Equal(t, []string{tt.wantIndicator}, got.Indicators)
		})
	}
}

func TestAssessSuspicion_NotConfigured(t *testing.T) {
	a := NewRiskAnalyzer(nil, zap.NewNop())

	assert.False(t, a.Configured())
	assert.Equal(t, Status{}, a.Status())

	got := a.AssessSuspicion(context.Background(), "bob", sitesNamed(2))
	assert.Equal(t, 5.0, got.RiskScore)
	assert.Equal(t, []string{"AI error: not_configured"}, got.Indicators)
}

type slowGenerator struct{}

func (slowGenerator) Complete(ctx context.Context, _ CompletionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAssessSuspicion_TimeoutCeiling(t *testing.T) {
	a := NewRiskAnalyzer(slowGenerator{}, zap.NewNop(), WithTimeout(20*time.Millisecond))

	got := a.AssessSuspicion(context.Background(), "bob", sitesNamed(1))
	assert.Equal(t, []string{"AI error: timeout"}, got.Indicators)
}

func TestHighestRiskPlatform(t *testing.T) {
	t.Run("no sites", func(t *testing.T) {
		gen := &stubGenerator{}
		a := NewRiskAnalyzer(gen, zap.NewNop())

		got := a.HighestRiskPlatform(context.Background(), "bob", nil)
		assert.Equal(t, "None", got.Platform)
		assert.Equal(t, 0.0, got.RiskScore)
		assert.Equal(t, 0, gen.calls())
	})

	t.Run("passes through unknown platform", func(t *testing.T) {
		gen := &stubGenerator{response: `{"platform": "MySpace", "reason": "legacy", "risk_score": 6.5}`}
		a := NewRiskAnalyzer(gen, zap.NewNop())

		got := a.HighestRiskPlatform(context.Background(), "bob", sitesNamed(2))
		assert.Equal(t, "MySpace", got.Platform)
		assert.Equal(t, 6.5, got.RiskScore)
		assert.Equal(t, 300, gen.requests[0].MaxTokens)
	})

	t.Run("call failure falls back to first site", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("boom")}
		a := NewRiskAnalyzer(gen, zap.NewNop())

		got := a.HighestRiskPlatform(context.Background(), "bob", sitesNamed(3))
		assert.Equal(t, "Site00", got.Platform)
		assert.Equal(t, 5.0, got.RiskScore)
		assert.Contains(t, got.Reason, "AI analysis unavailable")
		assert.Contains(t, got.Reason, "boom")
	})

	t.Run("parse failure falls back to first site", func(t *testing.T) {
		gen := &stubGenerator{response: "Telegram, obviously"}
		a := NewRiskAnalyzer(gen, zap.NewNop())

		got := a.HighestRiskPlatform(context.Background(), "bob", sitesNamed(3))
		assert.Equal(t, "Site00", got.Platform)
		assert.Equal(t, 5.0, got.RiskScore)
		assert.Contains(t, got.Reason, "invalid JSON")
	})
}

func TestGenerateReport(t *testing.T) {
	t.Run("uses supplied assessment", func(t *testing.T) {
		gen := &stubGenerator{response: "  EXECUTIVE SUMMARY\nAll good.  "}
		a := NewRiskAnalyzer(gen, zap.NewNop())
		assessment := models.RiskAssessment{RiskScore: 2, RiskLevel: models.RiskLow}

		got := a.GenerateReport(context.Background(), "carol", sitesNamed(25), &assessment)

		require.Equal(t, 1, gen.calls())
		assert.Equal(t, "  EXECUTIVE SUMMARY\nAll good.  ", got.Text)
		req := gen.requests[0]
		assert.Equal(t, float32(0.4), req.Temperature)
		assert.Equal(t, 800, req.MaxTokens)
		assert.Contains(t, req.Prompt, "Site19")
		assert.NotContains(t, req.Prompt, "Site20")
		assert.Contains(t, req.Prompt, "**Risk Level:** Low")
		for _, section := range []string{"Executive Summary", "Key Findings", "Platform Analysis", "Risk Indicators", "Recommendations"} {
			assert.Contains(t, req.Prompt, section)
		}
	})

	t.Run("computes assessment when missing", func(t *testing.T) {
		gen := &stubGenerator{response: bareAssessment}
		a := NewRiskAnalyzer(gen, zap.NewNop())

		a.GenerateReport(context.Background(), "carol", sitesNamed(2), nil)
		assert.Equal(t, 2, gen.calls())
		assert.Contains(t, gen.requests[1].Prompt, "**Risk Score:** 7.5/10")
	})

	t.Run("falls back to local template", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("unavailable")}
		fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
		a := NewRiskAnalyzer(gen, zap.NewNop(), WithClock(func() time.Time { return fixed }))
		assessment := models.RiskAssessment{RiskScore: 6, RiskLevel: models.RiskHigh, Explanation: "odd pattern", Indicators: []string{"burst"}}

		got := a.GenerateReport(context.Background(), "carol", sitesNamed(4), &assessment)

		assert.True(t, strings.HasPrefix(got.Text, "RISK ASSESSMENT REPORT"))
		assert.Contains(t, got.Text, "Date: 2026-10-16 09:30:00")
		assert.Contains(t, got.Text, "across 4 platforms")
		assert.Contains(t, got.Text, "Risk Level: High")
		assert.Contains(t, got.Text, "• odd pattern")
		assert.Contains(t, got.Text, "• burst")
		assert.Contains(t, got.Text, "AI report generation encountered an error")
	})
}

func TestFailureClass(t *testing.T) {
	assert.Equal(t, FailureCanceled, FailureClass(context.Canceled))
	assert.Equal(t, FailureEmpty, FailureClass(errEmptyCompletion))
	assert.Equal(t, FailureAPI, FailureClass(&openai.APIError{HTTPStatusCode: 500}))
	assert.Equal(t, FailureTimeout, FailureClass(&openai.APIError{HTTPStatusCode: 504}))
}

func TestStatus(t *testing.T) {
	gen, err := NewOpenAIGenerator("key", "https://api.groq.com/openai/v1", "llama-3.3-70b-versatile")
	require.NoError(t, err)

	st := NewRiskAnalyzer(gen, nil).Status()
	assert.Equal(t, Status{Configured: true, Provider: "groq", Model: "llama-3.3-70b-versatile"}, st)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	// "é" is two bytes; cutting at 2 would split it.
	got := truncate("aéb", 2)
	assert.Equal(t, "a...", got)
	assert.True(t, utf8.ValidString(got))

	long := strings.Repeat("риск ", 200)
	got = truncate(long, 500)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 503)
}
