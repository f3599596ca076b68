package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/osint-chat/internal/models"
)

const bareAssessment = `{"risk_score": 7.5, "is_suspicious": true, "risk_level": "High", "indicators": ["digit run", "telegram only"], "explanation": "Looks automated."}`

func TestParseRiskAssessment_DecoratedMatchesBare(t *testing.T) {
	want, err := ParseRiskAssessment(bareAssessment, "bob123", 4)
	require.NoError(t, err)

	decorations := map[string]string{
		"json fence":         "```json\n" + bareAssessment + "\n```",
		"plain fence":        "```\n" + bareAssessment + "\n```",
		"leading prose":      "Here is my analysis:\n" + bareAssessment,
		"trailing prose":     bareAssessment + "\nLet me know if you need more.",
		"fence and prose":    "Sure! Here you go.\n```json\n" + bareAssessment + "\n```\nHope this helps.",
		"surrounding spaces": "\n\n   " + bareAssessment + "   \n",
	}

	for name, raw := range decorations {
		t.Run(name, func(t *testing.T) {
			got, err := ParseRiskAssessment(raw, "bob123", 4)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseRiskAssessment_CallerFieldsWin(t *testing.T) {
	raw := `{"username": "someone_else", "total_accounts": 99, "risk_score": 2, "is_suspicious": false, "risk_level": "low", "indicators": [], "explanation": "fine"}`

	got, err := ParseRiskAssessment(raw, "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 3, got.TotalAccounts)
	assert.Equal(t, models.RiskLow, got.RiskLevel)
	assert.Equal(t, []string{}, got.Indicators)
}

func TestParseRiskAssessment_NestedObject(t *testing.T) {
	raw := `Result: {"risk_score": 3.2, "is_suspicious": false, "risk_level": "Low", "indicators": ["ok"], "explanation": "x", "meta": {"model": "m"}} done`

	got, err := ParseRiskAssessment(raw, "eve", 1)
	require.NoError(t, err)
	assert.Equal(t, 3.2, got.RiskScore)
}

func TestParseRiskAssessment_Fallback(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantStage string
	}{
		{"truncated", `{"risk_score": 7.5, "is_suspicious": tr`, "extract"},
		{"no json", "I cannot help with that.", "extract"},
		{"empty", "", "extract"},
		{"wrong type", `{"risk_score": "high", "is_suspicious": true, "risk_level": "High"}`, "decode"},
		{"missing score", `{"is_suspicious": true, "risk_level": "High"}`, "validate"},
		{"missing level", `{"risk_score": 4, "is_suspicious": true}`, "validate"},
		{"score out of range", `{"risk_score": 42, "is_suspicious": true, "risk_level": "High"}`, "validate"},
		{"unknown level", `{"risk_score": 4, "is_suspicious": true, "risk_level": "Spicy"}`, "validate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRiskAssessment(tt.raw, "mallory", 6)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantStage, perr.Stage)

			assert.Equal(t, 5.0, got.RiskScore)
			assert.Equal(t, models.RiskMedium, got.RiskLevel)
			assert.False(t, got.IsSuspicious)
			assert.Equal(t, []string{parseFailureIndicator}, got.Indicators)
			assert.Equal(t, "mallory", got.Username)
			assert.Equal(t, 6, got.TotalAccounts)
			assert.Contains(t, got.Explanation, "failed to parse")
		})
	}
}

func TestParsePlatformRisk(t *testing.T) {
	got, err := ParsePlatformRisk("```json\n{\"platform\": \"Telegram\", \"reason\": \"scams\", \"risk_score\": 8}\n```")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformRiskAssessment{Platform: "Telegram", Reason: "scams", RiskScore: 8}, got)

	_, err = ParsePlatformRisk(`{"reason": "no name", "risk_score": 8}`)
	assert.Error(t, err)

	_, err = ParsePlatformRisk(`{"platform": "X", "reason": "r"}`)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)

	got, err = ExtractJSON(`noise {"a": {"b": 2}} more {"c": 3}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 2}}`, got)
}
