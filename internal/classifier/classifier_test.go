package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/osint-chat/internal/models"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Intent
	}{
		{"find accounts", "Find all accounts of alice_2024", models.IntentInvestigation},
		{"suspicious", "Is bob123 suspicious?", models.IntentIntelligence},
		{"highest risk", "Which platform has the highest risk for bob?", models.IntentIntelligence},
		{"analysis", "Give me an analysis of carol", models.IntentAnalysis},
		{"score", "score for dave", models.IntentAnalysis},
		{"report", "report", models.IntentReporting},
		{"summary", "Write a summary on erin", models.IntentReporting},
		{"general", "hello there", models.IntentGeneral},
		{"empty", "", models.IntentGeneral},
		{"case insensitive", "SEARCH FOR FRANK", models.IntentInvestigation},
		{"investigation beats intelligence", "search whether eve is suspicious", models.IntentInvestigation},
		{"intelligence beats analysis on analyze", "analyze grace", models.IntentIntelligence},
		{"analysis beats reporting", "assess heidi and report back", models.IntentAnalysis},
		{"substring match inside longer word", "she is unsafe", models.IntentIntelligence},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestKeywordClassifier_PriorityAcrossEverySet(t *testing.T) {
	c := NewKeywordClassifier()
	priority := []models.Intent{
		models.IntentInvestigation,
		models.IntentIntelligence,
		models.IntentAnalysis,
		models.IntentReporting,
	}

	for i, higher := range priority {
		for _, lower := range priority[i+1:] {
			for _, hk := range c.Keywords(higher) {
				if c.Classify(hk) != higher {
					// shared with an even earlier set, e.g. "analyze"
					continue
				}
				for _, lk := range c.Keywords(lower) {
					text := hk + " " + lk
					assert.Equal(t, higher, c.Classify(text), text)
				}
			}
		}
	}
}

func TestKeywordClassifier_Total(t *testing.T) {
	c := NewKeywordClassifier()
	for _, text := range []string{"", "   ", "???", "12345", "héllo wörld", "\n\t"} {
		got := c.Classify(text)
		assert.Contains(t, models.Intents, got)
	}
}

func TestAsksHighestRiskPlatform(t *testing.T) {
	assert.True(t, AsksHighestRiskPlatform("Which platform has highest risk for bob?"))
	assert.True(t, AsksHighestRiskPlatform("what is the riskiest site for bob"))
	assert.True(t, AsksHighestRiskPlatform("which platform is a risk"))
	assert.False(t, AsksHighestRiskPlatform("Is bob suspicious?"))
	assert.False(t, AsksHighestRiskPlatform("which platform is bob on"))
}
