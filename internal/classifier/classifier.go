package classifier

import (
	"strings"

	"github.com/xaenox/osint-chat/internal/models"
)

type Classifier interface {
	Classify(text string) models.Intent
}

type rule struct {
	intent   models.Intent
	keywords []string
}

// KeywordClassifier picks the first intent, in priority order, whose keyword
// set has a member contained in the lower-cased text. Containment is plain
// substring matching, so a keyword inside a longer word still counts.
type KeywordClassifier struct {
	rules []rule
}

// Keyword sets overlap on purpose ("analyze" is both intelligence and
// analysis); the order of rules decides.
var defaultRules = []rule{
	{
		intent: models.IntentInvestigation,
		keywords: []string{
			"find", "search", "locate", "look up", "lookup", "accounts",
			"investigate", "track", "where is", "profiles",
		},
	},
	{
		intent: models.IntentIntelligence,
		keywords: []string{
			"suspicious", "risk", "threat", "fraud", "scam", "danger",
			"malicious", "trust", "safe", "analyze", "intel",
		},
	},
	{
		intent: models.IntentAnalysis,
		keywords: []string{
			"analyze", "analyse", "analysis", "assess", "evaluate", "score",
			"examine", "pattern", "behavio",
		},
	},
	{
		intent: models.IntentReporting,
		keywords: []string{
			"report", "summary", "summarize", "summarise", "document",
			"write up", "brief",
		},
	},
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultRules}
}

// Classify is total: text that matches no keyword set is general.
func (c *KeywordClassifier) Classify(text string) models.Intent {
	content := strings.ToLower(text)
	for _, r := range c.rules {
		for _, keyword := range r.keywords {
			if strings.Contains(content, keyword) {
				return r.intent
			}
		}
	}
	return models.IntentGeneral
}

// Keywords returns a copy of the keyword set for intent.
func (c *KeywordClassifier) Keywords(intent models.Intent) []string {
	for _, r := range c.rules {
		if r.intent == intent {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}

// AsksHighestRiskPlatform reports whether an intelligence query asks which
// single platform is the riskiest, rather than for an overall assessment.
func AsksHighestRiskPlatform(text string) bool {
	content := strings.ToLower(text)
	for _, phrase := range []string{"highest risk", "most risk", "riskiest", "most dangerous"} {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return strings.Contains(content, "which platform") && strings.Contains(content, "risk")
}
