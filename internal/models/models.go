package models

import "time"

// Intent is the closed category a query is routed to.
type Intent string

const (
	IntentInvestigation Intent = "investigation"
	IntentIntelligence  Intent = "intelligence"
	IntentAnalysis      Intent = "analysis"
	IntentReporting     Intent = "reporting"
	IntentGeneral       Intent = "general"
)

// Intents lists every intent in classification priority order, general last.
var Intents = []Intent{
	IntentInvestigation,
	IntentIntelligence,
	IntentAnalysis,
	IntentReporting,
	IntentGeneral,
}

// Query is a single user utterance as received.
type Query struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// ConversationContext is the state carried between turns of one conversation.
// An empty LastUsername means no username has been resolved yet.
type ConversationContext struct {
	LastUsername string `json:"last_username,omitempty"`
}

// FoundSite is a platform where the username is claimed.
type FoundSite struct {
	Site      string  `json:"site"`
	URL       string  `json:"url"`
	QueryTime float64 `json:"query_time,omitempty"`
}

// SiteNames returns the site names of at most limit entries, in order.
func SiteNames(sites []FoundSite, limit int) []string {
	if limit <= 0 || limit > len(sites) {
		limit = len(sites)
	}
	names := make([]string, 0, limit)
	for _, s := range sites[:limit] {
		names = append(names, s.Site)
	}
	return names
}
