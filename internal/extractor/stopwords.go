package extractor

import "strings"

// StopWordsVersion identifies the stop-word list below. Bump it whenever the
// list changes so extraction differences can be traced to a list revision.
const StopWordsVersion = 3

// stopWords are never returned as a username: common English function words
// plus the verbs and nouns users wrap around a username.
var stopWords = toSet(
	// function words
	"a", "an", "the", "of", "for", "on", "in", "at", "to", "by", "from", "with",
	"about", "and", "or", "but", "is", "are", "was", "were", "be", "been", "am",
	"do", "does", "did", "has", "have", "had", "it", "its", "this", "that",
	"these", "those", "there", "here", "what", "which", "who", "whom", "whose",
	"where", "when", "why", "how", "me", "my", "mine", "you", "your", "he",
	"she", "him", "her", "they", "them", "their", "we", "us", "our", "i",
	"can", "could", "would", "should", "will", "shall", "may", "might", "must",
	"please", "any", "some", "all", "every", "each", "more", "most", "much",
	"many", "also", "just", "only", "not", "no", "yes", "if", "then", "than",
	"so", "very", "too", "up", "out", "into", "over", "under", "again", "now",
	"hi", "hello", "hey", "thanks", "thank", "ok", "okay",
	// domain verbs
	"find", "search", "locate", "look", "lookup", "investigate", "track",
	"show", "list", "display", "analyze", "analyse", "check", "assess",
	"evaluate", "examine", "report", "generate", "create", "make", "give",
	"tell", "get", "run", "scan", "score", "summarize", "explain",
	// domain nouns and adjectives
	"user", "username", "usernames", "account", "accounts", "profile",
	"profiles", "platform", "platforms", "site", "sites", "social", "media",
	"online", "presence", "person", "someone", "somebody", "people",
	"risk", "risky", "riskiest", "highest", "high", "low", "level",
	"suspicious", "suspicion", "threat", "threats", "fraud", "scam", "safe",
	"dangerous", "malicious", "fake", "legit", "analysis", "assessment",
	"intelligence", "intel", "summary", "details", "detail", "info",
	"information", "full", "complete", "detailed", "result", "results",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether word (any case) is on the stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
