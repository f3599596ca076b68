// Package extractor pulls a candidate username out of free text.
//
// Extraction runs an ordered chain of strategies, most specific first. The
// first strategy that yields a token which is not a stop word wins. Every
// username returned is lower-cased.
package extractor

import (
	"regexp"
	"strings"
)

// Strategy is one precedence level of the extraction chain. Match receives
// the lower-cased text and the original text.
type Strategy struct {
	Name  string
	Match func(lower, original string) (string, bool)
}

// Extractor applies its strategies in order.
type Extractor struct {
	strategies []Strategy
}

// New returns an Extractor using DefaultStrategies.
func New() *Extractor {
	return &Extractor{strategies: DefaultStrategies()}
}

// NewWithStrategies returns an Extractor using the given chain.
func NewWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract returns the lower-cased username found in text, or false when no
// strategy matched and the caller has to fall back to conversation context.
func (e *Extractor) Extract(text string) (string, bool) {
	username, _, ok := e.ExtractWithStrategy(text)
	return username, ok
}

// ExtractWithStrategy is Extract plus the name of the strategy that matched.
func (e *Extractor) ExtractWithStrategy(text string) (username, strategy string, ok bool) {
	lower := strings.ToLower(text)
	for _, s := range e.strategies {
		if username, ok := s.Match(lower, text); ok {
			return username, s.Name, true
		}
	}
	return "", "", false
}

const token = `@?([a-z0-9_-]+)`

// DefaultStrategies is the production chain.
func DefaultStrategies() []Strategy {
	return []Strategy{
		patternStrategy("domain_phrase", 1,
			`\baccounts?\s+of\s+`+token,
			`\baccounts?\s+(?:for|belonging\s+to)\s+`+token,
			`\bsearch(?:ing)?\s+(?:for\s+)?(?:user(?:name)?\s+)?`+token,
			`\b(?:find|locate|look\s*up|investigate|track)\s+(?:user(?:name)?\s+)?`+token,
		),
		patternStrategy("is_suspicious", 1,
			`\bis\s+`+token+`\s+(?:suspicious|risky)`,
		),
		patternStrategy("action_target", 1,
			`\b(?:show|analy[sz]e|check|assess|evaluate|examine)\s+(?:user(?:name)?\s+)?`+token,
			`\b(?:report|score|analysis|assessment)\s+(?:for|on|of)\s+`+token,
		),
		patternStrategy("preposition", 3,
			`\b(?:for|of)\s+`+token,
		),
		{Name: "trailing_token", Match: trailingToken},
	}
}

// patternStrategy tries each pattern in order and, within a pattern, each
// match left to right, skipping stop words and tokens shorter than minLen.
func patternStrategy(name string, minLen int, patterns ...string) Strategy {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return Strategy{
		Name: name,
		Match: func(lower, _ string) (string, bool) {
			for _, re := range compiled {
				for _, m := range re.FindAllStringSubmatch(lower, -1) {
					if acceptable(m[1], minLen) {
						return m[1], true
					}
				}
			}
			return "", false
		},
	}
}

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// trailingToken walks the original tokens from the end and returns the first
// identifier-shaped one that is at least three characters and not a stop word.
func trailingToken(_, original string) (string, bool) {
	fields := strings.Fields(original)
	for i := len(fields) - 1; i >= 0; i-- {
		tok := strings.Trim(fields[i], `.,!?;:"'()[]{}<>`)
		tok = strings.TrimPrefix(tok, "@")
		if !identifierRe.MatchString(tok) {
			continue
		}
		if candidate := strings.ToLower(tok); acceptable(candidate, 3) {
			return candidate, true
		}
	}
	return "", false
}

func acceptable(tok string, minLen int) bool {
	return len(tok) >= minLen && !IsStopWord(tok)
}
