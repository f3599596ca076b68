package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xaenox/osint-chat/internal/models"
)

// ParseError reports why model output could not be turned into a record.
type ParseError struct {
	Stage string // extract, decode or validate
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	openFenceRe  = regexp.MustCompile("(?m)^\\s*```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?")
	closeFenceRe = regexp.MustCompile("(?m)\\s*```[ \\t]*$")
	// An object whose members nest at most one level deep.
	objectRe = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// ExtractJSON strips code fences and, when the remainder is not a clean JSON
// object, returns the first object-looking span inside it.
func ExtractJSON(raw string) (string, error) {
	content := openFenceRe.ReplaceAllString(raw, "")
	content = closeFenceRe.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	if isObject(content) {
		return content, nil
	}
	if span := objectRe.FindString(content); span != "" {
		return span, nil
	}
	return "", &ParseError{Stage: "extract", Err: errors.New("no JSON object found in response")}
}

func isObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

// Decode extracts the JSON payload from raw and strictly decodes it into v.
func Decode(raw string, v any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &ParseError{Stage: "decode", Err: err}
	}
	return nil
}

type riskPayload struct {
	RiskScore    *float64 `json:"risk_score"`
	IsSuspicious *bool    `json:"is_suspicious"`
	RiskLevel    *string  `json:"risk_level"`
	Indicators   []string `json:"indicators"`
	Explanation  string   `json:"explanation"`
}

// ParseRiskAssessment turns model output into a RiskAssessment. username and
// totalAccounts always come from the caller, never from the model. On error
// the returned record is the parse fallback.
func ParseRiskAssessment(raw, username string, totalAccounts int) (models.RiskAssessment, error) {
	var p riskPayload
	if err := Decode(raw, &p); err != nil {
		return parseFallback(username, totalAccounts, err), err
	}

	level, err := validateRisk(p)
	if err != nil {
		return parseFallback(username, totalAccounts, err), err
	}

	indicators := p.Indicators
	if indicators == nil {
		indicators = []string{}
	}
	return models.RiskAssessment{
		Username:      username,
		RiskScore:     *p.RiskScore,
		IsSuspicious:  *p.IsSuspicious,
		RiskLevel:     level,
		Indicators:    indicators,
		Explanation:   p.Explanation,
		TotalAccounts: totalAccounts,
	}, nil
}

func validateRisk(p riskPayload) (models.RiskLevel, error) {
	switch {
	case p.RiskScore == nil:
		return "", &ParseError{Stage: "validate", Err: errors.New("missing risk_score")}
	case p.IsSuspicious == nil:
		return "", &ParseError{Stage: "validate", Err: errors.New("missing is_suspicious")}
	case p.RiskLevel == nil:
		return "", &ParseError{Stage: "validate", Err: errors.New("missing risk_level")}
	}
	if err := checkScore(*p.RiskScore); err != nil {
		return "", err
	}
	level, ok := models.ParseRiskLevel(*p.RiskLevel)
	if !ok {
		return "", &ParseError{Stage: "validate", Err: fmt.Errorf("unknown risk_level %q", *p.RiskLevel)}
	}
	return level, nil
}

type platformPayload struct {
	Platform  string   `json:"platform"`
	Reason    string   `json:"reason"`
	RiskScore *float64 `json:"risk_score"`
}

// ParsePlatformRisk turns model output into a PlatformRiskAssessment. The
// platform name is passed through as given, even when it is not one of the
// sites supplied in the prompt.
func ParsePlatformRisk(raw string) (models.PlatformRiskAssessment, error) {
	var p platformPayload
	if err := Decode(raw, &p); err != nil {
		return models.PlatformRiskAssessment{}, err
	}
	if strings.TrimSpace(p.Platform) == "" {
		return models.PlatformRiskAssessment{}, &ParseError{Stage: "validate", Err: errors.New("missing platform")}
	}
	if p.RiskScore == nil {
		return models.PlatformRiskAssessment{}, &ParseError{Stage: "validate", Err: errors.New("missing risk_score")}
	}
	if err := checkScore(*p.RiskScore); err != nil {
		return models.PlatformRiskAssessment{}, err
	}
	return models.PlatformRiskAssessment{
		Platform:  strings.TrimSpace(p.Platform),
		Reason:    p.Reason,
		RiskScore: *p.RiskScore,
	}, nil
}

func checkScore(score float64) error {
	if score < 0 || score > 10 {
		return &ParseError{Stage: "validate", Err: fmt.Errorf("risk_score %v outside 0-10", score)}
	}
	return nil
}

const (
	parseFailureIndicator = "AI analysis produced invalid JSON"
	callFailurePrefix     = "AI error: "
	fallbackScore         = 5.0
)

func parseFallback(username string, totalAccounts int, err error) models.RiskAssessment {
	return models.RiskAssessment{
		Username:      username,
		RiskScore:     fallbackScore,
		IsSuspicious:  false,
		RiskLevel:     models.RiskMedium,
		Indicators:    []string{parseFailureIndicator},
		Explanation:   fmt.Sprintf("AI analysis failed to parse: %v", err),
		TotalAccounts: totalAccounts,
	}
}

func callFallback(username string, totalAccounts int, class string, err error) models.RiskAssessment {
	return models.RiskAssessment{
		Username:      username,
		RiskScore:     fallbackScore,
		IsSuspicious:  false,
		RiskLevel:     models.RiskMedium,
		Indicators:    []string{callFailurePrefix + class},
		Explanation:   fmt.Sprintf("Could not complete AI analysis: %v", err),
		TotalAccounts: totalAccounts,
	}
}
