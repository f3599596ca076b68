package models

import "strings"

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
	RiskUnknown  RiskLevel = "Unknown"
)

// ParseRiskLevel matches s case-insensitively against the known levels.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for _, l := range []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical, RiskUnknown} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, true
		}
	}
	return RiskUnknown, false
}

// RiskAssessment is the suspicion score of a username across its found sites.
// TotalAccounts always equals the number of sites the assessment was made from.
type RiskAssessment struct {
	Username      string    `json:"username"`
	RiskScore     float64   `json:"risk_score"`
	IsSuspicious  bool      `json:"is_suspicious"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Indicators    []string  `json:"indicators"`
	Explanation   string    `json:"explanation"`
	TotalAccounts int       `json:"total_accounts"`
}

// PlatformRiskAssessment names the single riskiest platform for a username.
type PlatformRiskAssessment struct {
	Platform  string  `json:"platform"`
	Reason    string  `json:"reason"`
	RiskScore float64 `json:"risk_score"`
}

// Report is a formatted, multi-section investigation report.
type Report struct {
	Text string `json:"text"`
}
