package analyzer

import (
	"fmt"
	"strings"

	"github.com/xaenox/osint-chat/internal/models"
)

// Platform caps keep prompts within a predictable token budget.
const (
	scoringPlatformCap = 30
	reportPlatformCap  = 20
)

const (
	scoringSystemPrompt  = "You are a cybersecurity risk analyst. Respond ONLY with valid JSON. No markdown, no code blocks, no text outside the JSON object."
	platformSystemPrompt = "You are a cybersecurity analyst. Respond ONLY with valid JSON."
	reportSystemPrompt   = "You are a professional cybersecurity analyst writing investigation reports."
)

func suspicionPrompt(username string, sites []models.FoundSite) string {
	return fmt.Sprintf(`You are a cybersecurity expert specializing in social media threat analysis and digital forensics.

Assess this username for suspicious activity and security risk:

**Username:** %s
**Total Accounts Found:** %d
**Platforms:** %s

Weigh the following:
1. Username patterns (random characters, digit runs, suspicious keywords)
2. Concentration on high-risk platforms (e.g. Telegram, Discord)
3. Account count (unusually many or unusually few accounts)
4. Platform diversity (genuine users tend to have a varied presence)
5. Common fraud indicators

Respond with ONLY a JSON object of this shape:
{
  "risk_score": <float 0-10>,
  "is_suspicious": <boolean>,
  "risk_level": "<Low|Medium|High|Critical>",
  "indicators": ["specific indicator", "..."],
  "explanation": "2-3 sentence professional assessment"
}`, username, len(sites), strings.Join(models.SiteNames(sites, scoringPlatformCap), ", "))
}

func platformPrompt(username string, sites []models.FoundSite) string {
	return fmt.Sprintf(`You are a cybersecurity expert ranking social media platforms by risk.

**Username:** %s
**Platforms Found:** %s

Pick the single platform from the list above that poses the HIGHEST security risk for this user and explain why.

Consider:
- Platform security features
- Use in scams and fraud
- Privacy concerns
- Impersonation potential
- The platform's security track record

Respond with ONLY a JSON object:
{
  "platform": "<exact platform name from the list>",
  "reason": "specific reason this platform is the highest risk",
  "risk_score": <float 0-10 for this platform>
}`, username, strings.Join(models.SiteNames(sites, scoringPlatformCap), ", "))
}

func reportPrompt(username string, sites []models.FoundSite, a models.RiskAssessment) string {
	return fmt.Sprintf(`You are a cybersecurity analyst writing a professional investigation report.

Write a risk assessment report for:

**Username:** %s
**Accounts Found:** %d
**Platforms:** %s
**Risk Score:** %.1f/10
**Risk Level:** %s

The report must contain these sections:
1. Executive Summary (2-3 sentences)
2. Key Findings (3-4 bullet points)
3. Platform Analysis (brief overview)
4. Risk Indicators (specific concerns)
5. Recommendations (2-3 actionable items)

Keep it concise and professional, with clearly headed sections.`,
		username, len(sites), strings.Join(models.SiteNames(sites, reportPlatformCap), ", "),
		a.RiskScore, riskLevelOrUnknown(a.RiskLevel))
}

func riskLevelOrUnknown(l models.RiskLevel) models.RiskLevel {
	if l == "" {
		return models.RiskUnknown
	}
	return l
}

// fallbackReport is built locally when report generation fails.
func fallbackReport(username string, sites []models.FoundSite, a models.RiskAssessment, at string) string {
	explanation := a.Explanation
	if explanation == "" {
		explanation = "Analysis incomplete"
	}
	level := riskLevelOrUnknown(a.RiskLevel)

	var b strings.Builder
	b.WriteString("RISK ASSESSMENT REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Username: %s\nDate: %s\n\n", username, at)
	b.WriteString("EXECUTIVE SUMMARY\n-----------------\n")
	fmt.Fprintf(&b, "Analysis of username '%s' across %d platforms.\n", username, len(sites))
	fmt.Fprintf(&b, "Risk Score: %.1f/10\nRisk Level: %s\n\n", a.RiskScore, level)
	b.WriteString("KEY FINDINGS\n------------\n")
	fmt.Fprintf(&b, "• Total accounts found: %d\n", len(sites))
	fmt.Fprintf(&b, "• Risk assessment: %s\n", level)
	fmt.Fprintf(&b, "• %s\n", explanation)
	if len(a.Indicators) > 0 {
		b.WriteString("\nRISK INDICATORS\n---------------\n")
		for _, ind := range a.Indicators {
			fmt.Fprintf(&b, "• %s\n", ind)
		}
	}
	b.WriteString("\nRECOMMENDATIONS\n---------------\n")
	b.WriteString("• Monitor account activity across platforms\n")
	b.WriteString("• Verify account authenticity\n")
	b.WriteString("• Review security settings\n\n")
	b.WriteString("Note: AI report generation encountered an error.")
	return b.String()
}
