package conversation

import (
	"fmt"
	"strings"

	"github.com/xaenox/osint-chat/internal/models"
)

const notConfiguredReply = "AI analysis is not configured. Set GROQ_API_KEY (or llm.api_key) to enable risk assessments and reports."

const capabilitiesReply = `I can help you investigate usernames across social media platforms.

Try asking:
• "Find all accounts of john_doe" to search every supported site
• "Is john_doe suspicious?" for an AI risk assessment
• "Which platform has the highest risk for john_doe?"
• "Analyze john_doe" or "Score for john_doe" for a risk breakdown
• "Generate a report for john_doe" for a full investigation report

Once a username has been searched, you can ask follow-up questions without repeating it.`

func askForUsername(intent models.Intent) string {
	switch intent {
	case models.IntentInvestigation:
		return `Which username should I look for? For example: "Find all accounts of john_doe".`
	case models.IntentIntelligence:
		return `Which username should I assess? For example: "Is john_doe suspicious?".`
	case models.IntentAnalysis:
		return `Please include the username to analyze. For example: "Analyze john_doe".`
	case models.IntentReporting:
		return `Please include the username to report on. For example: "Generate a report for john_doe".`
	default:
		return "Please provide a username."
	}
}

func searchFailedReply(username string, err error) string {
	return fmt.Sprintf("I couldn't search for '%s' right now because the search service failed (%v). Please try again later.", username, err)
}

func noAccountsReply(username string) string {
	return fmt.Sprintf("No accounts found for username '%s', so there is nothing to assess.", username)
}

func formatFoundSites(username string, sites []models.FoundSite, shown int) string {
	if len(sites) == 0 {
		return fmt.Sprintf("No accounts found for username '%s'.", username)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s for username '%s':\n\n", len(sites), plural(len(sites), "account", "accounts"), username)
	for i, s := range sites[:shown] {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, s.Site, s.URL)
	}
	if rest := len(sites) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more. Say \"show all accounts of %s\" to see every result.", rest, username)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAssessment(a models.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk assessment for '%s' (%d %s):\n\n", a.Username, a.TotalAccounts, plural(a.TotalAccounts, "account", "accounts"))
	fmt.Fprintf(&b, "Risk score: %.1f/10\n", a.RiskScore)
	fmt.Fprintf(&b, "Risk level: %s\n", a.RiskLevel)
	fmt.Fprintf(&b, "Suspicious: %s\n", yesNo(a.IsSuspicious))
	writeIndicators(&b, a.Indicators)
	if a.Explanation != "" {
		fmt.Fprintf(&b, "\n%s", a.Explanation)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAnalysis(a models.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of '%s' across %d %s:\n\n", a.Username, a.TotalAccounts, plural(a.TotalAccounts, "account", "accounts"))
	fmt.Fprintf(&b, "Risk score: %.1f/10\n", a.RiskScore)
	fmt.Fprintf(&b, "Risk level: %s\n", a.RiskLevel)
	writeIndicators(&b, a.Indicators)
	return strings.TrimRight(b.String(), "\n")
}

func formatPlatformRisk(username string, p models.PlatformRiskAssessment) string {
	return fmt.Sprintf("Highest risk platform for '%s': %s (risk %.1f/10)\n\nReason: %s", username, p.Platform, p.RiskScore, p.Reason)
}

func writeIndicators(b *strings.Builder, indicators []string) {
	if len(indicators) == 0 {
		return
	}
	b.WriteString("\nIndicators:\n")
	for _, ind := range indicators {
		fmt.Fprintf(b, "• %s\n", ind)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
