package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/classifier"
	"github.com/xaenox/osint-chat/internal/models"
)

func (r *Router) investigate(ctx context.Context, logger *zap.Logger, q models.Query, in models.ConversationContext) turn {
	username, ok := r.resolveUsername(q.Text, in, true)
	if !ok {
		return turn{text: askForUsername(models.IntentInvestigation), context: in}
	}
	out := models.ConversationContext{LastUsername: username}

	sites, err := r.search(ctx, logger, username)
	if err != nil {
		return turn{text: searchFailedReply(username, err), context: out}
	}

	limit := r.listLimit
	if wantsAll(q.Text) {
		limit = len(sites)
	}
	shown := min(limit, len(sites))

	return turn{
		text: formatFoundSites(username, sites, shown),
		data: models.InvestigationData{
			Username:   username,
			FoundSites: sites,
			TotalFound: len(sites),
			Shown:      shown,
		},
		context: out,
	}
}

func (r *Router) intelligence(ctx context.Context, logger *zap.Logger, q models.Query, in models.ConversationContext) turn {
	username, ok := r.resolveUsername(q.Text, in, true)
	if !ok {
		return turn{text: askForUsername(models.IntentIntelligence), context: in}
	}
	out := models.ConversationContext{LastUsername: username}
	if !r.analyst.Configured() {
		return turn{text: notConfiguredReply, context: out}
	}

	sites, err := r.search(ctx, logger, username)
	if err != nil {
		return turn{text: searchFailedReply(username, err), context: out}
	}
	if len(sites) == 0 {
		return turn{text: noAccountsReply(username), context: out}
	}

	if classifier.AsksHighestRiskPlatform(q.Text) {
		platform := r.analyst.HighestRiskPlatform(ctx, username, sites)
		return turn{text: formatPlatformRisk(username, platform), data: platform, context: out}
	}

	assessment := r.analyst.AssessSuspicion(ctx, username, sites)
	return turn{text: formatAssessment(assessment), data: assessment, context: out}
}

// analysis and reporting re-extract the username from the query and do not
// fall back to the carried context.
func (r *Router) analysis(ctx context.Context, logger *zap.Logger, q models.Query, in models.ConversationContext) turn {
	username, ok := r.resolveUsername(q.Text, in, false)
	if !ok {
		logIgnoredContext(logger, in)
		return turn{text: askForUsername(models.IntentAnalysis), context: in}
	}
	out := models.ConversationContext{LastUsername: username}
	if !r.analyst.Configured() {
		return turn{text: notConfiguredReply, context: out}
	}

	sites, err := r.search(ctx, logger, username)
	if err != nil {
		return turn{text: searchFailedReply(username, err), context: out}
	}
	if len(sites) == 0 {
		return turn{text: noAccountsReply(username), context: out}
	}

	assessment := r.analyst.AssessSuspicion(ctx, username, sites)
	return turn{text: formatAnalysis(assessment), data: assessment, context: out}
}

func (r *Router) reporting(ctx context.Context, logger *zap.Logger, q models.Query, in models.ConversationContext) turn {
	username, ok := r.resolveUsername(q.Text, in, false)
	if !ok {
		logIgnoredContext(logger, in)
		return turn{text: askForUsername(models.IntentReporting), context: in}
	}
	out := models.ConversationContext{LastUsername: username}
	if !r.analyst.Configured() {
		return turn{text: notConfiguredReply, context: out}
	}

	sites, err := r.search(ctx, logger, username)
	if err != nil {
		return turn{text: searchFailedReply(username, err), context: out}
	}
	if len(sites) == 0 {
		return turn{text: noAccountsReply(username), context: out}
	}

	assessment := r.analyst.AssessSuspicion(ctx, username, sites)
	report := r.analyst.GenerateReport(ctx, username, sites, &assessment)
	return turn{
		text:    report.Text,
		data:    models.ReportData{Assessment: assessment, Report: report.Text},
		context: out,
	}
}

func (r *Router) general(in models.ConversationContext) turn {
	return turn{text: capabilitiesReply, context: in}
}

func logIgnoredContext(logger *zap.Logger, in models.ConversationContext) {
	if in.LastUsername != "" {
		logger.Debug("Carried username not used for this intent", zap.String("last_username", in.LastUsername))
	}
}

func wantsAll(text string) bool {
	return strings.Contains(strings.ToLower(text), "show all")
}
