package models

// ChatRequest is one conversational turn as submitted by a transport.
type ChatRequest struct {
	Query          string `json:"query"`
	LastUsername   string `json:"last_username,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the reply to one turn. LastUsername is the context the
// caller should carry into the next turn.
type ChatResponse struct {
	Query          string `json:"query"`
	Response       string `json:"response"`
	QueryType      Intent `json:"query_type"`
	Timestamp      string `json:"timestamp"`
	Data           any    `json:"data,omitempty"`
	LastUsername   string `json:"last_username,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Context returns the conversation context the response hands back.
func (r ChatResponse) Context() ConversationContext {
	return ConversationContext{LastUsername: r.LastUsername}
}

// InvestigationData is the payload of an investigation reply.
type InvestigationData struct {
	Username   string      `json:"username"`
	FoundSites []FoundSite `json:"found_sites"`
	TotalFound int         `json:"total_found"`
	Shown      int         `json:"shown"`
}

// ReportData is the payload of a reporting reply.
type ReportData struct {
	Assessment RiskAssessment `json:"risk_analysis"`
	Report     string         `json:"report"`
}
