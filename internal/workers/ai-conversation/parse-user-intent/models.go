// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

// Intent is the router's classification of a chat message.
type Intent string

const (
	IntentEmailSummary Intent = "email-summary"
	IntentStockQuery   Intent = "stock-query"
	IntentEconomyQuery Intent = "economy-query"
)

// Analysis is the classifier's verdict for one message.
type Analysis struct {
	Intent Intent `json:"intent"`
	// MatchedKeyword is the first email keyword found, empty for domain
	// queries.
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
}
