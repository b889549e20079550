// internal/workers/ai-conversation/parse-user-intent/handler.go
package parseuserintent

import (
	"strings"

	"pk-market-chat/internal/models"
)

// emailKeywords mark a request to mail the conversation. Matching is a
// case-insensitive substring test, so "resend" and "summary?" both match.
var emailKeywords = []string{"email", "send", "mail", "share", "summary", "conversation"}

// Classify decides the intent of message under an already validated mode.
func Classify(message string, mode models.Mode) Analysis {
	if kw := matchAny(message, emailKeywords); kw != "" {
		return Analysis{Intent: IntentEmailSummary, MatchedKeyword: kw}
	}
	if mode == models.ModeEconomy {
		return Analysis{Intent: IntentEconomyQuery}
	}
	return Analysis{Intent: IntentStockQuery}
}

// HasUsableEmail applies the only address check the router makes.
func HasUsableEmail(email string) bool {
	return strings.Contains(email, "@")
}

func matchAny(message string, keywords []string) string {
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
