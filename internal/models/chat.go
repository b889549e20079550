package models

import "strings"

// Mode selects which domain a chat turn is answered from.
type Mode string

const (
	ModeStock   Mode = "stock"
	ModeEconomy Mode = "economy"
)

// Valid reports whether the mode is one the router can dispatch.
func (m Mode) Valid() bool {
	return m == ModeStock || m == ModeEconomy
}

// ChatMessage is a single entry of the client-held conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound chat turn.
type ChatRequest struct {
	Message     string        `json:"message"`
	Mode        Mode          `json:"mode"`
	ChatHistory []ChatMessage `json:"chat_history"`
	UserEmail   *string       `json:"user_email"`
}

// NewChatRequest returns a request preloaded with the documented defaults.
// Decoding into it keeps the default mode only when the field is omitted,
// so an explicit empty mode is still rejected.
func NewChatRequest() *ChatRequest {
	return &ChatRequest{Mode: ModeStock, ChatHistory: []ChatMessage{}}
}

// ApplyDefaults replaces a null history with an empty one.
func (r *ChatRequest) ApplyDefaults() {
	if r.ChatHistory == nil {
		r.ChatHistory = []ChatMessage{}
	}
}

// Email returns the trimmed recipient, or "" when none was supplied.
func (r *ChatRequest) Email() string {
	if r.UserEmail == nil {
		return ""
	}
	return strings.TrimSpace(*r.UserEmail)
}

// ChatResponse is the body returned for every handled chat turn.
type ChatResponse struct {
	Response string `json:"response"`
}

// EmailSummary is the structured output requested from the model before
// a transcript is mailed.
type EmailSummary struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	PDFFilename string `json:"pdf_filename"`
}
