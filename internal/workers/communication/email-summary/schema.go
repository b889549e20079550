// internal/workers/communication/email-summary/schema.go
package emailsummary

import "pk-market-chat/internal/common/validation"

const summarySchemaJSON = `{
  "type": "object",
  "required": ["subject", "body", "pdf_filename"],
  "properties": {
    "subject":      {"type": "string"},
    "body":         {"type": "string"},
    "pdf_filename": {"type": "string"}
  }
}`

var summarySchema = validation.MustCompile("email summary", summarySchemaJSON)

const composeSystemPrompt = `You are an assistant that generates professional email content and summaries for a chatbot focused on Pakistan's stock market and economy. Given the chat history and mode (stock or economy), create:
1. A clear email subject (e.g., 'Pakistan Stock Market Chat Summary').
2. A professional email body summarizing the conversation in simple terms, including key points.
3. A PDF filename for the chat history summary (e.g., 'chat_summary_2025.pdf').
Provide the response as a JSON object with fields: subject, body, pdf_filename.`
