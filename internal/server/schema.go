package server

import chatrouter "pk-market-chat/internal/workers/ai-conversation/chat-router"

// chatRequestSchema is the input contract of the chat-respond activity, so
// HTTP and job callers are held to the same shape.
var chatRequestSchema = chatrouter.MustInputSchema()
