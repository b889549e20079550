// internal/workers/context-fetch/economic-news/models.go
package economicnews

// Article is the subset of a NewsAPI article used in the digest. Pointers
// distinguish a missing or null field from an empty one.
type Article struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PublishedAt *string `json:"publishedAt"`
}

type apiResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}
