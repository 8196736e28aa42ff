package comments

import "time"

type Comment struct {
	ID             string    `json:"id"`
	SnippetID      string    `json:"snippet_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
