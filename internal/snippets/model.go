package snippets

import "time"

// MaxDescriptionLen bounds the short description shown on feed cards.
const MaxDescriptionLen = 120

type Snippet struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Language    string `json:"language"`
	Description string `json:"description"`
	Code        string `json:"code"`

	// Likes is server-authoritative: it only moves as a side effect of
	// like row creation/deletion.
	Likes int `json:"likes"`

	CreatorID      string `json:"creator_id"`
	AuthorUsername string `json:"author_username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type CreateSnippetRequest struct {
	Title       string `json:"title"`
	Language    string `json:"language"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Detail is a snippet as the detail screen sees it: the record plus
// whether the current viewer has liked it.
type Detail struct {
	Snippet
	Liked bool `json:"liked"`
}
