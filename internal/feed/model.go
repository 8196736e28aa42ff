package feed

import "github.com/codeswap/codeswap_api/internal/snippets"

// Record is a snippet as the feed renders it: the stored row joined with
// its author's username, its comment count, and whether the current
// viewer has liked it. Records live only in memory and are rebuilt on
// every assemble.
type Record struct {
	snippets.Snippet
	CommentCount int  `json:"comment_count"`
	Liked        bool `json:"liked"`
}

// View is one assembled feed: the records in store order plus the
// distinct language tags present, sorted, for the filter options.
type View struct {
	Records   []Record `json:"records"`
	Languages []string `json:"languages"`
}
