package profiles

import "time"

// Profile is created once at account creation and immutable afterwards.
// Its ID is the owning user's ID.
type Profile struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// Stats aggregates a profile's publishing activity: how many snippets the
// user owns and the likes collected across all of them.
type Stats struct {
	Snippets   int `json:"snippets"`
	TotalLikes int `json:"total_likes"`
}
