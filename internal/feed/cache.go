package feed

import (
	"context"
	"time"
)

// Cache holds the viewer-independent base view so every request does
// not rebuild the feed from the database. GetBase must return a view
// the caller owns; the assembler writes viewer flags into it.
type Cache interface {
	GetBase(ctx context.Context) (*View, bool, error)
	SetBase(ctx context.Context, view *View, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
