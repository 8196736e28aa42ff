package likes

import (
	"context"
	"strings"

	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
)

type Store interface {
	Insert(ctx context.Context, snippetID, userID string) (bool, error)
	Delete(ctx context.Context, snippetID, userID string) (bool, error)
}

type Service struct {
	Store Store
}

// Result reports the authoritative liked state after a toggle. Changed is
// false when the store already held the target state (a duplicate like or
// an unlike of a never-liked snippet), in which case the count did not move.
type Result struct {
	Liked   bool `json:"liked"`
	Changed bool `json:"changed"`
}

// Toggle flips the (snippet, user) like row to the negation of liked.
// It requires an authenticated identity and performs no store call without one.
func (s *Service) Toggle(ctx context.Context, snippetID string, liked bool) (Result, error) {
	if s.Store == nil {
		return Result{}, apperrors.New(apperrors.KindInternal, "likes store not configured")
	}
	userID, ok := identity.UserID(ctx)
	if !ok {
		return Result{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return Result{}, apperrors.New(apperrors.KindInvalidInput, "snippet id is required")
	}

	target := !liked

	if target {
		inserted, err := s.Store.Insert(ctx, snippetID, userID)
		if err != nil {
			return Result{}, apperrors.Wrap(apperrors.KindMutationFailed, "failed to like snippet", err)
		}
		return Result{Liked: true, Changed: inserted}, nil
	}

	deleted, err := s.Store.Delete(ctx, snippetID, userID)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindMutationFailed, "failed to unlike snippet", err)
	}
	return Result{Liked: false, Changed: deleted}, nil
}
