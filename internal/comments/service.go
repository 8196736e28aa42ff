package comments

import (
	"context"
	"strings"
	"time"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
)

type Store interface {
	Insert(ctx context.Context, c *Comment) error
	ListBySnippet(ctx context.Context, snippetID string) ([]*Comment, error)
	Delete(ctx context.Context, id string, userID string) (string, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Service owns a snippet's comment thread. Mutations never splice the
// local list: after a successful add or remove the thread is re-fetched,
// so what callers see is always store-consistent.
type Service struct {
	Store       Store
	Limiter     RateLimiter
	IDGenerator func() string
}

func (s *Service) List(ctx context.Context, snippetID string) ([]*Comment, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "comments store not configured")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "snippet id is required")
	}

	list, err := s.Store.ListBySnippet(ctx, snippetID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFetchFailed, "failed to load comments", err)
	}
	return list, nil
}

// Add creates a comment and returns the re-fetched thread. The empty-body
// check is a precondition, not a UI nicety: no store call happens for
// whitespace-only input.
func (s *Service) Add(ctx context.Context, snippetID, body string) ([]*Comment, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "comments store not configured")
	}
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "snippet id is required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "comment text is required")
	}

	if s.Limiter != nil {
		allowed, retryAfter, err := s.Limiter.Allow(ctx, "comments:user:"+userID)
		if err != nil {
			return nil, apperrors.New(apperrors.KindInternal, "rate limit error")
		}
		if !allowed {
			return nil, apperrors.RateLimit("too many comments", retryAfter)
		}
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "cmt_" + internal.RandomHex(12)
		}
	}

	comment := &Comment{
		ID:        idGen(),
		SnippetID: snippetID,
		AuthorID:  userID,
		Body:      body,
	}

	if err := s.Store.Insert(ctx, comment); err != nil {
		return nil, apperrors.Wrap(apperrors.KindMutationFailed, "failed to add comment", err)
	}

	return s.List(ctx, snippetID)
}

// Remove deletes the requester's own comment and returns the re-fetched
// thread. There is no local ownership pre-check: the store predicate
// rejects foreign deletes with zero rows affected.
func (s *Service) Remove(ctx context.Context, commentID string) ([]*Comment, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "comments store not configured")
	}
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "comment id is required")
	}

	snippetID, err := s.Store.Delete(ctx, commentID, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "comment not found")
		}
		return nil, apperrors.Wrap(apperrors.KindMutationFailed, "failed to delete comment", err)
	}

	return s.List(ctx, snippetID)
}
