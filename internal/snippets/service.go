package snippets

import (
	"context"
	"strings"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
)

type Store interface {
	Create(ctx context.Context, s *Snippet) error
	GetByID(ctx context.Context, id string) (*Snippet, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Snippet, error)
	Delete(ctx context.Context, id string, creatorID string) error
}

type LikeLookup interface {
	Liked(ctx context.Context, snippetID, userID string) (bool, error)
}

type Service struct {
	Store       Store
	Likes       LikeLookup
	IDGenerator func() string
}

func (s *Service) Create(ctx context.Context, req CreateSnippetRequest) (*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	creatorID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	title := strings.TrimSpace(req.Title)
	language := strings.TrimSpace(req.Language)
	description := strings.TrimSpace(req.Description)
	code := strings.TrimSpace(req.Code)
	if title == "" || code == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "title and code are required")
	}
	if language == "" {
		language = "txt"
	}
	if len(description) > MaxDescriptionLen {
		return nil, apperrors.New(apperrors.KindInvalidInput, "description is too long")
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "snp_" + internal.RandomHex(12)
		}
	}

	snippet := &Snippet{
		ID:          idGen(),
		Title:       title,
		Language:    language,
		Description: description,
		Code:        code,
		CreatorID:   creatorID,
	}

	if err := s.Store.Create(ctx, snippet); err != nil {
		if IsUniqueViolationID(err) {
			return nil, apperrors.New(apperrors.KindConflict, "snippet already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindMutationFailed, "failed to create snippet", err)
	}

	return snippet, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Detail, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}

	snippet, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "not found")
		}
		return nil, apperrors.Wrap(apperrors.KindFetchFailed, "failed to load snippet", err)
	}

	detail := &Detail{Snippet: *snippet}

	// Liked is derived, viewer-specific data: a lookup failure leaves the
	// flag false instead of failing the load.
	if userID, ok := identity.UserID(ctx); ok && s.Likes != nil {
		if liked, err := s.Likes.Liked(ctx, id, userID); err == nil {
			detail.Liked = liked
		}
	}

	return detail, nil
}

func (s *Service) Mine(ctx context.Context) ([]*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	creatorID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	list, err := s.Store.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFetchFailed, "failed to list snippets", err)
	}
	return list, nil
}

// Delete removes the requester's own snippet. Ownership is enforced by
// the store predicate: deleting someone else's snippet affects zero rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	requesterID, ok := identity.UserID(ctx)
	if !ok {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}

	if err := s.Store.Delete(ctx, id, requesterID); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "not found")
		}
		return apperrors.Wrap(apperrors.KindMutationFailed, "failed to delete snippet", err)
	}

	return nil
}
