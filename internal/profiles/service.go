package profiles

import (
	"context"
	"strings"

	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
)

type Store interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	StatsByID(ctx context.Context, id string) (Stats, error)
}

type Service struct {
	Store Store
}

// ProfileView is a profile plus its activity stats, the shape the profile
// screen renders.
type ProfileView struct {
	Profile
	Stats Stats `json:"stats"`
}

func (s *Service) Me(ctx context.Context) (*ProfileView, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "profiles store not configured")
	}
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	return s.view(ctx, userID)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*ProfileView, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "profiles store not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "username is required")
	}

	p, err := s.Store.GetByUsername(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
		}
		return nil, apperrors.New(apperrors.KindFetchFailed, "failed to load profile")
	}
	return s.withStats(ctx, p)
}

func (s *Service) view(ctx context.Context, id string) (*ProfileView, error) {
	p, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
		}
		return nil, apperrors.New(apperrors.KindFetchFailed, "failed to load profile")
	}
	return s.withStats(ctx, p)
}

func (s *Service) withStats(ctx context.Context, p *Profile) (*ProfileView, error) {
	view := &ProfileView{Profile: *p}

	// Stats are derived data: a failed aggregate degrades to zeros rather
	// than failing the whole profile load.
	if stats, err := s.Store.StatsByID(ctx, p.ID); err == nil {
		view.Stats = stats
	}
	return view, nil
}
