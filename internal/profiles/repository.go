package profiles

import (
	"context"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/db"
)

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	sqlProfileInsert = `INSERT INTO profiles (id, username)
		VALUES ($1, $2)
		RETURNING joined_at;`

	sqlProfileGetByID = `SELECT id, username, joined_at
		FROM profiles
		WHERE id = $1;`

	sqlProfileGetByUsername = `SELECT id, username, joined_at
		FROM profiles
		WHERE username = $1;`

	sqlProfileStats = `SELECT COUNT(*), COALESCE(SUM(likes), 0)
		FROM snippets
		WHERE creator_id = $1;`

	sqlProfileDelete = `DELETE FROM profiles
		WHERE id = $1;`
)

func (r *Repository) Create(ctx context.Context, p *Profile) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlProfileInsert, p.ID, p.Username).Scan(&p.JoinedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var p Profile
	err := r.base.Q().QueryRow(ctx, sqlProfileGetByID, id).Scan(&p.ID, &p.Username, &p.JoinedAt)
	if IsNotFound(err) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var p Profile
	err := r.base.Q().QueryRow(ctx, sqlProfileGetByUsername, username).Scan(&p.ID, &p.Username, &p.JoinedAt)
	if IsNotFound(err) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	_, err := r.base.Q().Exec(ctx, sqlProfileDelete, id)
	return err
}

func (r *Repository) StatsByID(ctx context.Context, id string) (Stats, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var s Stats
	err := r.base.Q().QueryRow(ctx, sqlProfileStats, id).Scan(&s.Snippets, &s.TotalLikes)
	if err != nil {
		return Stats{}, err
	}
	return s, nil
}
