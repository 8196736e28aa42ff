package snippets

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
	sqlSnippetInsert = `INSERT INTO snippets (id, title, language, description, code, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING likes, created_at;`

	sqlSnippetSelectByID = `SELECT s.id, s.title, s.language, s.description, s.code, s.likes, s.creator_id, p.username, s.created_at
		FROM snippets s
		JOIN profiles p ON p.id = s.creator_id
		WHERE s.id = $1
		LIMIT 1;`

	sqlSnippetListFeed = `SELECT s.id, s.title, s.language, s.description, s.code, s.likes, s.creator_id, p.username, s.created_at
		FROM snippets s
		JOIN profiles p ON p.id = s.creator_id
		ORDER BY s.created_at DESC;`

	sqlSnippetListByCreator = `SELECT s.id, s.title, s.language, s.description, s.code, s.likes, s.creator_id, p.username, s.created_at
		FROM snippets s
		JOIN profiles p ON p.id = s.creator_id
		WHERE s.creator_id = $1
		ORDER BY s.created_at DESC;`

	sqlSnippetDelete = `DELETE FROM snippets
		WHERE id = $1 AND creator_id = $2;`
)

func (r *Repository) Create(ctx context.Context, s *Snippet) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlSnippetInsert,
		s.ID,
		s.Title,
		s.Language,
		s.Description,
		s.Code,
		s.CreatorID,
	).Scan(&s.Likes, &s.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Snippet, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var s Snippet
	err := r.base.Q().QueryRow(ctx, sqlSnippetSelectByID, id).Scan(
		&s.ID,
		&s.Title,
		&s.Language,
		&s.Description,
		&s.Code,
		&s.Likes,
		&s.CreatorID,
		&s.AuthorUsername,
		&s.CreatedAt,
	)
	if IsNotFound(err) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListFeed returns every snippet joined with its author's username,
// newest first. Store-side ordering is the feed's insertion order.
func (r *Repository) ListFeed(ctx context.Context) ([]*Snippet, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlSnippetListFeed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSnippets(rows)
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID string) ([]*Snippet, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlSnippetListByCreator, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSnippets(rows)
}

func (r *Repository) Delete(ctx context.Context, id string, creatorID string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlSnippetDelete, id, creatorID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}

	return nil
}

type snippetRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSnippets(rows snippetRows) ([]*Snippet, error) {
	out := make([]*Snippet, 0, 64)
	for rows.Next() {
		var s Snippet
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Language,
			&s.Description,
			&s.Code,
			&s.Likes,
			&s.CreatorID,
			&s.AuthorUsername,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
