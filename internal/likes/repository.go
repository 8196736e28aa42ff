package likes

import (
	"context"

	"github.com/codeswap/codeswap_api/internal/db"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	// ON CONFLICT DO NOTHING makes the insert idempotent: at most one like
	// row may exist per (snippet, user).
	sqlLikeInsert = `INSERT INTO snippet_likes (snippet_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (snippet_id, user_id) DO NOTHING;`

	sqlLikeDelete = `DELETE FROM snippet_likes
		WHERE snippet_id = $1 AND user_id = $2;`

	sqlLikeCountUp = `UPDATE snippets
		SET likes = likes + 1
		WHERE id = $1;`

	sqlLikeCountDown = `UPDATE snippets
		SET likes = GREATEST(likes - 1, 0)
		WHERE id = $1;`

	sqlLikeExists = `SELECT EXISTS (
		SELECT 1 FROM snippet_likes WHERE snippet_id = $1 AND user_id = $2
	);`

	sqlLikeListByUser = `SELECT snippet_id
		FROM snippet_likes
		WHERE user_id = $1;`
)

// Insert creates the like row and bumps the snippet's like count in one
// transaction. The count only moves when a row was actually inserted, so
// the snippets.likes invariant holds under double invocation.
func (r *Repository) Insert(ctx context.Context, snippetID, userID string) (bool, error) {
	inserted := false
	err := r.base.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sqlLikeInsert, snippetID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true
		_, err = tx.Exec(ctx, sqlLikeCountUp, snippetID)
		return err
	})
	return inserted, err
}

func (r *Repository) Delete(ctx context.Context, snippetID, userID string) (bool, error) {
	deleted := false
	err := r.base.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sqlLikeDelete, snippetID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		deleted = true
		_, err = tx.Exec(ctx, sqlLikeCountDown, snippetID)
		return err
	})
	return deleted, err
}

func (r *Repository) Liked(ctx context.Context, snippetID, userID string) (bool, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.base.Q().QueryRow(ctx, sqlLikeExists, snippetID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListSnippetIDs returns every snippet id the user has liked, in one query.
func (r *Repository) ListSnippetIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlLikeListByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 32)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
