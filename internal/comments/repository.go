package comments

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
	sqlCommentInsert = `INSERT INTO comments (id, snippet_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;`

	sqlCommentListBySnippet = `SELECT c.id, c.snippet_id, c.user_id, p.username, c.body, c.created_at
		FROM comments c
		JOIN profiles p ON p.id = c.user_id
		WHERE c.snippet_id = $1
		ORDER BY c.created_at DESC;`

	sqlCommentCounts = `SELECT snippet_id, COUNT(*)
		FROM comments
		GROUP BY snippet_id;`

	// Ownership lives in the predicate: deleting someone else's comment
	// affects zero rows.
	sqlCommentDelete = `DELETE FROM comments
		WHERE id = $1 AND user_id = $2
		RETURNING snippet_id;`
)

func (r *Repository) Insert(ctx context.Context, c *Comment) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlCommentInsert,
		c.ID,
		c.SnippetID,
		c.AuthorID,
		c.Body,
	).Scan(&c.CreatedAt)
}

func (r *Repository) ListBySnippet(ctx context.Context, snippetID string) ([]*Comment, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlCommentListBySnippet, snippetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Comment, 0, 16)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.ID,
			&c.SnippetID,
			&c.AuthorID,
			&c.AuthorUsername,
			&c.Body,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountsBySnippet returns comment counts for every snippet that has at
// least one comment, in a single aggregate query. Snippets absent from
// the map have zero comments.
func (r *Repository) CountsBySnippet(ctx context.Context) (map[string]int, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlCommentCounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int, 64)
	for rows.Next() {
		var snippetID string
		var n int
		if err := rows.Scan(&snippetID, &n); err != nil {
			return nil, err
		}
		counts[snippetID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *Repository) Delete(ctx context.Context, id string, userID string) (string, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var snippetID string
	err := r.base.Q().QueryRow(ctx, sqlCommentDelete, id, userID).Scan(&snippetID)
	if IsNotFound(err) {
		return "", internal.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return snippetID, nil
}
