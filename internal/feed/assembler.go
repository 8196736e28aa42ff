package feed

import (
	"context"
	"sort"
	"time"

	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
	"github.com/codeswap/codeswap_api/internal/snippets"
	"github.com/codeswap/codeswap_api/internal/telemetry"
)

type SnippetSource interface {
	ListFeed(ctx context.Context) ([]*snippets.Snippet, error)
}

type CommentCounter interface {
	CountsBySnippet(ctx context.Context) (map[string]int, error)
}

type LikeSource interface {
	ListSnippetIDs(ctx context.Context, userID string) ([]string, error)
}

// Assembler builds the feed view: the snippet collection joined with
// comment counts and the viewer's liked set.
type Assembler struct {
	Snippets SnippetSource
	Comments CommentCounter
	Likes    LikeSource

	Cache    Cache
	CacheTTL time.Duration
}

// Assemble fetches and merges one consistent feed view.
//
// Only the primary snippet fetch is fatal. Comment counts and the liked
// set are auxiliary: when either fetch fails the affected values default
// (count 0, unliked), the failure is logged, and the view still succeeds.
// A partial feed beats no feed.
func (a *Assembler) Assemble(ctx context.Context) (*View, error) {
	if a.Snippets == nil {
		return nil, apperrors.New(apperrors.KindInternal, "feed source not configured")
	}

	start := time.Now()
	base, err := a.baseView(ctx)
	telemetry.ObserveFeedAssemble(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	a.markLiked(ctx, base.Records)
	return base, nil
}

// InvalidateCache drops the cached base view after a write that changes
// what the feed shows.
func (a *Assembler) InvalidateCache(ctx context.Context) {
	if a.Cache == nil {
		return
	}
	if err := a.Cache.Invalidate(ctx); err != nil {
		telemetry.LogWarn(ctx, "feed cache invalidate failed",
			telemetry.LogString("error", err.Error()),
		)
	}
}

// baseView is the viewer-independent part of the feed: records with
// Liked unset, plus the language options. It is what the cache holds.
func (a *Assembler) baseView(ctx context.Context) (*View, error) {
	if a.Cache != nil {
		if cached, ok, err := a.Cache.GetBase(ctx); err == nil && ok {
			return cached, nil
		}
	}

	list, err := a.Snippets.ListFeed(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFetchFailed, "failed to load feed", err)
	}

	counts := a.commentCounts(ctx)

	records := make([]Record, 0, len(list))
	langSet := make(map[string]struct{}, 8)
	for _, s := range list {
		records = append(records, Record{
			Snippet:      *s,
			CommentCount: counts[s.ID],
		})
		langSet[s.Language] = struct{}{}
	}

	view := &View{
		Records:   records,
		Languages: sortedLanguages(langSet),
	}

	if a.Cache != nil && a.CacheTTL > 0 {
		_ = a.Cache.SetBase(ctx, view, a.CacheTTL)
	}

	return view, nil
}

func (a *Assembler) commentCounts(ctx context.Context) map[string]int {
	if a.Comments == nil {
		return nil
	}

	counts, err := a.Comments.CountsBySnippet(ctx)
	if err != nil {
		telemetry.LogWarn(ctx, "comment counts unavailable, defaulting to zero",
			telemetry.LogString("error", err.Error()),
		)
		telemetry.CountFeedAuxFailure(ctx, "comment_counts")
		return nil
	}
	return counts
}

func (a *Assembler) markLiked(ctx context.Context, records []Record) {
	userID, ok := identity.UserID(ctx)
	if !ok || a.Likes == nil {
		return
	}

	ids, err := a.Likes.ListSnippetIDs(ctx, userID)
	if err != nil {
		telemetry.LogWarn(ctx, "liked set unavailable, leaving records unliked",
			telemetry.LogString("user_id", userID),
			telemetry.LogString("error", err.Error()),
		)
		telemetry.CountFeedAuxFailure(ctx, "liked_set")
		return
	}

	liked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		liked[id] = struct{}{}
	}
	for i := range records {
		_, records[i].Liked = liked[records[i].ID]
	}
}

func sortedLanguages(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for lang := range set {
		if lang == "" {
			continue
		}
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
