package feed

import (
	"context"
	"sync"

	"github.com/codeswap/codeswap_api/internal/apperrors"
	"github.com/codeswap/codeswap_api/internal/identity"
	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/telemetry"
)

type Source interface {
	Assemble(ctx context.Context) (*View, error)
}

type LikeToggler interface {
	Toggle(ctx context.Context, snippetID string, liked bool) (likes.Result, error)
}

// ViewState is a long-lived, concurrency-safe feed session: the loaded
// view plus the active sort, language, and query controls.
//
// Every load is stamped with a sequence number taken when it starts.
// A load whose stamp no longer matches the current sequence by the time
// it completes lost the race to a newer load or a reset, and its result
// is discarded. The sequence also guards optimistic like reverts for
// the same reason.
type ViewState struct {
	Feed  Source
	Likes LikeToggler

	mu      sync.Mutex
	seq     uint64
	view    View
	loaded  bool
	opts    Options
	unsub   func()
	unsubMu sync.Mutex
}

func NewViewState(feed Source, likes LikeToggler) *ViewState {
	return &ViewState{
		Feed:  feed,
		Likes: likes,
		opts:  Options{Sort: SortNewest, Language: LanguageAll},
	}
}

// Watch subscribes to identity events. Any change of viewer resets the
// state to its initial condition, invalidating in-flight loads.
func (v *ViewState) Watch(n *identity.Notifier) {
	v.unsubMu.Lock()
	defer v.unsubMu.Unlock()
	if v.unsub != nil {
		v.unsub()
	}
	v.unsub = n.Subscribe(func(identity.Event) {
		v.Reset()
	})
}

func (v *ViewState) Close() {
	v.unsubMu.Lock()
	defer v.unsubMu.Unlock()
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}

// Refresh loads a fresh view. Starting a load advances the sequence,
// so of several overlapping refreshes only the latest-started one may
// commit its result; the rest are thrown away, as is a load that a
// reset overtook.
func (v *ViewState) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	stamp := v.seq
	v.mu.Unlock()

	view, err := v.Feed.Assemble(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seq != stamp {
		return nil
	}
	v.view = *view
	v.loaded = true
	return nil
}

// Reset returns the state to its initial condition and bumps the
// sequence so pending loads and reverts are discarded.
func (v *ViewState) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.view = View{}
	v.loaded = false
	v.opts = Options{Sort: SortNewest, Language: LanguageAll}
}

func (v *ViewState) SetSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opts.Sort = key
}

func (v *ViewState) SetLanguage(lang string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opts.Language = lang
}

func (v *ViewState) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opts.Query = q
}

func (v *ViewState) Options() Options {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts
}

func (v *ViewState) Languages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.view.Languages))
	copy(out, v.view.Languages)
	return out
}

// Visible returns the loaded records with the active controls applied.
func (v *ViewState) Visible() []Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ApplyView(v.view.Records, v.opts)
}

// ToggleLike flips the liked flag and count locally first, then asks
// the store. A store failure puts the record back exactly as it was,
// unless the state was reset in the meantime.
func (v *ViewState) ToggleLike(ctx context.Context, snippetID string) error {
	if v.Likes == nil {
		return apperrors.New(apperrors.KindInternal, "like toggler not configured")
	}

	v.mu.Lock()
	idx := v.indexLocked(snippetID)
	if idx < 0 {
		v.mu.Unlock()
		return apperrors.New(apperrors.KindNotFound, "snippet not in view")
	}
	stamp := v.seq
	wasLiked := v.view.Records[idx].Liked
	wasLikes := v.view.Records[idx].Likes
	v.applyLikeLocked(idx, !wasLiked)
	v.mu.Unlock()

	res, err := v.Likes.Toggle(ctx, snippetID, wasLiked)
	if err != nil {
		v.mu.Lock()
		if v.seq == stamp {
			// Restore the exact prior count rather than re-applying the
			// flip: the decrement floor would otherwise turn a revert on
			// a zero-count record into a phantom like.
			if idx := v.indexLocked(snippetID); idx >= 0 {
				v.view.Records[idx].Liked = wasLiked
				v.view.Records[idx].Likes = wasLikes
			}
		}
		v.mu.Unlock()
		return err
	}

	telemetry.CountLikeToggle(ctx, res.Liked)

	// The store can report a no-op, e.g. the like already existed.
	// Settle on its flag and put the count back where it was.
	v.mu.Lock()
	if v.seq == stamp && !res.Changed {
		if idx := v.indexLocked(snippetID); idx >= 0 {
			v.view.Records[idx].Liked = res.Liked
			v.view.Records[idx].Likes = wasLikes
		}
	}
	v.mu.Unlock()
	return nil
}

func (v *ViewState) indexLocked(snippetID string) int {
	for i := range v.view.Records {
		if v.view.Records[i].ID == snippetID {
			return i
		}
	}
	return -1
}

func (v *ViewState) applyLikeLocked(idx int, liked bool) {
	rec := &v.view.Records[idx]
	if rec.Liked == liked {
		return
	}
	rec.Liked = liked
	if liked {
		rec.Likes++
	} else if rec.Likes > 0 {
		rec.Likes--
	}
}
