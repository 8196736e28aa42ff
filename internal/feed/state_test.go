package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codeswap/codeswap_api/internal/identity"
	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/snippets"
)

type sourceStub struct {
	assembleFn func(ctx context.Context) (*View, error)
}

func (s *sourceStub) Assemble(ctx context.Context) (*View, error) {
	return s.assembleFn(ctx)
}

type togglerStub struct {
	toggleFn func(ctx context.Context, snippetID string, liked bool) (likes.Result, error)
}

func (t *togglerStub) Toggle(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
	return t.toggleFn(ctx, snippetID, liked)
}

func stubView(records ...Record) *View {
	return &View{Records: records}
}

func TestViewStateRefresh(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 0, 0)), nil
	}}
	state := NewViewState(src, nil)

	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if got := state.Visible(); len(got) != 1 || got[0].ID != "snp_1" {
		t.Fatalf("unexpected visible records: %v", ids(got))
	}
}

func TestViewStateStaleRefreshDiscarded(t *testing.T) {
	var state *ViewState
	src := &sourceStub{}
	state = NewViewState(src, nil)

	// The reset lands while the load is in flight, so the load's
	// result must be thrown away.
	src.assembleFn = func(ctx context.Context) (*View, error) {
		state.Reset()
		return stubView(rec("snp_stale", "a", "go", 0, 0)), nil
	}

	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if got := state.Visible(); len(got) != 0 {
		t.Fatalf("expected stale view discarded, got %v", ids(got))
	}
}

func TestViewStateOverlappingRefreshNewestWins(t *testing.T) {
	var state *ViewState
	src := &sourceStub{}
	state = NewViewState(src, nil)

	// A second refresh starts and finishes while the first load's store
	// call is still running. The first load started earlier, so its
	// result must not replace the fresher one.
	first := true
	src.assembleFn = func(ctx context.Context) (*View, error) {
		if first {
			first = false
			if err := state.Refresh(ctx); err != nil {
				t.Fatalf("refresh error: %v", err)
			}
			return stubView(rec("snp_stale", "a", "go", 0, 0)), nil
		}
		return stubView(rec("snp_fresh", "a", "go", 0, 0)), nil
	}

	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	assertOrder(t, state.Visible(), "snp_fresh")
}

func TestViewStateRefreshErrorKeepsCurrentView(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 0, 0)), nil
	}}
	state := NewViewState(src, nil)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	src.assembleFn = func(ctx context.Context) (*View, error) {
		return nil, errors.New("store down")
	}
	if err := state.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := state.Visible(); len(got) != 1 {
		t.Fatalf("expected previous view retained, got %v", ids(got))
	}
}

func TestViewStateControlsApply(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(
			rec("snp_1", "binary heap", "go", 1, 2*time.Hour),
			rec("snp_2", "heap sort", "python", 9, 0),
			rec("snp_3", "quicksort", "go", 5, time.Hour),
		), nil
	}}
	state := NewViewState(src, nil)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	state.SetLanguage("go")
	state.SetSort(SortMostLiked)
	assertOrder(t, state.Visible(), "snp_3", "snp_1")

	state.SetQuery("heap")
	assertOrder(t, state.Visible(), "snp_1", "snp_2")

	state.SetQuery("")
	assertOrder(t, state.Visible(), "snp_3", "snp_1")
}

func TestViewStateToggleLikeOptimistic(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 3, 0)), nil
	}}

	var storeLiked bool
	toggler := &togglerStub{toggleFn: func(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
		storeLiked = liked
		return likes.Result{Liked: !liked, Changed: true}, nil
	}}

	state := NewViewState(src, toggler)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if err := state.ToggleLike(context.Background(), "snp_1"); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	got := state.Visible()
	if !got[0].Liked || got[0].Likes != 4 {
		t.Fatalf("expected liked with count 4, got liked=%v count=%d", got[0].Liked, got[0].Likes)
	}
	if storeLiked {
		t.Fatal("store must receive the pre-toggle liked flag")
	}

	if err := state.ToggleLike(context.Background(), "snp_1"); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	got = state.Visible()
	if got[0].Liked || got[0].Likes != 3 {
		t.Fatalf("expected unliked with count 3, got liked=%v count=%d", got[0].Liked, got[0].Likes)
	}
}

func TestViewStateToggleLikeRevertsOnFailure(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 3, 0)), nil
	}}

	var state *ViewState
	state = NewViewState(src, &togglerStub{toggleFn: func(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
		// The flip must already be visible while the store call runs.
		got := state.Visible()
		if !got[0].Liked || got[0].Likes != 4 {
			t.Fatalf("expected optimistic flip before store call, got liked=%v count=%d", got[0].Liked, got[0].Likes)
		}
		return likes.Result{}, errors.New("store down")
	}})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if err := state.ToggleLike(context.Background(), "snp_1"); err == nil {
		t.Fatal("expected error")
	}

	got := state.Visible()
	if got[0].Liked || got[0].Likes != 3 {
		t.Fatalf("expected revert to original, got liked=%v count=%d", got[0].Liked, got[0].Likes)
	}
}

func TestViewStateToggleLikeRevertRestoresExactCount(t *testing.T) {
	// A liked record already showing zero likes: the optimistic unlike
	// cannot decrement below zero, so a naive re-flip on failure would
	// leave the count at one.
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		view := stubView(rec("snp_1", "a", "go", 0, 0))
		view.Records[0].Liked = true
		return view, nil
	}}
	state := NewViewState(src, &togglerStub{toggleFn: func(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
		return likes.Result{}, errors.New("store down")
	}})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if err := state.ToggleLike(context.Background(), "snp_1"); err == nil {
		t.Fatal("expected error")
	}

	got := state.Visible()
	if !got[0].Liked || got[0].Likes != 0 {
		t.Fatalf("expected revert to liked with count 0, got liked=%v count=%d", got[0].Liked, got[0].Likes)
	}
}

func TestViewStateToggleLikeNoOpSettlesOnStore(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 3, 0)), nil
	}}
	state := NewViewState(src, &togglerStub{toggleFn: func(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
		return likes.Result{Liked: true, Changed: false}, nil
	}})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if err := state.ToggleLike(context.Background(), "snp_1"); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	got := state.Visible()
	if !got[0].Liked || got[0].Likes != 3 {
		t.Fatalf("expected liked with unchanged count, got liked=%v count=%d", got[0].Liked, got[0].Likes)
	}
}

func TestViewStateToggleLikeUnknownSnippet(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(), nil
	}}
	called := false
	state := NewViewState(src, &togglerStub{toggleFn: func(ctx context.Context, snippetID string, liked bool) (likes.Result, error) {
		called = true
		return likes.Result{}, nil
	}})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if err := state.ToggleLike(context.Background(), "snp_missing"); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Fatal("store must not be called for a snippet outside the view")
	}
}

func TestViewStateIdentityChangeResets(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return stubView(rec("snp_1", "a", "go", 0, 0)), nil
	}}
	state := NewViewState(src, nil)
	notifier := identity.NewNotifier()
	state.Watch(notifier)
	defer state.Close()

	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	state.SetLanguage("go")
	state.SetQuery("heap")

	notifier.Notify(identity.Event{UserID: "usr_2"})

	if got := state.Visible(); len(got) != 0 {
		t.Fatalf("expected empty view after identity change, got %v", ids(got))
	}
	opts := state.Options()
	if opts.Sort != SortNewest || opts.Language != LanguageAll || opts.Query != "" {
		t.Fatalf("expected controls reset, got %+v", opts)
	}
}

func TestViewStateLanguagesCopied(t *testing.T) {
	src := &sourceStub{assembleFn: func(ctx context.Context) (*View, error) {
		return &View{
			Records:   []Record{{Snippet: snippets.Snippet{ID: "snp_1", Language: "go"}}},
			Languages: []string{"go"},
		}, nil
	}}
	state := NewViewState(src, nil)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	langs := state.Languages()
	langs[0] = "mutated"
	if got := state.Languages(); got[0] != "go" {
		t.Fatalf("internal languages mutated: %v", got)
	}
}
