package feed

import (
	"testing"
	"time"

	"github.com/codeswap/codeswap_api/internal/snippets"
)

func rec(id, title, lang string, likes int, age time.Duration) Record {
	return Record{
		Snippet: snippets.Snippet{
			ID:        id,
			Title:     title,
			Language:  lang,
			Likes:     likes,
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(-age),
		},
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertOrder(t *testing.T, got []Record, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %v", i, id, ids(got))
		}
	}
}

func TestApplyViewSortNewest(t *testing.T) {
	in := []Record{
		rec("snp_old", "a", "go", 9, 2*time.Hour),
		rec("snp_new", "b", "go", 1, 0),
		rec("snp_mid", "c", "go", 5, time.Hour),
	}

	out := ApplyView(in, Options{Sort: SortNewest, Language: LanguageAll})
	assertOrder(t, out, "snp_new", "snp_mid", "snp_old")
}

func TestApplyViewSortMostLiked(t *testing.T) {
	in := []Record{
		rec("snp_1", "a", "go", 2, 0),
		rec("snp_2", "b", "go", 7, time.Hour),
		rec("snp_3", "c", "go", 4, 2*time.Hour),
	}

	out := ApplyView(in, Options{Sort: SortMostLiked, Language: LanguageAll})
	assertOrder(t, out, "snp_2", "snp_3", "snp_1")
}

func TestApplyViewMostLikedTiesKeepInputOrder(t *testing.T) {
	in := []Record{
		rec("snp_1", "a", "go", 3, 0),
		rec("snp_2", "b", "go", 3, time.Hour),
		rec("snp_3", "c", "go", 3, 2*time.Hour),
	}

	out := ApplyView(in, Options{Sort: SortMostLiked, Language: LanguageAll})
	assertOrder(t, out, "snp_1", "snp_2", "snp_3")
}

func TestApplyViewLanguageFilter(t *testing.T) {
	in := []Record{
		rec("snp_1", "a", "go", 0, 0),
		rec("snp_2", "b", "python", 0, time.Hour),
		rec("snp_3", "c", "go", 0, 2*time.Hour),
	}

	out := ApplyView(in, Options{Sort: SortNewest, Language: "go"})
	assertOrder(t, out, "snp_1", "snp_3")

	if got := ApplyView(in, Options{Sort: SortNewest, Language: LanguageAll}); len(got) != 3 {
		t.Fatalf("expected all records for %q, got %v", LanguageAll, ids(got))
	}
	if got := ApplyView(in, Options{Sort: SortNewest}); len(got) != 3 {
		t.Fatalf("expected all records for empty language, got %v", ids(got))
	}
}

func TestApplyViewLanguageFilterIsCaseSensitive(t *testing.T) {
	in := []Record{rec("snp_1", "a", "Go", 0, 0)}

	if got := ApplyView(in, Options{Language: "go"}); len(got) != 0 {
		t.Fatalf("expected no match for different case, got %v", ids(got))
	}
}

func TestApplyViewSearchReplacesFilterAndSort(t *testing.T) {
	in := []Record{
		rec("snp_1", "binary heap", "go", 1, 2*time.Hour),
		rec("snp_2", "Heap sort", "python", 9, 0),
		rec("snp_3", "quicksort", "go", 5, time.Hour),
	}

	// The language option is ignored while searching, sort is not
	// applied, and matching is case-insensitive over the full set.
	out := ApplyView(in, Options{Sort: SortMostLiked, Language: "go", Query: "  heap "})
	assertOrder(t, out, "snp_1", "snp_2")
}

func TestApplyViewSearchMatchesDescriptionAndLanguage(t *testing.T) {
	in := []Record{
		rec("snp_1", "a", "go", 0, 0),
		rec("snp_2", "b", "rust", 0, time.Hour),
	}
	in[1].Description = "borrow checker demo"

	out := ApplyView(in, Options{Query: "BORROW"})
	assertOrder(t, out, "snp_2")

	out = ApplyView(in, Options{Query: "rust"})
	assertOrder(t, out, "snp_2")
}

func TestApplyViewDoesNotMutateInput(t *testing.T) {
	in := []Record{
		rec("snp_old", "a", "go", 1, 2*time.Hour),
		rec("snp_new", "b", "go", 9, 0),
	}

	_ = ApplyView(in, Options{Sort: SortMostLiked, Language: LanguageAll})

	if in[0].ID != "snp_old" || in[1].ID != "snp_new" {
		t.Fatalf("input slice mutated: %v", ids(in))
	}
}

func TestParseSortKey(t *testing.T) {
	if got := ParseSortKey(" mostLiked "); got != SortMostLiked {
		t.Fatalf("expected mostLiked, got %s", got)
	}
	if got := ParseSortKey("newest"); got != SortNewest {
		t.Fatalf("expected newest, got %s", got)
	}
	if got := ParseSortKey("bogus"); got != SortNewest {
		t.Fatalf("expected default newest, got %s", got)
	}
}
