package feed

import (
	"sort"
	"strings"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortMostLiked SortKey = "mostLiked"
)

// LanguageAll passes every record through the language filter.
const LanguageAll = "all"

type Options struct {
	Sort     SortKey
	Language string
	Query    string
}

// ApplyView computes the visible subset of records for the given options.
// Pure and deterministic: no I/O, the input slice is never mutated, and
// the output is always a permutation-subset of the input.
//
// A non-empty trimmed Query searches the FULL record set, case-insensitive
// substring against title, description, and language; search replaces the
// language filter and sort, and keeps input order.
func ApplyView(records []Record, opts Options) []Record {
	if query := strings.TrimSpace(opts.Query); query != "" {
		return searchRecords(records, query)
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !languageMatches(r, opts.Language) {
			continue
		}
		out = append(out, r)
	}

	switch opts.Sort {
	case SortMostLiked:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Likes > out[j].Likes
		})
	default:
		// newest; ties keep the store's insertion order
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

func searchRecords(records []Record, query string) []Record {
	q := strings.ToLower(query)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.Contains(strings.ToLower(r.Language), q) {
			out = append(out, r)
		}
	}
	return out
}

func languageMatches(r Record, language string) bool {
	if language == "" || language == LanguageAll {
		return true
	}
	return r.Language == language
}

// ParseSortKey maps free-form input to a sort key, defaulting to newest.
func ParseSortKey(s string) SortKey {
	if SortKey(strings.TrimSpace(s)) == SortMostLiked {
		return SortMostLiked
	}
	return SortNewest
}
