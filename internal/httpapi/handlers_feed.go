package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/codeswap/codeswap_api/internal/feed"
)

type FeedSource interface {
	Assemble(ctx context.Context) (*feed.View, error)
}

type FeedHandler struct {
	Feed FeedSource
}

type feedResponse struct {
	Records   []feed.Record `json:"records"`
	Languages []string      `json:"languages"`
}

// Get Feed
// @Summary Get the snippet feed
// @Tags feed
// @Produce json
// @Param sort query string false "newest or mostLiked"
// @Param language query string false "language filter, 'all' for no filter"
// @Param q query string false "search query; replaces filter and sort"
// @Success 200 {object} feedResponse
// @Failure 502 {string} string
// @Failure 500 {string} string
// @Router /feed [get]
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Feed.Assemble(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	opts := feed.Options{
		Sort:     feed.ParseSortKey(r.URL.Query().Get("sort")),
		Language: strings.TrimSpace(r.URL.Query().Get("language")),
		Query:    r.URL.Query().Get("q"),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(feedResponse{
		Records:   feed.ApplyView(view.Records, opts),
		Languages: view.Languages,
	})
}
