package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/comments"
	"github.com/codeswap/codeswap_api/internal/db"
	"github.com/codeswap/codeswap_api/internal/feed"
	"github.com/codeswap/codeswap_api/internal/identity"
	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/snippets"
)

const feedctlVersion = "0.1.0"

const usage = `Feed inspection tool.

Reads the snippet feed straight from the store, applies the same sort,
language, and search controls the API serves, and prints the result.

Usage:
    feedctl show [--sort=<key>] [--language=<lang>] [--query=<q>] [--user=<id>] [--watch=<interval>]
    feedctl languages

Options:
    -h --help              Show this screen.
    --version              Show version.
    --sort=<key>           newest or mostLiked [default: newest].
    --language=<lang>      Language filter, 'all' for no filter [default: all].
    --query=<q>            Search query; replaces filter and sort.
    --user=<id>            View as this user id, marking their likes.
    --watch=<interval>     Re-render every interval, e.g. 5s.`

func main() {
	_ = godotenv.Load()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], feedctlVersion)
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}

	ctx := context.Background()
	state, cleanup := newState(ctx)
	defer cleanup()

	if userID, _ := opts.String("--user"); userID != "" {
		ctx = identity.WithUser(ctx, userID)
	}

	switch {
	case mustBool(opts, "show"):
		show(ctx, state, opts)
	case mustBool(opts, "languages"):
		languages(ctx, state)
	}
}

func newState(ctx context.Context) (*feed.ViewState, func()) {
	databaseURL := internal.MustEnv("DATABASE_URL")

	d, err := db.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	var redisClient *redis.Client
	var cache feed.Cache
	if redisURL := internal.Env("REDIS_URL", ""); redisURL != "" {
		redisOpt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("redis url error: %v", err)
		}
		redisClient = redis.NewClient(redisOpt)
		cache = feed.NewRedisCache(redisClient, "codeswap:cache:")
	}

	dbBase := db.NewBase(d.Pool, 3*time.Second)
	snippetRepo := snippets.NewRepository(dbBase)
	commentRepo := comments.NewRepository(dbBase)
	likeRepo := likes.NewRepository(dbBase)

	assembler := &feed.Assembler{
		Snippets: snippetRepo,
		Comments: commentRepo,
		Likes:    likeRepo,
		Cache:    cache,
		CacheTTL: 30 * time.Second,
	}
	likeService := &likes.Service{Store: likeRepo}

	state := feed.NewViewState(assembler, likeService)

	cleanup := func() {
		state.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		d.Close()
	}
	return state, cleanup
}

func show(ctx context.Context, state *feed.ViewState, opts docopt.Opts) {
	sortKey, _ := opts.String("--sort")
	language, _ := opts.String("--language")
	query, _ := opts.String("--query")

	state.SetSort(feed.ParseSortKey(sortKey))
	state.SetLanguage(language)
	state.SetQuery(query)

	interval := watchInterval(opts)
	for {
		if err := state.Refresh(ctx); err != nil {
			log.Fatalf("refresh feed: %v", err)
		}
		render(state.Visible())

		if interval <= 0 {
			return
		}
		time.Sleep(interval)
	}
}

func languages(ctx context.Context, state *feed.ViewState) {
	if err := state.Refresh(ctx); err != nil {
		log.Fatalf("refresh feed: %v", err)
	}
	for _, lang := range state.Languages() {
		fmt.Println(lang)
	}
}

func render(records []feed.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLANGUAGE\tLIKES\tCOMMENTS\tLIKED\tCREATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\t%s\n",
			r.ID,
			r.Title,
			r.Language,
			r.Likes,
			r.CommentCount,
			r.Liked,
			r.CreatedAt.Local().Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}

func watchInterval(opts docopt.Opts) time.Duration {
	raw, _ := opts.String("--watch")
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("invalid --watch: %q", raw)
	}
	return d
}

func mustBool(opts docopt.Opts, key string) bool {
	v, _ := opts.Bool(key)
	return v
}
