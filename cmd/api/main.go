package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/comments"
	"github.com/codeswap/codeswap_api/internal/db"
	"github.com/codeswap/codeswap_api/internal/feed"
	"github.com/codeswap/codeswap_api/internal/httpapi"
	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/profiles"
	"github.com/codeswap/codeswap_api/internal/ratelimit"
	"github.com/codeswap/codeswap_api/internal/session"
	"github.com/codeswap/codeswap_api/internal/snippets"
	"github.com/codeswap/codeswap_api/internal/telemetry"

	_ "github.com/codeswap/codeswap_api/docs"
)

const serviceName = "codeswap-api"

func main() {
	_ = godotenv.Load()

	port := internal.Env("APP_PORT", "8080")
	databaseURL := internal.MustEnv("DATABASE_URL")
	redisURL := internal.MustEnv("REDIS_URL")

	ctx := context.Background()

	shutdownTracer := telemetry.InitTracer(serviceName)
	defer shutdownTracer(context.Background())
	shutdownMetrics := telemetry.InitMetrics(serviceName)
	defer shutdownMetrics(context.Background())
	shutdownLogger := telemetry.InitLogger(serviceName)
	defer shutdownLogger(context.Background())
	db.InitTelemetry(serviceName)

	d, err := db.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer d.Close()

	redisOpt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	dbBase := db.NewBase(d.Pool, 3*time.Second)
	profileRepo := profiles.NewRepository(dbBase)
	snippetRepo := snippets.NewRepository(dbBase)
	commentRepo := comments.NewRepository(dbBase)
	likeRepo := likes.NewRepository(dbBase)

	sessionPrefix := internal.Env("SESSION_REDIS_PREFIX", "codeswap:session:")
	sessionTTL := parseDurationEnv("SESSION_TTL", 7*24*time.Hour)
	sessionManager := &session.Manager{
		Store:   session.NewRedisStore(redisClient, sessionPrefix),
		TTL:     sessionTTL,
		IDBytes: 32,
	}

	cookieSecure := parseBoolEnv("SESSION_COOKIE_SECURE", true)
	cookieSameSite := parseSameSiteEnv("SESSION_COOKIE_SAMESITE", http.SameSiteLaxMode)
	cookie := session.CookieConfig{
		Name:     internal.Env("SESSION_COOKIE_NAME", session.DefaultCookieName),
		Path:     internal.Env("SESSION_COOKIE_PATH", "/"),
		Domain:   internal.Env("SESSION_COOKIE_DOMAIN", ""),
		Secure:   cookieSecure,
		SameSite: cookieSameSite,
	}

	commentLimit := parseIntEnv("COMMENT_RATE_LIMIT", 10)
	commentWindow := parseDurationEnv("COMMENT_RATE_WINDOW", time.Minute)
	commentLimiter := &ratelimit.Limiter{
		Client: redisClient,
		Prefix: "codeswap:ratelimit:",
		Limit:  commentLimit,
		Window: commentWindow,
	}

	likeService := &likes.Service{Store: likeRepo}
	snippetService := &snippets.Service{
		Store:       snippetRepo,
		Likes:       likeRepo,
		IDGenerator: func() string { return "snp_" + internal.RandomHex(12) },
	}
	commentService := &comments.Service{
		Store:       commentRepo,
		Limiter:     commentLimiter,
		IDGenerator: func() string { return "cmt_" + internal.RandomHex(12) },
	}
	profileService := &profiles.Service{Store: profileRepo}

	feedCacheTTL := parseDurationEnv("FEED_CACHE_TTL", 30*time.Second)
	assembler := &feed.Assembler{
		Snippets: snippetRepo,
		Comments: commentRepo,
		Likes:    likeRepo,
		Cache:    feed.NewRedisCache(redisClient, "codeswap:cache:"),
		CacheTTL: feedCacheTTL,
	}

	app := &httpapi.App{
		ServiceName: serviceName,
		Health:      &httpapi.HealthHandler{DB: d.Pool, Redis: redisClient},
		Feed:        &httpapi.FeedHandler{Feed: assembler},
		Snippets: &httpapi.SnippetsHandler{
			Service: snippetService,
			Likes:   likeService,
			Feed:    assembler,
		},
		Comments: &httpapi.CommentsHandler{
			Service: commentService,
			Feed:    assembler,
		},
		Profiles: &httpapi.ProfilesHandler{Service: profileService},
		Sessions: &httpapi.SessionsHandler{
			Sessions: sessionManager,
			Cookie:   cookie,
		},
		SessionManager: sessionManager,
		Cookie:         cookie,
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("api listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return d
}

func parseIntEnv(key string, def int) int {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return n
}

func parseBoolEnv(key string, def bool) bool {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return b
}

func parseSameSiteEnv(key string, def http.SameSite) http.SameSite {
	val := strings.ToLower(strings.TrimSpace(internal.Env(key, "")))
	switch val {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	case "":
		return def
	default:
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
}
