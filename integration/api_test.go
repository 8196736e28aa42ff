package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/codeswap/codeswap_api/internal/comments"
	"github.com/codeswap/codeswap_api/internal/db"
	"github.com/codeswap/codeswap_api/internal/feed"
	"github.com/codeswap/codeswap_api/internal/httpapi"
	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/profiles"
	"github.com/codeswap/codeswap_api/internal/session"
	"github.com/codeswap/codeswap_api/internal/snippets"
)

type testEnv struct {
	baseURL  string
	server   *httptest.Server
	profiles *profiles.Repository
	snippets *snippets.Repository
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(pool.Close)

	base := db.NewBase(pool.Pool, 3*time.Second)
	profileRepo := profiles.NewRepository(base)
	snippetRepo := snippets.NewRepository(base)
	commentRepo := comments.NewRepository(base)
	likeRepo := likes.NewRepository(base)

	sessionManager := &session.Manager{
		Store:   session.NewMemoryStore(),
		TTL:     5 * time.Minute,
		IDBytes: 16,
	}
	cookieCfg := session.CookieConfig{
		Name: session.DefaultCookieName,
		Path: "/",
	}

	assembler := &feed.Assembler{
		Snippets: snippetRepo,
		Comments: commentRepo,
		Likes:    likeRepo,
	}

	app := &httpapi.App{
		ServiceName: "codeswap-api-test",
		Health:      &httpapi.HealthHandler{DB: pool.Pool},
		Feed:        &httpapi.FeedHandler{Feed: assembler},
		Snippets: &httpapi.SnippetsHandler{
			Service: &snippets.Service{Store: snippetRepo, Likes: likeRepo},
			Likes:   &likes.Service{Store: likeRepo},
			Feed:    assembler,
		},
		Comments: &httpapi.CommentsHandler{
			Service: &comments.Service{Store: commentRepo},
			Feed:    assembler,
		},
		Profiles: &httpapi.ProfilesHandler{
			Service: &profiles.Service{Store: profileRepo},
		},
		Sessions: &httpapi.SessionsHandler{
			Sessions: sessionManager,
			Cookie:   cookieCfg,
		},
		SessionManager: sessionManager,
		Cookie:         cookieCfg,
	}

	srv := httptest.NewServer(httpapi.NewRouter(app))
	t.Cleanup(srv.Close)

	return &testEnv{
		baseURL:  srv.URL,
		server:   srv,
		profiles: profileRepo,
		snippets: snippetRepo,
		sessions: sessionManager,
	}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func createProfile(t *testing.T, env *testEnv) *profiles.Profile {
	t.Helper()

	p := &profiles.Profile{
		ID:       "usr_" + internal.RandomHex(12),
		Username: fmt.Sprintf("ci_%s", internal.RandomHex(6)),
	}
	if err := env.profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	t.Cleanup(func() { _ = env.profiles.Delete(context.Background(), p.ID) })
	return p
}

func signIn(t *testing.T, client *http.Client, env *testEnv, userID string) {
	t.Helper()

	sess, err := env.sessions.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	base, err := url.Parse(env.baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	client.Jar.SetCookies(base, []*http.Cookie{{
		Name:  session.DefaultCookieName,
		Value: sess.ID,
		Path:  "/",
	}})
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal json: %v", err)
		}
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return res
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status: %d", res.StatusCode)
	}
}

func TestFeedIsPublic(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.baseURL + "/v1/feed")
	if err != nil {
		t.Fatalf("feed request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("feed status: %d", res.StatusCode)
	}
}

func TestWritesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	res := doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets", map[string]string{
		"title": "x",
		"code":  "y",
	})
	_ = res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("create snippet without session status: %d", res.StatusCode)
	}
}

func TestSnippetLifecycle(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	user := createProfile(t, env)
	signIn(t, client, env, user.ID)

	createReq := map[string]string{
		"title":       "Heap sort",
		"language":    "go",
		"description": "classic heap sort",
		"code":        "func heapSort(a []int) {}",
	}
	res := doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets", createReq)
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create snippet status: %d", res.StatusCode)
	}

	var created snippets.Snippet
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode snippet: %v", err)
	}
	if created.ID == "" {
		t.Fatal("snippet missing id")
	}
	if created.CreatorID != user.ID {
		t.Fatalf("creator mismatch: %s", created.CreatorID)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/snippets/"+created.ID, nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get snippet status: %d", res.StatusCode)
	}
	var detail snippets.Detail
	if err := json.NewDecoder(res.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Liked {
		t.Fatal("new snippet must start unliked")
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/snippets/mine", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("mine status: %d", res.StatusCode)
	}
	var mine []snippets.Snippet
	if err := json.NewDecoder(res.Body).Decode(&mine); err != nil {
		t.Fatalf("decode mine: %v", err)
	}
	if len(mine) == 0 {
		t.Fatal("expected own snippets")
	}

	res = doJSON(t, client, http.MethodDelete, env.baseURL+"/v1/snippets/"+created.ID, nil)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete snippet status: %d", res.StatusCode)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/snippets/"+created.ID, nil)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted snippet status: %d", res.StatusCode)
	}
}

func TestLikeAndCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	user := createProfile(t, env)
	signIn(t, client, env, user.ID)

	createReq := map[string]string{
		"title": "Quicksort",
		"code":  "func quicksort(a []int) {}",
	}
	res := doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets", createReq)
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create snippet status: %d", res.StatusCode)
	}
	var created snippets.Snippet
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode snippet: %v", err)
	}
	t.Cleanup(func() {
		_ = env.snippets.Delete(context.Background(), created.ID, user.ID)
	})

	res = doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets/"+created.ID+"/like", map[string]bool{"liked": false})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("like status: %d", res.StatusCode)
	}
	var likeRes likes.Result
	if err := json.NewDecoder(res.Body).Decode(&likeRes); err != nil {
		t.Fatalf("decode like result: %v", err)
	}
	if !likeRes.Liked || !likeRes.Changed {
		t.Fatalf("unexpected like result: %+v", likeRes)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/snippets/"+created.ID, nil)
	defer res.Body.Close()
	var detail snippets.Detail
	if err := json.NewDecoder(res.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if !detail.Liked || detail.Likes != 1 {
		t.Fatalf("expected liked with count 1, got liked=%v count=%d", detail.Liked, detail.Likes)
	}

	res = doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets/"+created.ID+"/like", map[string]bool{"liked": true})
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unlike status: %d", res.StatusCode)
	}

	res = doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets/"+created.ID+"/comments", map[string]string{
		"body": "nice partition scheme",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create comment status: %d", res.StatusCode)
	}
	var thread []comments.Comment
	if err := json.NewDecoder(res.Body).Decode(&thread); err != nil {
		t.Fatalf("decode thread: %v", err)
	}
	if len(thread) != 1 || thread[0].Body != "nice partition scheme" {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/feed", nil)
	defer res.Body.Close()
	var view struct {
		Records []feed.Record `json:"records"`
	}
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	found := false
	for _, r := range view.Records {
		if r.ID == created.ID {
			found = true
			if r.CommentCount != 1 {
				t.Fatalf("expected comment count 1, got %d", r.CommentCount)
			}
			if !r.Liked {
				t.Fatal("expected record marked liked for viewer")
			}
		}
	}
	if !found {
		t.Fatal("created snippet missing from feed")
	}

	res = doJSON(t, client, http.MethodDelete, env.baseURL+"/v1/comments/"+thread[0].ID, nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete comment status: %d", res.StatusCode)
	}
	var after []comments.Comment
	if err := json.NewDecoder(res.Body).Decode(&after); err != nil {
		t.Fatalf("decode thread after delete: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("expected empty thread, got %+v", after)
	}
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	user := createProfile(t, env)
	signIn(t, client, env, user.ID)

	res := doJSON(t, client, http.MethodGet, env.baseURL+"/v1/profiles/me", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me status: %d", res.StatusCode)
	}
	var me profiles.ProfileView
	if err := json.NewDecoder(res.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("me id mismatch: %s != %s", me.ID, user.ID)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/profiles/"+user.Username, nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("profile by username status: %d", res.StatusCode)
	}

	res = doJSON(t, client, http.MethodDelete, env.baseURL+"/v1/session", nil)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("sign out status: %d", res.StatusCode)
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/profiles/me", nil)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me status after sign out: %d", res.StatusCode)
	}
}

func TestLikeIsIdempotentPerUser(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	user := createProfile(t, env)
	signIn(t, client, env, user.ID)

	res := doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets", map[string]string{
		"title": "Idempotency probe",
		"code":  "select 1",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create snippet status: %d", res.StatusCode)
	}
	var created snippets.Snippet
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode snippet: %v", err)
	}
	t.Cleanup(func() {
		_ = env.snippets.Delete(context.Background(), created.ID, user.ID)
	})

	// Two likes from the same stale client state must not double count.
	for i := 0; i < 2; i++ {
		res = doJSON(t, client, http.MethodPost, env.baseURL+"/v1/snippets/"+created.ID+"/like", map[string]bool{"liked": false})
		_ = res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("like status: %d", res.StatusCode)
		}
	}

	res = doJSON(t, client, http.MethodGet, env.baseURL+"/v1/snippets/"+created.ID, nil)
	defer res.Body.Close()
	var detail snippets.Detail
	if err := json.NewDecoder(res.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Likes != 1 {
		t.Fatalf("expected like count 1 after duplicate likes, got %d", detail.Likes)
	}
}
