package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"remote-viewing/internal/config"
	"remote-viewing/internal/images"
	"remote-viewing/internal/viewing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testImage = "https://images.example.test/target.jpg"

type testApp struct {
	ts    *httptest.Server
	store *viewing.MemoryStore
}

type appOptions struct {
	images   []string
	policy   viewing.EmptyGuessPolicy
	observer viewing.Observer
	gatherer prometheus.Gatherer
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	if opts.images == nil {
		opts.images = []string{testImage}
	}
	store := viewing.NewMemoryStore()
	manager, err := viewing.NewManager(&viewing.Config{
		Store:            store,
		Images:           images.NewStatic(opts.images),
		EmptyGuessPolicy: opts.policy,
		Observer:         opts.observer,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	srv := New(config.Default(), Options{
		Manager:  manager,
		Gatherer: opts.gatherer,
	})
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return &testApp{ts: ts, store: store}
}

// seed stores a round directly, bypassing the handlers.
func (a *testApp) seed(t *testing.T, name, code, guess string) uint {
	t.Helper()
	session := &viewing.Session{
		ImageURL:         testImage,
		Name:             name,
		UniqueIdentifier: code,
		CreatedDate:      time.Now().UTC(),
	}
	if guess != "" {
		session.UserGuess = &guess
	}
	if err := a.store.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session.ID
}

func (a *testApp) get(t *testing.T, id uint) *viewing.Session {
	t.Helper()
	session, err := a.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get session %d: %v", id, err)
	}
	return session
}

// browser keeps cookies between requests and does not follow redirects.
type browser struct {
	ts     *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, app *testApp) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &browser{
		ts: app.ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := b.client.Get(b.ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (b *browser) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := b.client.PostForm(b.ts.URL+path, form)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, resp.StatusCode)
	}
}

func expectContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Fatalf("expected body to contain %q", want)
	}
}

func expectNotContains(t *testing.T, body, unwanted string) {
	t.Helper()
	if strings.Contains(body, unwanted) {
		t.Fatalf("expected body not to contain %q", unwanted)
	}
}
