package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mamadbah2/stockroom/internal/config"
)

type fakeServer struct {
	signIns    atomic.Int32
	rejectNext atomic.Bool
	lastQuery  url.Values
	lastPrefer string
	lastBody   string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("apikey") != "anon" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"no api key"}`)
		return
	}

	if r.URL.Path == "/auth/v1/token" {
		f.signIns.Add(1)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if r.URL.Query().Get("grant_type") != "password" || creds["password"] != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok","user":{"id":"u1"}}`)
		return
	}

	if r.Header.Get("Authorization") != "Bearer tok" || f.rejectNext.CompareAndSwap(true, false) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"JWT expired"}`)
		return
	}

	f.lastQuery = r.URL.Query()
	f.lastPrefer = r.Header.Get("Prefer")
	raw, _ := io.ReadAll(r.Body)
	f.lastBody = strings.TrimSpace(string(raw))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/products":
		_, _ = io.WriteString(w, `[{"id":"p1"},{"id":"p2"}]`)
	case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/products":
		w.WriteHeader(http.StatusCreated)
	case r.URL.Path == "/rest/v1/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"42P01","message":"relation does not exist"}`)
	default:
		w.WriteHeader(http.StatusCreated)
	}
}

func newTestClient(t *testing.T, password string) (*APIClient, *fakeServer) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(config.SupabaseConfig{URL: srv.URL + "/", AnonKey: "anon", Email: "a@b.c", Password: password}), fake
}

func TestSignInIsCached(t *testing.T) {
	c, fake := newTestClient(t, "pw")

	s, err := c.SignIn(context.Background())
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if s.UserID != "u1" || s.AccessToken != "tok" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if _, err := c.Select(context.Background(), "products", url.Values{"user_id": {"eq.u1"}}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := fake.signIns.Load(); got != 1 {
		t.Fatalf("expected one sign in, got %d", got)
	}
	if fake.lastQuery.Get("user_id") != "eq.u1" {
		t.Fatalf("filter not forwarded: %v", fake.lastQuery)
	}
}

func TestSignInRejected(t *testing.T) {
	c, _ := newTestClient(t, "wrong")

	_, err := c.SignIn(context.Background())
	if !errors.Is(err, ErrUnauthorized) || !strings.Contains(err.Error(), "Invalid login credentials") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if err := c.Insert(context.Background(), "reorder_log", []int{1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("requests without a session must fail unauthorized, got %v", err)
	}
}

func TestSelectDecodesRawRows(t *testing.T) {
	c, _ := newTestClient(t, "pw")

	rows, err := c.Select(context.Background(), "products", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 || string(rows[1]) != `{"id":"p2"}` {
		t.Fatalf("unexpected rows: %s", rows)
	}
}

func TestUpsertSendsConflictTarget(t *testing.T) {
	c, fake := newTestClient(t, "pw")

	if err := c.Upsert(context.Background(), "products", "user_id,id", []map[string]string{{"id": "p1"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if fake.lastQuery.Get("on_conflict") != "user_id,id" {
		t.Fatalf("on_conflict=%q", fake.lastQuery.Get("on_conflict"))
	}
	if !strings.Contains(fake.lastPrefer, "resolution=merge-duplicates") {
		t.Fatalf("Prefer=%q", fake.lastPrefer)
	}
	if fake.lastBody != `[{"id":"p1"}]` {
		t.Fatalf("body=%s", fake.lastBody)
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	c, fake := newTestClient(t, "pw")
	if _, err := c.SignIn(context.Background()); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	fake.rejectNext.Store(true)
	if _, err := c.Select(context.Background(), "products", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := c.Select(context.Background(), "products", nil); err != nil {
		t.Fatalf("select after re-auth: %v", err)
	}
	if got := fake.signIns.Load(); got != 2 {
		t.Fatalf("expected a second sign in, got %d", got)
	}
}

func TestErrorsCarryPostgRESTCode(t *testing.T) {
	c, _ := newTestClient(t, "pw")

	err := c.Insert(context.Background(), "missing", []int{1})
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected a plain error, got %v", err)
	}
	if !strings.Contains(err.Error(), "42P01") || !strings.Contains(err.Error(), "relation does not exist") {
		t.Fatalf("unexpected error: %v", err)
	}
}
