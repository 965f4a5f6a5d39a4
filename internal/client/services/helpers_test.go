package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake backend ----

// fakeBackend is an httptest server that counts requests per path.
type fakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{calls: map[string]int{}, handlers: map[string]http.HandlerFunc{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		h := b.handlers[r.URL.Path]
		b.mu.Unlock()

		if h == nil {
			writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

func (b *fakeBackend) reply(path string, status int, body string) {
	b.handle(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// ---- notifier ----

type note struct{ title, description string }

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Notify(title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{title, description})
}

func (n *recordingNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

// ---- wiring ----

type testEnv struct {
	backend  *fakeBackend
	db       *sql.DB
	api      *client.HTTPClient
	notifier *recordingNotifier
	session  *SessionManager
	verifier *Verifier
	history  *HistoryService
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	db := openDB(t, filepath.Join(t.TempDir(), "session.db"))
	return newTestEnvOn(t, backend, db)
}

func newTestEnvOn(t *testing.T, backend *fakeBackend, db *sql.DB) *testEnv {
	t.Helper()
	log := logging.Nop()
	api := client.NewHTTPClient(backend.srv.URL, 0, log)
	notifier := &recordingNotifier{}
	session := NewSessionManager(api, db, log, notifier)
	return &testEnv{
		backend:  backend,
		db:       db,
		api:      api,
		notifier: notifier,
		session:  session,
		verifier: NewVerifier(api, session, log),
		history:  NewHistoryService(api, session, log),
	}
}

func storedValue(t *testing.T, db *sql.DB, key string) (string, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel")
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
