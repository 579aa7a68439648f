package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

func TestWorkspace_Analyser(t *testing.T) {
	ws := NewWorkspace("s1", Config{
		Endpoints: config.Endpoints{
			Compliance: "http://127.0.0.1:1/api/compliance",
			Dormant:    "http://127.0.0.1:1/api/dormant",
		},
		Logger: testutil.NewTestLogger(t),
	})

	compliance, panel, ok := ws.Analyser(catalog.PanelCompliance)
	require.True(t, ok)
	assert.Equal(t, "Compliance Analyser Dashboard", panel.Title)
	snap := compliance.Snapshot()
	assert.True(t, snap.Enabled, "non-interactive panel fetches from its configured endpoint")
	assert.True(t, snap.UsingFallback)
	assert.Len(t, snap.Modules, 11)

	dormant, panel, ok := ws.Analyser(catalog.PanelDormant)
	require.True(t, ok)
	assert.True(t, panel.Interactive)
	snap = dormant.Snapshot()
	assert.False(t, snap.Enabled, "interactive panel starts disconnected")
	assert.Equal(t, "http://127.0.0.1:1/api/dormant", snap.Endpoint)
	assert.Equal(t, provider.PhaseDisconnected, snap.Phase)

	again, _, _ := ws.Analyser(catalog.PanelDormant)
	assert.Same(t, dormant, again)

	_, _, ok = ws.Analyser("sanctions")
	assert.False(t, ok)
}

func TestWorkspace_NoEndpointStaysOffline(t *testing.T) {
	ws := NewWorkspace("s1", Config{})
	p, _, ok := ws.Analyser(catalog.PanelCompliance)
	require.True(t, ok)
	assert.False(t, p.Snapshot().Enabled)
}

func TestWorkspace_OnChangeCarriesID(t *testing.T) {
	var mu sync.Mutex
	var ids []string
	ws := NewWorkspace("s42", Config{OnChange: func(id string) {
		mu.Lock()
		ids = append(ids, id)
		mu.Unlock()
	}})

	ws.Upload.SelectFiles([]string{"accounts.csv"})
	ws.Connector.CloseMessage()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.Equal(t, "s42", id)
	}
}

func TestRegistry_GetAndSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(Config{}, time.Hour)
	r.now = func() time.Time { return now }

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	r.Get("b")
	assert.Equal(t, 2, r.Len())

	now = now.Add(45 * time.Minute)
	r.Get("a")

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, r.Sweep(), "only b has been idle for over an hour")

	_, ok := r.Lookup("b")
	assert.False(t, ok)
	got, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistry_Middleware(t *testing.T) {
	r := NewRegistry(Config{}, time.Hour)
	store := newTestStore()

	var seen []*Workspace
	handler := r.Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ws, ok := FromContext(req.Context())
		require.True(t, ok)
		seen = append(seen, ws)
	}))

	// First visit: a cookie is issued.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	// Returning visit with the cookie reuses the workspace.
	req := httptest.NewRequest(http.MethodGet, "/dormant", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie for a known session")

	// A tampered cookie starts a new session.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, rec.Result().Cookies(), 1)

	require.Len(t, seen, 3)
	assert.Same(t, seen[0], seen[1])
	assert.NotSame(t, seen[0], seen[2])
	assert.Equal(t, 2, r.Len())
}
