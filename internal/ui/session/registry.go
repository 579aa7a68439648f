package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/bankdash/internal/config"
)

// CookieName is the name of the session cookie.
const CookieName = "bankdash"

const idKey = "workspace"

// Registry keeps the workspaces of active sessions.
type Registry struct {
	cfg    Config
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// NewRegistry creates a registry whose workspaces are built from cfg and
// dropped after ttl without requests. A zero ttl uses DefaultSessionTTL.
func NewRegistry(cfg Config, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		cfg:     cfg,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Get returns the workspace of id, creating it when needed, and marks it used.
func (r *Registry) Get(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry{ws: NewWorkspace(id, r.cfg)}
		r.entries[id] = e
		r.logger.Debug("workspace created", "session", id)
	}
	e.lastSeen = r.now()
	return e.ws
}

// Lookup returns the workspace of id without creating one.
func (r *Registry) Lookup(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.ws, true
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes and removes workspaces idle for longer than the TTL.
// It returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*Workspace
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.ws)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range idle {
		ws.Close()
		r.logger.Debug("workspace expired", "session", ws.ID)
	}
	return len(idle)
}

// Run sweeps idle workspaces every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// Middleware resolves the session cookie to a workspace and stores it in
// the request context. Requests without a valid cookie get a new session.
func (r *Registry) Middleware(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := store.Get(req, CookieName)
			if err != nil {
				// The store still hands back a fresh session.
				r.logger.Debug("discarding invalid session cookie", "error", err)
			}

			id, _ := sess.Values[idKey].(string)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				sess.Values[idKey] = id
				if err := sess.Save(req, w); err != nil {
					r.logger.Error("failed to save session", "error", err)
				}
			}

			ws := r.Get(id)
			next.ServeHTTP(w, req.WithContext(WithWorkspace(req.Context(), ws)))
		})
	}
}
