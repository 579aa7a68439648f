// Package dbprobe checks that a database described by a saved connection is
// reachable. Probers are registered per database type; Probe picks the right
// one, opens a connection, pings it and reports the server version.
package dbprobe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a probe when the target does not set one.
const DefaultTimeout = 5 * time.Second

// Target describes the database to probe.
type Target struct {
	Type     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Path is used by file-based engines (sqlite, duckdb).
	Path    string
	Options map[string]string
	Timeout time.Duration
}

// Result is the outcome of a successful probe.
type Result struct {
	Type    string
	Version string
	Latency time.Duration
}

// Prober checks connectivity for one database type.
type Prober interface {
	Probe(ctx context.Context, t Target) (*Result, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Prober)
)

// aliases maps type ids used by the connection API onto registered probers.
var aliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"mariadb":    "mysql",
	"sqlite3":    "sqlite",
	"mongo":      "mongodb",
}

// Register adds a prober factory to the registry.
func Register(name string, factory func(*slog.Logger) Prober) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a prober factory by type name or alias.
func Get(name string) (func(*slog.Logger) Prober, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[Normalize(name)]
	return f, ok
}

// Normalize lower-cases a type id and resolves known aliases.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// List returns all registered prober names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a prober exists for the type.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// New creates a prober for the given type (nil logger uses a discard logger).
func New(typ string, logger *slog.Logger) (Prober, error) {
	if strings.TrimSpace(typ) == "" {
		return nil, fmt.Errorf("database type not specified")
	}
	factory, ok := Get(typ)
	if !ok {
		return nil, &UnknownTypeError{Type: typ, Available: List()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// Probe runs the registered prober for t.Type with the target's timeout.
func Probe(ctx context.Context, t Target, logger *slog.Logger) (*Result, error) {
	p, err := New(t.Type, logger)
	if err != nil {
		return nil, err
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := p.Probe(ctx, t)
	if err != nil {
		return nil, err
	}
	res.Type = Normalize(t.Type)
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}
	return res, nil
}

// UnknownTypeError is returned when no prober exists for a database type.
type UnknownTypeError struct {
	Type      string
	Available []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown database type %q\nAvailable types: %v\nHint: Check --type or the database_type of the saved connection", e.Type, e.Available)
}
