// Package provider implements the remote-or-fallback data source behind the
// analyser panels.
//
// A Provider fetches a modules payload from an optional endpoint and keeps the
// last successful result. When no endpoint is configured, or a fetch fails,
// callers keep rendering the cached data or the panel's fallback list.
//
// Every fetch takes a sequence number; a response is applied only if it belongs
// to the latest request issued (latest-request-wins). Starting a new fetch
// cancels the previous in-flight request, and Disconnect invalidates it.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// ErrNoEndpoint is returned when a remote operation needs an endpoint and none is set.
var ErrNoEndpoint = errors.New("an API endpoint is required")

// ErrSuperseded is returned by a fetch whose response was discarded because a
// newer request was issued (or the provider was disconnected) meanwhile.
var ErrSuperseded = errors.New("response superseded by a newer request")

const maxErrorBody = 512

// Config holds the dependencies of a Provider.
type Config struct {
	// Client performs the HTTP calls. Nil uses a client with DefaultHTTPTimeout.
	Client *http.Client
	// StaleTime is the freshness window of a successful result.
	// Zero uses DefaultStaleTime.
	StaleTime time.Duration
	// Fallback yields the built-in modules rendered without remote data.
	Fallback func() []core.Module
	// OnChange is invoked (outside any lock) after each state change.
	OnChange func()
	Logger   *slog.Logger
	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

// Provider is the remote-or-fallback view model of one analyser panel.
// It is safe for concurrent use.
type Provider struct {
	client    *http.Client
	staleTime time.Duration
	fallback  func() []core.Module
	onChange  func()
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	endpoint  string
	enabled   bool
	phase     Phase
	data      []core.Module
	fetchedAt time.Time
	loading   bool
	err       error
	seq       uint64
	cancel    context.CancelFunc
}

// New creates a Provider. It starts Disconnected with no endpoint.
func New(cfg Config) *Provider {
	p := &Provider{
		client:    cfg.Client,
		staleTime: cfg.StaleTime,
		fallback:  cfg.Fallback,
		onChange:  cfg.OnChange,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	if p.staleTime <= 0 {
		p.staleTime = config.DefaultStaleTime
	}
	if p.fallback == nil {
		p.fallback = func() []core.Module { return nil }
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Configure sets the endpoint and whether remote fetching is enabled.
// Changing the endpoint, disabling fetching or clearing the endpoint discards
// cached data and invalidates any in-flight request, so the panel falls back
// to its built-in modules. Configure never issues a request by itself.
func (p *Provider) Configure(endpoint string, enabled bool) {
	endpoint = strings.TrimSpace(endpoint)

	p.mu.Lock()
	changedEndpoint := endpoint != p.endpoint
	p.endpoint = endpoint
	p.enabled = enabled
	if changedEndpoint || !p.activeLocked() {
		p.invalidateLocked()
		p.data = nil
		p.fetchedAt = time.Time{}
		p.err = nil
	}
	if !p.activeLocked() {
		p.phase = PhaseDisconnected
	}
	p.mu.Unlock()

	p.changed()
}

// Connect enables remote fetching against endpoint and performs the first fetch.
// A blank endpoint is rejected with ErrNoEndpoint and leaves the state untouched.
func (p *Provider) Connect(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ErrNoEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	p.mu.Lock()
	if endpoint != p.endpoint {
		p.data = nil
		p.fetchedAt = time.Time{}
	}
	p.endpoint = endpoint
	p.enabled = true
	p.phase = PhaseConnecting
	p.err = nil
	p.mu.Unlock()

	p.logger.Info("connecting to module API", "endpoint", endpoint)
	return p.Fetch(ctx)
}

// Disconnect disables remote fetching, discards cached data and drops any
// response still in flight. The endpoint text is kept for the next Connect.
func (p *Provider) Disconnect() {
	p.mu.Lock()
	p.invalidateLocked()
	p.enabled = false
	p.phase = PhaseDisconnected
	p.data = nil
	p.fetchedAt = time.Time{}
	p.err = nil
	p.loading = false
	p.mu.Unlock()

	p.changed()
}

// Fetch issues a single GET against the configured endpoint.
//
// When fetching is disabled or no endpoint is set, Fetch returns nil without
// touching the network. On failure the error is recorded (and returned) while
// previously cached data is kept. ErrSuperseded is returned when the response
// was discarded in favour of a newer request.
func (p *Provider) Fetch(ctx context.Context) error {
	p.mu.Lock()
	if !p.activeLocked() {
		p.mu.Unlock()
		return nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	endpoint := p.endpoint
	p.loading = true
	p.mu.Unlock()
	defer cancel()

	p.changed()

	p.logger.Debug("fetching modules", "endpoint", endpoint, "seq", seq)
	mods, err := p.fetchModules(ctx, endpoint)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("discarding superseded response", "endpoint", endpoint, "seq", seq)
		return ErrSuperseded
	}
	p.loading = false
	p.cancel = nil
	if err != nil {
		p.err = err
		if p.phase != PhaseDisconnected {
			p.phase = PhaseErrored
		}
	} else {
		p.data = mods
		p.fetchedAt = p.now()
		p.err = nil
		if p.phase != PhaseDisconnected {
			p.phase = PhaseConnected
		}
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("module fetch failed, using fallback data", "endpoint", endpoint, "error", err)
	}
	p.changed()
	return err
}

// Refetch repeats the fetch against the same endpoint without changing
// whether fetching is enabled.
func (p *Provider) Refetch(ctx context.Context) error {
	return p.Fetch(ctx)
}

// RefetchIfStale refetches only when the cached result is older than the
// freshness window (or absent). It reports whether a fetch was issued.
func (p *Provider) RefetchIfStale(ctx context.Context) (bool, error) {
	p.mu.Lock()
	shouldFetch := p.activeLocked() && !p.loading && p.staleLocked()
	p.mu.Unlock()

	if !shouldFetch {
		return false, nil
	}
	return true, p.Fetch(ctx)
}

// Stale reports whether cached data is missing or older than the freshness window.
func (p *Provider) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staleLocked()
}

// Modules returns the modules to render: the cached remote data when present,
// otherwise the fallback list.
func (p *Provider) Modules() []core.Module {
	return p.Snapshot().Modules
}

// Snapshot returns a consistent copy of the provider state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	s := Snapshot{
		Endpoint:  p.endpoint,
		Enabled:   p.enabled,
		Phase:     p.phase,
		Data:      core.CloneModules(p.data),
		IsLoading: p.loading,
		Err:       p.err,
		FetchedAt: p.fetchedAt,
		Stale:     p.staleLocked(),
	}
	p.mu.Unlock()

	if s.Data != nil {
		s.Modules = s.Data
	} else {
		s.Modules = p.fallback()
		s.UsingFallback = true
	}
	return s
}

// FetchDetail retrieves the detail document of one module from
// endpoint + "/details/" + escaped title. It requires an active endpoint.
func (p *Provider) FetchDetail(ctx context.Context, title string) (json.RawMessage, error) {
	p.mu.Lock()
	active := p.activeLocked()
	endpoint := p.endpoint
	p.mu.Unlock()

	if !active {
		return nil, ErrNoEndpoint
	}

	detailURL, err := DetailURL(endpoint, title)
	if err != nil {
		return nil, err
	}

	body, err := p.get(ctx, detailURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var detail json.RawMessage
	if err := json.NewDecoder(body).Decode(&detail); err != nil {
		return nil, &core.DecodeError{Path: "$", Reason: "detail is not valid JSON", Err: err}
	}
	return detail, nil
}

// DetailURL builds endpoint + "/details/" + url-escaped title, keeping any
// query string of the endpoint.
func DetailURL(endpoint, title string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	escaped := strings.TrimRight(u.EscapedPath(), "/") + "/details/" + url.PathEscape(title)
	u.Path = strings.TrimRight(u.Path, "/") + "/details/" + title
	u.RawPath = escaped
	return u.String(), nil
}

func (p *Provider) fetchModules(ctx context.Context, endpoint string) ([]core.Module, error) {
	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	payload, err := core.DecodeModulesPayload(body)
	if err != nil {
		return nil, err
	}
	return payload.Modules, nil
}

// get performs a GET and returns the body of a 2xx response.
func (p *Provider) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, &core.StatusError{URL: target, Code: resp.StatusCode, Body: string(snippet)}
	}
	return resp.Body, nil
}

func (p *Provider) activeLocked() bool {
	return p.enabled && p.endpoint != ""
}

func (p *Provider) staleLocked() bool {
	if p.data == nil {
		return true
	}
	return p.now().Sub(p.fetchedAt) >= p.staleTime
}

// invalidateLocked drops the in-flight request, if any.
func (p *Provider) invalidateLocked() {
	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.loading = false
}

func (p *Provider) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
