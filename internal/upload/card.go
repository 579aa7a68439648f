// Package upload implements the data-connection card: file selection, CSV
// export of the source data set, and the mocked URL and Azure connectors.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/csvexport"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// Phase is the file-selection phase of the card.
type Phase int

// Card phases. The transition NoFiles -> FilesSelected is one-way.
const (
	PhaseNoFiles Phase = iota
	PhaseFilesSelected
)

func (p Phase) String() string {
	if p == PhaseFilesSelected {
		return "files-selected"
	}
	return "no-files"
}

// Status messages.
const (
	StatusFetching        = "Fetching data..."
	StatusDownloadStarted = "CSV download started"
	StatusDownloadFailed  = "Download failed"
	StatusLLMStarted      = "LLM operation started"
	StatusURLConnected    = "URL Connection Successful (mocked)."
	StatusAzureConnected  = "Azure SQL Connection Successful (mocked)."
	StatusAzureRequired   = "Please select an Azure resource first."
)

// AzureResource is a selectable Azure SQL target.
type AzureResource struct {
	ID    string
	Label string
}

// AzureResources lists the Azure targets offered by the card.
var AzureResources = []AzureResource{
	{ID: "banking-analytics", Label: "Banking-Analytics-DB"},
	{ID: "compliance-warehouse", Label: "Compliance-Data-Warehouse"},
}

// State is a copy of the card's view state.
type State struct {
	Phase     Phase
	FileNames []string
	Status    string
	URL       string
	Azure     string
}

// Config holds the dependencies of a Card.
type Config struct {
	Client    *http.Client
	SourceURL string
	// MockDelay is how long the mocked connectors take. Zero means immediate.
	MockDelay time.Duration
	OnChange  func()
	Logger    *slog.Logger
}

// Card is the upload card view model. It is safe for concurrent use.
type Card struct {
	client    *http.Client
	sourceURL string
	delay     time.Duration
	onChange  func()
	logger    *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a card in the NoFiles phase.
func New(cfg Config) *Card {
	c := &Card{
		client:    cfg.Client,
		sourceURL: cfg.SourceURL,
		delay:     cfg.MockDelay,
		onChange:  cfg.OnChange,
		logger:    cfg.Logger,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	if c.sourceURL == "" {
		c.sourceURL = config.DefaultExportSourceURL
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// State returns a snapshot of the card.
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.FileNames = append([]string(nil), c.state.FileNames...)
	return s
}

// SelectFiles records the chosen file names. An empty selection is ignored;
// once files are selected the card never returns to NoFiles.
func (c *Card) SelectFiles(names []string) {
	var kept []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return
	}

	c.mu.Lock()
	c.state.Phase = PhaseFilesSelected
	c.state.FileNames = kept
	c.state.Status = "Uploaded: " + strings.Join(kept, ", ")
	c.mu.Unlock()

	c.logger.Info("files selected", "files", kept)
	c.changed()
}

// Download fetches the export source and converts it to CSV.
// It returns the CSV bytes and the suggested file name.
func (c *Card) Download(ctx context.Context) ([]byte, string, error) {
	c.setStatus(StatusFetching)

	data, err := c.exportCSV(ctx)
	if err != nil {
		c.logger.Error("csv export failed", "url", c.sourceURL, "error", err)
		c.setStatus(StatusDownloadFailed)
		return nil, "", err
	}

	c.setStatus(StatusDownloadStarted)
	return data, config.DefaultExportFilename, nil
}

func (c *Card) exportCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.sourceURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.StatusError{URL: c.sourceURL, Code: resp.StatusCode}
	}

	var buf bytes.Buffer
	if err := csvexport.Convert(resp.Body, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert export data: %w", err)
	}
	return buf.Bytes(), nil
}

// RunLLM starts the (placeholder) LLM operation.
func (c *Card) RunLLM() {
	c.logger.Info("llm operation requested")
	c.setStatus(StatusLLMStarted)
}

// ConnectURL runs the mocked URL connector. It blocks for the mock delay
// unless ctx is cancelled first.
func (c *Card) ConnectURL(ctx context.Context, target string) error {
	c.mu.Lock()
	c.state.URL = target
	c.state.Status = "Connecting to URL: " + target
	c.mu.Unlock()
	c.changed()

	if err := c.wait(ctx); err != nil {
		return err
	}
	c.setStatus(StatusURLConnected)
	return nil
}

// ConnectAzure runs the mocked Azure SQL connector for resource.
func (c *Card) ConnectAzure(ctx context.Context, resource string) error {
	c.mu.Lock()
	c.state.Azure = resource
	c.mu.Unlock()

	if !validAzureResource(resource) {
		c.setStatus(StatusAzureRequired)
		return fmt.Errorf("unknown azure resource %q", resource)
	}

	c.setStatus("Connecting to Azure: " + resource)
	if err := c.wait(ctx); err != nil {
		return err
	}
	c.setStatus(StatusAzureConnected)
	return nil
}

func validAzureResource(id string) bool {
	for _, r := range AzureResources {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (c *Card) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Card) setStatus(s string) {
	c.mu.Lock()
	c.state.Status = s
	c.mu.Unlock()
	c.changed()
}

func (c *Card) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
