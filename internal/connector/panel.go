package connector

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/leapstack-labs/bankdash/pkg/core"
)

// Panel messages.
const (
	MsgSaving       = "Attempting to save database connection details..."
	MsgReconnecting = "Attempting to reconnect/re-verify database connection..."
	MsgRefreshed    = "Database types refreshed and form cleared."
	MsgSaved        = "Connection details saved successfully: "
	MsgServerError  = "Error saving database connection details: A server error occurred (Status 500). " +
		"Please check your input and try again, or contact support if the issue persists."
)

// State is a copy of the panel's view state.
type State struct {
	Section     SectionID
	Form        Form
	Types       []core.DatabaseType
	Loading     bool
	Error       string
	Message     string
	ShowMessage bool
}

// Panel is the configuration view model. It is safe for concurrent use.
type Panel struct {
	client   *Client
	logger   *slog.Logger
	onChange func()

	mu    sync.Mutex
	state State
	seq   uint64
}

// NewPanel creates a panel using client for all remote calls.
func NewPanel(client *Client, logger *slog.Logger, onChange func()) *Panel {
	if client == nil {
		client = NewClient(nil, "", "")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Panel{
		client:   client,
		logger:   logger,
		onChange: onChange,
		state:    State{Section: SectionDataConnector, Loading: true},
	}
}

// State returns a snapshot of the panel.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Types = append([]core.DatabaseType(nil), p.state.Types...)
	return s
}

// Load fetches the database types and selects the first one.
func (p *Panel) Load(ctx context.Context) error {
	_, err := p.loadTypes(ctx, "Failed to load database types: ")
	return err
}

// Refresh clears the text fields and reloads the database types.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.state.Form.ClearText()
	p.mu.Unlock()

	applied, err := p.loadTypes(ctx, "Failed to refresh database types: ")
	if !applied {
		return err
	}

	p.mu.Lock()
	if err != nil && !errors.Is(err, ErrUnexpectedTypes) {
		p.state.Message = "Failed to refresh: " + err.Error()
	} else {
		p.state.Message = MsgRefreshed
	}
	p.state.ShowMessage = true
	p.mu.Unlock()

	p.changed()
	return err
}

// loadTypes runs one type-list request under the sequence guard. It reports
// whether the result was applied (false when a newer request superseded it).
func (p *Panel) loadTypes(ctx context.Context, errPrefix string) (bool, error) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.state.Loading = true
	p.state.Error = ""
	p.mu.Unlock()
	p.changed()

	types, err := p.client.ListDatabaseTypes(ctx)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("discarding superseded database type list", "seq", seq)
		return false, err
	}
	p.state.Loading = false
	switch {
	case errors.Is(err, ErrUnexpectedTypes):
		p.state.Error = MsgUnexpectedTypes
	case err != nil:
		p.state.Error = errPrefix + err.Error()
	default:
		p.state.Types = types
		if len(types) > 0 {
			p.state.Form.DatabaseType = types[0].ID
		}
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("failed to fetch database types", "url", p.client.TypesURL, "error", err)
	}
	p.changed()
	return true, err
}

// SetForm replaces the form text without submitting it.
func (p *Panel) SetForm(f Form) {
	p.mu.Lock()
	p.state.Form = f
	p.mu.Unlock()
	p.changed()
}

// Submit validates the form and saves the connection with exactly one POST.
// Validation failures are shown and returned without contacting the server.
func (p *Panel) Submit(ctx context.Context, f Form) error {
	p.mu.Lock()
	p.state.Form = f
	p.mu.Unlock()

	port, err := f.Validate()
	if err != nil {
		p.show(err.Error())
		return err
	}

	p.show(MsgSaving)

	result, err := p.client.SaveConnection(ctx, f.Request(port))
	if err != nil {
		p.logger.Error("error saving database connection details", "url", p.client.SaveURL, "error", err)
		var statusErr *core.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusInternalServerError {
			p.show(MsgServerError)
		} else {
			p.show("Error saving database connection details: " + err.Error())
		}
		return err
	}

	if result.Success {
		p.logger.Info("connection saved", "connection", f.ConnectionName, "type", f.DatabaseType)
		p.show(MsgSaved + result.Message)
		return nil
	}

	msg := result.Message
	if msg == "" {
		msg = "Unknown error"
	}
	p.show("Failed to save connection details: " + msg)
	return nil
}

// Reconnect announces a re-verification and submits the form again.
func (p *Panel) Reconnect(ctx context.Context, f Form) error {
	p.show(MsgReconnecting)
	return p.Submit(ctx, f)
}

// CloseMessage hides and clears the message box.
func (p *Panel) CloseMessage() {
	p.mu.Lock()
	p.state.ShowMessage = false
	p.state.Message = ""
	p.mu.Unlock()
	p.changed()
}

// SelectSection switches the sidebar section.
func (p *Panel) SelectSection(id SectionID) error {
	if _, err := LookupSection(id); err != nil {
		return err
	}
	p.mu.Lock()
	p.state.Section = id
	p.mu.Unlock()
	p.changed()
	return nil
}

func (p *Panel) show(msg string) {
	p.mu.Lock()
	p.state.Message = msg
	p.state.ShowMessage = true
	p.mu.Unlock()
	p.changed()
}

func (p *Panel) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
