// Package state persists the data served by the development backend: module
// tiles per panel, the export data set, the database type list and saved
// connections. SQLite is the only implementation.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/leapstack-labs/bankdash/pkg/core"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateConnection is returned when a connection name is already taken.
var ErrDuplicateConnection = errors.New("a connection with this name already exists")

// CountKind tells how a stored count is formatted for display.
type CountKind string

// Count kinds.
const (
	CountNumber  CountKind = "number"
	CountPercent CountKind = "percent"
)

// ModuleRow is a stored tile before display formatting.
type ModuleRow struct {
	Panel       string
	Position    int
	Title       string
	Count       float64
	Kind        CountKind
	Status      core.Status
	StatusText  string
	Description string
	UpdatedAt   time.Time
}

// Module returns the display record of the row.
func (r ModuleRow) Module() core.Module {
	return core.Module{
		Title:      r.Title,
		Count:      FormatCount(r.Count, r.Kind),
		Status:     r.Status,
		StatusText: r.StatusText,
	}
}

// Connection is a saved connection.
type Connection struct {
	ID string
	core.ConnectionRequest
	CreatedAt time.Time
}

// Store is the persistence used by the development backend.
type Store interface {
	Panels(ctx context.Context) ([]string, error)
	Modules(ctx context.Context, panel string) ([]ModuleRow, error)
	Module(ctx context.Context, panel, title string) (*ModuleRow, error)
	ExportRows(ctx context.Context) ([]json.RawMessage, error)
	DatabaseTypes(ctx context.Context) ([]core.DatabaseType, error)
	SaveConnection(ctx context.Context, req core.ConnectionRequest) (*Connection, error)
	Connections(ctx context.Context) ([]Connection, error)
	Close() error
}
