package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/bankdash/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// NewSQLiteStoreFromDB wraps an already open connection.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Panels returns the panel ids that have modules, in first-position order.
func (s *SQLiteStore) Panels(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT panel FROM modules GROUP BY panel ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var panels []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan panel: %w", err)
		}
		panels = append(panels, p)
	}
	return panels, rows.Err()
}

const moduleColumns = `panel, position, title, count_value, count_kind, status, status_text, description, updated_at`

// Modules returns the tiles of a panel in display order. An unknown panel
// yields ErrNotFound.
func (s *SQLiteStore) Modules(ctx context.Context, panel string) ([]ModuleRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE panel = ? ORDER BY position`, panel)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ModuleRow
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read modules: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("panel %q: %w", panel, ErrNotFound)
	}
	return out, nil
}

// Module returns a single tile.
func (s *SQLiteStore) Module(ctx context.Context, panel, title string) (*ModuleRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE panel = ? AND title = ?`, panel, title)
	m, err := scanModule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module %q in panel %q: %w", title, panel, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(sc scanner) (*ModuleRow, error) {
	var m ModuleRow
	var kind, status string
	var description sql.NullString
	var updated string
	if err := sc.Scan(&m.Panel, &m.Position, &m.Title, &m.Count, &kind, &status, &m.StatusText, &description, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan module: %w", err)
	}
	m.Kind = CountKind(kind)
	m.Status = core.Status(status)
	m.Description = description.String
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		m.UpdatedAt = t
	}
	return &m, nil
}

// ExportRows returns the export data set, one JSON object per row, with the
// keys in their stored order.
func (s *SQLiteStore) ExportRows(ctx context.Context) ([]json.RawMessage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM export_rows ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []json.RawMessage{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		if !json.Valid([]byte(payload)) {
			return nil, fmt.Errorf("export row is not valid JSON: %.40s", payload)
		}
		out = append(out, json.RawMessage(payload))
	}
	return out, rows.Err()
}

// DatabaseTypes returns the supported database types in display order.
func (s *SQLiteStore) DatabaseTypes(ctx context.Context) ([]core.DatabaseType, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM database_types ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query database types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []core.DatabaseType{}
	for rows.Next() {
		var dt core.DatabaseType
		if err := rows.Scan(&dt.ID, &dt.Name); err != nil {
			return nil, fmt.Errorf("failed to scan database type: %w", err)
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

// SaveConnection stores a connection under a new id.
func (s *SQLiteStore) SaveConnection(ctx context.Context, req core.ConnectionRequest) (*Connection, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	conn := &Connection{
		ID:                uuid.New().String(),
		ConnectionRequest: req,
		CreatedAt:         s.now().UTC().Truncate(time.Second),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (id, connection_name, database_type, server_name, database_name, port, username, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conn.ID, req.ConnectionName, req.DatabaseType, req.ServerName, req.DatabaseName,
		req.Port, req.Username, req.Description, conn.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateConnection
		}
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}
	return conn, nil
}

// Connections lists saved connections, oldest first.
func (s *SQLiteStore) Connections(ctx context.Context) ([]Connection, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, connection_name, database_type, server_name, database_name, port, username, description, created_at
		 FROM connections ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Connection
	for rows.Next() {
		var c Connection
		var created string
		if err := rows.Scan(&c.ID, &c.ConnectionName, &c.DatabaseType, &c.ServerName, &c.DatabaseName,
			&c.Port, &c.Username, &c.Description, &created); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, c)
	}
	return out, rows.Err()
}
