package state

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(ctx, ":memory:"))
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "backend.db")

	store := NewSQLiteStore()
	require.NoError(t, store.Open(ctx, path))
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore()
	require.NoError(t, reopened.Open(ctx, path))
	defer func() { _ = reopened.Close() }()
	panels, err := reopened.Panels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"compliance", "dormant"}, panels)
}

func TestSQLiteStore_SeedMatchesCatalog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	defaults := catalog.Default()

	for _, panel := range []catalog.PanelID{catalog.PanelCompliance, catalog.PanelDormant} {
		t.Run(string(panel), func(t *testing.T) {
			rows, err := store.Modules(ctx, string(panel))
			require.NoError(t, err)

			got := make([]core.Module, len(rows))
			for i, r := range rows {
				got[i] = r.Module()
			}
			assert.Equal(t, defaults.Fallback(panel), got)
		})
	}
}

func TestSQLiteStore_Module(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Module(ctx, "dormant", "High Value Dormant (≥25K AED)")
	require.NoError(t, err)
	assert.Equal(t, core.StatusFlagged, m.Status)
	assert.Equal(t, 9, m.Position)
	assert.NotEmpty(t, m.Description)
	assert.False(t, m.UpdatedAt.IsZero())

	_, err = store.Module(ctx, "dormant", "Nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Modules(ctx, "sanctions")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ExportRows(t *testing.T) {
	store := setupTestStore(t)

	rows, err := store.ExportRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	var first map[string]any
	require.NoError(t, json.Unmarshal(rows[0], &first))
	assert.Equal(t, "AE-0001", first["account_id"])
}

func TestSQLiteStore_DatabaseTypes(t *testing.T) {
	store := setupTestStore(t)

	types, err := store.DatabaseTypes(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, types)
	assert.Equal(t, core.DatabaseType{ID: "postgresql", Name: "PostgreSQL"}, types[0])
}

func TestSQLiteStore_SaveConnection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	req := core.ConnectionRequest{
		ConnectionName: "core-banking",
		DatabaseType:   "postgresql",
		ServerName:     "db.internal",
		DatabaseName:   "accounts",
		Port:           5432,
		Username:       "ops",
		Description:    core.DescribeConnection("accounts", "db.internal"),
	}

	saved, err := store.SaveConnection(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	_, err = store.SaveConnection(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicateConnection)

	list, err := store.Connections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, req, list[0].ConnectionRequest)
	assert.Equal(t, saved.ID, list[0].ID)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	ctx := context.Background()

	_, err := store.Modules(ctx, "dormant")
	assert.Error(t, err)
	_, err = store.ExportRows(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Migrate(ctx))
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_QueryErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "modules query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT panel, position").WillReturnError(errors.New("disk I/O error"))
			},
			run: func(s *SQLiteStore) error {
				_, err := s.Modules(context.Background(), "dormant")
				return err
			},
			errMsg: "failed to query modules",
		},
		{
			name: "export row is not json",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT payload FROM export_rows").
					WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow("{broken"))
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ExportRows(context.Background())
				return err
			},
			errMsg: "not valid JSON",
		},
		{
			name: "database types scan fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name FROM database_types").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pg"))
			},
			run: func(s *SQLiteStore) error {
				_, err := s.DatabaseTypes(context.Background())
				return err
			},
			errMsg: "failed to scan database type",
		},
		{
			name: "insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO connections").WillReturnError(errors.New("database is locked"))
			},
			run: func(s *SQLiteStore) error {
				_, err := s.SaveConnection(context.Background(), core.ConnectionRequest{ConnectionName: "x"})
				return err
			},
			errMsg: "failed to save connection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			err = tt.run(NewSQLiteStoreFromDB(db))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		v    float64
		kind CountKind
		want string
	}{
		{1247, CountNumber, "1,247"},
		{2156, CountNumber, "2,156"},
		{89, CountNumber, "89"},
		{1234567, CountNumber, "1,234,567"},
		{98, CountPercent, "98%"},
		{97.5, CountPercent, "97.5%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.v, tt.kind))
		})
	}
}
