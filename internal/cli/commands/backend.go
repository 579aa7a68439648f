package commands

import (
	"fmt"

	"github.com/leapstack-labs/bankdash/internal/backend"
	intconfig "github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/state"
	"github.com/spf13/cobra"
)

// BackendOptions holds options for the backend command.
type BackendOptions struct {
	Port     int
	Database string
}

// NewBackendCommand creates the backend command.
func NewBackendCommand() *cobra.Command {
	opts := &BackendOptions{}

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Serve the development API",
		Long: `Serve a local API with the same shape as the remote services the
dashboard calls: module tiles per panel, module details, the export data set,
the database type list and connection saving.

Data lives in a SQLite file seeded on first start.`,
		Example: `  # Serve on the default port
  bankdash backend

  # Use a throwaway in-memory store
  bankdash backend --database :memory: --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackend(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8000)")
	cmd.Flags().StringVar(&opts.Database, "database", "", "SQLite file, or :memory:")

	return cmd
}

func runBackend(cmd *cobra.Command, opts *BackendOptions) error {
	cc := NewCommandContext(cmd)
	bcfg := cc.Cfg.GetBackendConfig()

	port := bcfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	path := bcfg.Database
	if opts.Database != "" {
		path = opts.Database
	}

	ctx := cmd.Context()
	store := state.NewSQLiteStore()
	if err := store.Open(ctx, path); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate backend store: %w", err)
	}

	local := intconfig.LocalEndpoints(port)
	r := cc.Renderer
	r.Printf("Serving development API on http://localhost:%d\n", port)
	r.Muted("compliance: " + local.Compliance)
	r.Muted("dormant:    " + local.Dormant)
	r.Println("Press Ctrl+C to stop")

	return backend.NewServer(backend.Config{
		Store:  store,
		Port:   port,
		Logger: cc.Logger,
	}).Serve(ctx)
}
