package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/bankdash/internal/upload"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Source string
	File   string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the export data set as CSV",
		Long: `Fetch the JSON export data set and write it as CSV.

Columns are the union of the record keys in first-seen order. Nested values
are written as compact JSON.`,
		Example: `  # Write exported-data.csv in the current directory
  bankdash export

  # Write to stdout from the local backend
  bankdash export -f - --source http://localhost:8000/api/data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "Export source URL (default: endpoints.export_source)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Output file, or - for stdout (default: exported-data.csv)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	cc := NewCommandContext(cmd)

	source := cc.Endpoints().ExportSource
	if opts.Source != "" {
		source = opts.Source
	}

	card := upload.New(upload.Config{
		Client:    cc.HTTPClient(),
		SourceURL: source,
		Logger:    cc.Logger,
	})

	data, name, err := card.Download(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", upload.StatusDownloadFailed, err)
	}

	if opts.File == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := opts.File
	if path == "" {
		path = name
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cc.Renderer.Success(fmt.Sprintf("Wrote %d bytes to %s", len(data), path))
	return nil
}
