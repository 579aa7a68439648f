package commands

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/bankdash/internal/cli/output"
	"github.com/leapstack-labs/bankdash/internal/connector"
	"github.com/spf13/cobra"
)

// ConnectOptions holds options for the connect command.
type ConnectOptions struct {
	Form      connector.Form
	ListTypes bool
}

// NewConnectCommand creates the connect command.
func NewConnectCommand() *cobra.Command {
	opts := &ConnectOptions{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Save a database connection",
		Long: `Validate the connection details and save them through the connection API.

Every field is required and the port must be a number. When --type is omitted
the first type offered by the API is used.`,
		Example: `  # List the database types offered by the API
  bankdash connect --types

  # Save a connection
  bankdash connect --name core-banking --type postgresql --server db.internal \
    --database accounts --port 5432 --user ops`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnect(cmd, opts)
		},
	}

	f := &opts.Form
	cmd.Flags().BoolVar(&opts.ListTypes, "types", false, "List the available database types and exit")
	cmd.Flags().StringVar(&f.DatabaseType, "type", "", "Database type id")
	cmd.Flags().StringVar(&f.ConnectionName, "name", "", "Connection name")
	cmd.Flags().StringVar(&f.ServerName, "server", "", "Server name")
	cmd.Flags().StringVar(&f.DatabaseName, "database", "", "Database name")
	cmd.Flags().StringVar(&f.Port, "port", "", "Port number")
	cmd.Flags().StringVar(&f.Username, "user", "", "User name")

	return cmd
}

func runConnect(cmd *cobra.Command, opts *ConnectOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer
	e := cc.Endpoints()

	panel := connector.NewPanel(
		connector.NewClient(cc.HTTPClient(), e.DatabaseTypes, e.SaveConnection),
		cc.Logger,
		nil,
	)

	ctx := cmd.Context()
	if opts.ListTypes || opts.Form.DatabaseType == "" {
		if err := panel.Load(ctx); err != nil {
			if opts.ListTypes {
				return errors.New(panel.State().Error)
			}
			cc.Logger.Debug("database type list failed", "error", err)
		}
	}

	if opts.ListTypes {
		types := panel.State().Types
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(types)
		}
		rows := make([][]string, 0, len(types))
		for _, t := range types {
			rows = append(rows, []string{t.ID, t.Name})
		}
		r.Table([]string{"ID", "Name"}, rows)
		return nil
	}

	form := opts.Form
	if form.DatabaseType == "" {
		form.DatabaseType = panel.State().Form.DatabaseType
	}

	err := panel.Submit(ctx, form)
	msg := panel.State().Message

	if r.EffectiveMode() == output.ModeJSON {
		if jerr := r.JSON(map[string]any{
			"success": err == nil && strings.HasPrefix(msg, connector.MsgSaved),
			"message": msg,
		}); jerr != nil {
			return jerr
		}
	}

	if err != nil {
		var validation *connector.ValidationError
		if errors.As(err, &validation) {
			return errors.New(validation.Message)
		}
		return errors.New(msg)
	}
	if !strings.HasPrefix(msg, connector.MsgSaved) {
		return errors.New(msg)
	}

	if r.EffectiveMode() != output.ModeJSON {
		r.Success(msg)
	}
	return nil
}
