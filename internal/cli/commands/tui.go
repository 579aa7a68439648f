package commands

import (
	"github.com/leapstack-labs/bankdash/internal/tui"
	"github.com/spf13/cobra"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the analyser panels in the terminal",
		Long: `Open a terminal viewer with one tab per analyser panel.

Panels with a configured endpoint fetch on start. The dormant analyser starts
disconnected: press e to edit its endpoint and enter to connect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			cat, err := cc.Catalog()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Config{
				Catalog:   cat,
				Endpoints: cc.Cfg.Endpoints,
				Client:    cc.HTTPClient(),
				StaleTime: cc.Cfg.StaleTime,
				Logger:    cc.Logger,
			})
		},
	}
}
