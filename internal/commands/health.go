package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewHealthCmd creates the health command
func NewHealthCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the chat API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := resolveConfig(deps, root)

			client, err := deps.NewClient(cfg, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			health, err := client.Health(ctx)
			if err != nil {
				return err
			}

			line := fmt.Sprintf("✓ %s %s is %s at %s", health.Name, health.Version, health.Status, cfg.ServerURL)
			if health.Provider != "" {
				line += fmt.Sprintf(" (provider: %s)", health.Provider)
			}
			fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render(line))
			return nil
		},
	}
}
