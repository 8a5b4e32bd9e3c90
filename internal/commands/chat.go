package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/tobchat/internal/config"
	"github.com/diogo/tobchat/internal/logging"
	"github.com/diogo/tobchat/internal/render"
	"github.com/diogo/tobchat/internal/tui"
	"github.com/diogo/tobchat/internal/widget"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	var open bool
	var exportDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat widget",
		Long: `Open the chat widget in the terminal.

The conversation lives only for this session. Press ctrl+o to open the
widget, enter to send, ctrl+l to start over, ctrl+s to save the transcript,
ctrl+y to copy the last reply, esc to close the widget and ctrl+c to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps, root, open, exportDir)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "Start with the widget open")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for saved transcripts (default: current directory)")
	return cmd
}

func runChat(ctx context.Context, deps *Dependencies, opts *rootOptions, open bool, exportDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := resolveConfig(deps, opts)

	// The alt-screen owns the terminal, so logs go to a file
	level := "info"
	if cfg.Verbose {
		level = "debug"
	}
	logger := zerolog.Nop()
	if path, err := config.GetLogPath(); err == nil {
		if l, f, err := logging.NewFile(path, level); err == nil {
			logger = l
			defer f.Close()
		}
	}

	client, err := deps.NewClient(cfg, logging.Component(logger, "api"))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	spin := newSpinner(deps.Stderr, "Connecting to "+cfg.ServerURL)
	spin.start()
	if health, err := client.Health(ctx); err != nil {
		spin.stopWithError()
		// The widget still opens; each failed send shows an error bubble
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Chat API unavailable"))
	} else {
		spin.stopWithSuccess(fmt.Sprintf("Connected to %s %s", health.Name, health.Version))
	}

	widgetOpts := []widget.Option{
		widget.WithSessionID(client.SessionID()),
		widget.WithLogger(logging.Component(logger, "widget")),
	}
	if open {
		widgetOpts = append(widgetOpts, widget.WithOpen())
	}
	w := widget.New(client, widgetOpts...)

	if exportDir == "" {
		if wd, err := os.Getwd(); err == nil {
			exportDir = wd
		}
	}

	return deps.TUI.RunChat(w, tui.Options{
		Theme:           cfg.TUITheme,
		Markdown:        render.OptionsFromConfig(cfg.Markdown),
		ExportDir:       exportDir,
		CopyToClipboard: deps.CopyToClipboard,
		Logger:          logging.Component(logger, "tui"),
	})
}
