package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/tobchat/internal/agent"
	"github.com/diogo/tobchat/internal/api"
	"github.com/diogo/tobchat/internal/config"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/tui"
	"github.com/diogo/tobchat/internal/widget"
)

// ChatClient is the part of api.ChatClient the commands use
type ChatClient interface {
	widget.Sender
	Health(ctx context.Context) (*api.HealthStatus, error)
	SessionID() string
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(w *widget.Widget, opts tui.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(w *widget.Widget, opts tui.Options) error {
	return tui.RunChat(w, opts)
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewClient builds the chat API client for the resolved config
	NewClient func(cfg config.Config, logger zerolog.Logger) (ChatClient, error)

	// NewAgent builds the backend agent for serve
	NewAgent func(ctx context.Context, cfg config.AgentConfig, logger zerolog.Logger) (agent.Agent, func() error, error)

	// LoadConfig and LoadAgentConfig read client and server settings
	LoadConfig      func() (config.Config, error)
	LoadAgentConfig func() (config.AgentConfig, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// IsTTY reports whether stdout is a terminal
	IsTTY func() bool

	// StdinIsPipe reports whether stdin carries piped input
	StdinIsPipe func() bool

	// CopyToClipboard writes text to the system clipboard
	CopyToClipboard func(text string) error
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		NewClient:       newAPIClient,
		NewAgent:        agent.New,
		LoadConfig:      config.LoadConfig,
		LoadAgentConfig: config.LoadAgentConfig,
		TUI:             &DefaultTUI{},
		IsTTY:           isStdoutTTY,
		StdinIsPipe:     stdinIsPipe,
		CopyToClipboard: clipboard.WriteAll,
	}
}

func newAPIClient(cfg config.Config, logger zerolog.Logger) (ChatClient, error) {
	client, err := api.NewClient(
		api.WithBaseURL(cfg.ServerURL),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// resolveConfig loads the client config and applies the global flags
func resolveConfig(deps *Dependencies, opts *rootOptions) config.Config {
	cfg, err := deps.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if opts.server != "" {
		cfg.ServerURL = opts.server
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if opts.copy {
		cfg.CopyToClipboard = true
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = models.DefaultServerURL
	}
	return cfg
}
