package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/tobchat/internal/config"
	"github.com/diogo/tobchat/internal/logging"
	"github.com/diogo/tobchat/internal/server"
)

// serveOptions mirrors the env-backed agent settings as flags
type serveOptions struct {
	port        int
	provider    string
	model       string
	temperature float64
	maxTokens   int
	noRAG       bool
	logLevel    string
}

// NewServeCmd creates the serve command
func NewServeCmd(deps *Dependencies) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat API",
		Long: `Run the chat API that the widget talks to.

Settings come from the environment (OPENAI_API_KEY,
GOOGLE_GENERATIVE_AI_API_KEY, PROVIDER, MODEL, TEMPERATURE, RAG_ENABLED,
MAX_TOKENS, PORT); flags override them. Use --provider mock to run without
an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadAgentConfig()
			if err != nil {
				return fmt.Errorf("failed to load agent config: %w", err)
			}
			applyServeFlags(cmd, opts, &cfg)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, deps, cfg, opts.logLevel)
		},
	}

	bindServeFlags(cmd, opts)
	return cmd
}

// bindServeFlags registers the serve flags on cmd
func bindServeFlags(cmd *cobra.Command, opts *serveOptions) {
	f := cmd.Flags()
	f.IntVarP(&opts.port, "port", "p", 0, "Listen port (env PORT, default 8080)")
	f.StringVar(&opts.provider, "provider", "", "Model provider: "+strings.Join(config.AvailableProviders(), ", "))
	f.StringVarP(&opts.model, "model", "m", "", "Model name (env MODEL)")
	f.Float64Var(&opts.temperature, "temperature", 0, "Sampling temperature between 0 and 1")
	f.IntVar(&opts.maxTokens, "max-tokens", 0, "Maximum tokens per reply")
	f.BoolVar(&opts.noRAG, "no-rag", false, "Disable company information retrieval")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
}

// applyServeFlags copies the flags the user set over the env config
func applyServeFlags(cmd *cobra.Command, opts *serveOptions, cfg *config.AgentConfig) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port = opts.port
	}
	if f.Changed("provider") {
		cfg.Provider = strings.ToLower(opts.provider)
	}
	if f.Changed("model") {
		cfg.Model = opts.model
	}
	if f.Changed("temperature") {
		cfg.Temperature = opts.temperature
	}
	if f.Changed("max-tokens") {
		cfg.MaxTokens = opts.maxTokens
	}
	if opts.noRAG {
		cfg.RAGEnabled = false
	}
}

func runServe(ctx context.Context, deps *Dependencies, cfg config.AgentConfig, level string) error {
	logger := logging.New(deps.Stderr, level)

	a, closeAgent, err := deps.NewAgent(ctx, cfg, logging.Component(logger, "agent"))
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	defer func() {
		if err := closeAgent(); err != nil {
			logger.Warn().Err(err).Msg("failed to close agent")
		}
	}()

	srv := server.New(a, server.Options{
		Addr:     cfg.Addr(),
		Provider: cfg.Provider,
	}, logging.Component(logger, "server"))

	return srv.ListenAndServe(ctx)
}
