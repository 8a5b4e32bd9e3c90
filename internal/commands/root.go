// Package commands provides CLI commands for tobchat.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/tobchat/internal/config"
	"github.com/diogo/tobchat/internal/models"
)

var (
	// Version info (set at build time)
	Version   = models.ChatbotVersion
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by the client commands
type rootOptions struct {
	server  string
	verbose bool
	file    string
	output  string
	copy    bool
	raw     bool
}

// NewRootCmd builds the command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tobchat [question]",
		Short: "Terminal chat client for the TOB company assistant",
		Long: `tobchat talks to the TOB chatbot API, which answers questions about the
company using a retrieval-augmented agent and streams the reply back.

Examples:
  tobchat chat                          Open the interactive chat widget
  tobchat serve                         Run the chat API
  tobchat "What services do you offer?" Ask a single question
  tobchat -f question.md                Read the question from a file
  cat question.md | tobchat             Read the question from stdin
  tobchat "Who leads IT?" -o reply.md   Save the reply to a file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "tobchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			question, ok, err := readQuestion(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runQuery(cmd.Context(), deps, opts, question)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.server, "server", "s", "", "Chat API base URL (overrides config and "+config.EnvServerURL+")")
	pf.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	addQueryFlags(cmd, opts)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		NewAskCmd(deps, opts),
		NewChatCmd(deps, opts),
		NewServeCmd(deps),
		NewConfigCmd(deps, opts),
		NewHealthCmd(deps, opts),
	)
	return cmd
}

// addQueryFlags registers the single-question flags on cmd
func addQueryFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read question from file")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the reply as it streams, without decoration")
}

// readQuestion picks the question from -f, the positional argument or piped stdin, in that order
func readQuestion(deps *Dependencies, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if deps.StdinIsPipe != nil && deps.StdinIsPipe() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), true, nil
		}
	}

	return "", false, nil
}

var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}
