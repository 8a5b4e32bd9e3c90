package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/tobchat/internal/config"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	var initFile, agent bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the client configuration after applying the config file,
the environment and the command-line flags. --init writes the defaults to
the config file when none exists; --agent prints the server settings read
from the environment, with API keys masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps == nil {
				deps = NewDependencies()
			}
			if initFile {
				return initConfig(deps)
			}
			if agent {
				cfg, err := deps.LoadAgentConfig()
				if err != nil {
					return err
				}
				return printJSON(deps, maskedAgentConfig(cfg))
			}

			opts := root
			if opts == nil {
				opts = &rootOptions{}
			}
			if path, err := config.GetConfigPath(); err == nil {
				fmt.Fprintf(deps.Stderr, "# %s\n", path)
			}
			return printJSON(deps, resolveConfig(deps, opts))
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "Write the default config file if it does not exist")
	cmd.Flags().BoolVar(&agent, "agent", false, "Show the server agent settings")
	return cmd
}

func initConfig(deps *Dependencies) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", path)
	return nil
}

func printJSON(deps *Dependencies, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(data))
	return nil
}

// maskedAgentConfig hides all but the last four characters of each key
func maskedAgentConfig(cfg config.AgentConfig) config.AgentConfig {
	cfg.OpenAIAPIKey = maskSecret(cfg.OpenAIAPIKey)
	cfg.GoogleAPIKey = maskSecret(cfg.GoogleAPIKey)
	return cfg
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
