package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	port       string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaultConfig := envOr("CONFIG_PATH", "config/config.yaml")

	cmd := &cobra.Command{
		Use:          "contest-service",
		Short:        "Proctored live coding contest sessions over WebSocket",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.port, "port", os.Getenv("PORT"), "port to listen on (overrides server.port)")
	flags.StringVar(&opts.configPath, "config", defaultConfig, "path to YAML config")

	cmd.AddCommand(
		NewStartCmd(&opts.configPath, &opts.port),
		NewMigrateCmd(&opts.configPath),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
