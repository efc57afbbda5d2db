package command

// root.go defines the root command for podcasthubctl, the operator tool for
// schema migrations, demo data and account provisioning.

import (
	"context"
	"fmt"
	"os"

	"podcasthub/internal/app"
	"podcasthub/internal/config"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "podcasthubctl",
	Short: "podcasthubctl - PodcastHub operator commands",
	Long: `podcasthubctl talks to the PodcastHub database directly. Use it to:
- Apply or roll back schema migrations
- Load or clear demo data
- Create accounts with any role, including Admin

Configuration comes from the same environment variables as the API server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra .env file loaded before the environment")
}

// loadConfig reads and validates configuration. --env-file values are
// exported first so LoadConfig sees them.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp runs fn against a connected App and closes it afterwards.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, app.NewLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
