// Package commands holds the cityguard command tree: the API server, the
// terminal client and the map export.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"cityguard/config"
	"cityguard/i18n"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand returns the cityguard command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cityguard",
		Short: "CityGuard citizen reporting",
		Long: `CityGuard lets citizens report problems in public spaces.

Available commands:
  serve  - Run the API server
  app    - Interactive terminal client
  map    - Export the reports map`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON configuration file")

	rootCmd.AddCommand(ServeCommand())
	rootCmd.AddCommand(AppCommand())
	rootCmd.AddCommand(MapCommand())

	return rootCmd
}

func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// initialise loads the configuration, sets up logging and the message
// catalogues. The server refuses to start without its config file; the
// clients fall back to defaults plus the environment.
func initialise(requireConfig bool) error {
	if requireConfig {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("loading config %s: %w", configPath, err)
		}
	}
	if err := config.LoadConfig(configPath); err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}
	if err := setupLogging(os.Stderr, config.AppConfig.LogLevel, config.AppConfig.LogFormat); err != nil {
		return err
	}

	if err := i18n.LoadEmbedded(); err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}
	if dir := config.AppConfig.TranslationsDir; dir != "" {
		if err := i18n.LoadTranslations(dir); err != nil {
			return fmt.Errorf("loading translations from %s: %w", dir, err)
		}
		log.WithField("dir", dir).Debug("translation overrides loaded")
	}
	return nil
}

func setupLogging(w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	switch format {
	case "", "text":
		log.SetHandler(text.New(w))
	case "json":
		log.SetHandler(json.New(w))
	case "cli":
		log.SetHandler(cli.New(w))
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetLevel(lvl)
	return nil
}
