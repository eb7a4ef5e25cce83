package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bioedge/outreach/internal/config"
	"github.com/bioedge/outreach/internal/prompt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

// loadConfig reads the config file when given, falling back to defaults.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  API: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
	fmt.Printf("  Anthropic key: %s\n", presence(cfg.Anthropic.APIKey))
	fmt.Printf("  Hunter key: %s\n", presence(cfg.Hunter.APIKey))
	return nil
}

// promptEvents maps configured events into the composer's type.
func promptEvents(cfg *config.Config) []prompt.Event {
	if len(cfg.Events) == 0 {
		return nil
	}
	events := make([]prompt.Event, 0, len(cfg.Events))
	for _, e := range cfg.Events {
		events = append(events, prompt.Event{Name: e.Name, Date: e.Date, Location: e.Location, URL: e.URL})
	}
	return events
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}
