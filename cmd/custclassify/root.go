package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/custclassify/internal/ai"
	"github.com/amishk599/custclassify/internal/config"
	"github.com/amishk599/custclassify/internal/model"
	"github.com/amishk599/custclassify/internal/store"
)

const defaultEnvFile = ".env"

var (
	cfgPath string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "custclassify",
	Short: "Classify a customer into one of a set of categories with an LLM",
	Long: "custclassify sends a customer description, an industry and a list of candidate\n" +
		"categories to a language model and prints the category it picks.",
	// Default to `classify` so that `custclassify` with no subcommand does the work.
	RunE:         runClassify,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvConfig+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads the env file, then resolves the config path and parses it.
// Priority: --config > CUSTCLASSIFY_CONFIG env var > "./config.yaml".
// Only the implicit ./config.yaml may be missing.
func loadConfig(provider, modelName string) (*config.Config, error) {
	envPath, envRequired := envFile, envFile != ""
	if envPath == "" {
		envPath = defaultEnvFile
	}
	if err := config.LoadEnvFile(envPath, envRequired); err != nil {
		return nil, err
	}

	path, required := cfgPath, cfgPath != ""
	if path == "" {
		if env := os.Getenv(config.EnvConfig); env != "" {
			path, required = env, true
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(config.LoadOptions{
		Path:     path,
		Required: required,
		Provider: provider,
		Model:    modelName,
	})
}

// setupLogger writes to stderr; stdout carries only command output.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func setupProvider(cfg *config.Config, logger *slog.Logger) (ai.Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		logger.Debug("using anthropic provider", "model", cfg.Model)
		return ai.NewAnthropicProvider(cfg.APIOptions()), nil
	case config.ProviderOpenAI:
		logger.Debug("using openai provider", "model", cfg.Model)
		return ai.NewOpenAIProvider(cfg.APIOptions()), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", config.ErrInvalid, cfg.Provider)
	}
}

// historyStore is a result store that owns a resource.
type historyStore interface {
	model.ResultStore
	Close() error
}

// openStore returns the SQLite history when enabled and a no-op store
// otherwise, so nothing is persisted by default.
func openStore(cfg *config.Config, logger *slog.Logger) (historyStore, error) {
	if !cfg.History.Enabled() {
		return store.NewNopStore(), nil
	}
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("recording history", "path", cfg.History.Path)
	return s, nil
}
