package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/entityscan/internal/config"
	"github.com/nao1215/entityscan/internal/dandelion"
	"github.com/nao1215/entityscan/internal/database"
	"github.com/nao1215/entityscan/internal/langdetect"
	"github.com/nao1215/entityscan/internal/log"
	"github.com/nao1215/entityscan/internal/pipeline"
)

// addClientFlags registers the flags that configure the API client.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "",
		"Dandelion API token (default: $"+config.TokenEnvVar+", secrets.toml or config file)")
	cmd.Flags().String("api-url", config.DefaultAPIURL,
		"Entity extraction endpoint")
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of the text (auto, de, en, es, fr, it, pt, ru)")
	cmd.Flags().Bool("detect-lang", false,
		"Detect the language locally when --lang is auto")
	cmd.Flags().Float64("min-confidence", config.DefaultMinConfidence,
		"Minimum entity confidence (0.0 - 1.0)")
	cmd.Flags().StringSlice("include", config.DefaultInclude,
		"Optional annotation fields to request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for API requests (host:port)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .entityscan in current or home directory)")
	cmd.Flags().StringP("profile", "P", "",
		"Configuration file profile to apply")
	addHistoryFlags(cmd)
	cmd.Flags().Bool("no-history", false,
		"Do not record the extraction in the local history")
}

// addHistoryFlags registers the history database location flag.
func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("history-dir", config.XDGDataDir(),
		"Directory of the history database")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file profile
// and explicitly set flags, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Profile, err = flags.GetString("profile"); err != nil {
		return nil, err
	}

	profile, err := loadProfile(cfg.ConfigFilePath, cfg.Profile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyProfile(profile)

	if flags.Changed("api-url") {
		if cfg.APIURL, err = flags.GetString("api-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("lang") {
		if cfg.Language, err = flags.GetString("lang"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("detect-lang") {
		if cfg.DetectLanguage, err = flags.GetBool("detect-lang"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("min-confidence") {
		if cfg.MinConfidence, err = flags.GetFloat64("min-confidence"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("include") {
		if cfg.Include, err = flags.GetStringSlice("include"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	if cfg.DBDir, err = flags.GetString("history-dir"); err != nil {
		return nil, err
	}

	flagToken, err := flags.GetString("token")
	if err != nil {
		return nil, err
	}
	cfg.Token, cfg.TokenSource, err = config.ResolveToken(flagToken, config.FindSecretsFile(), profile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// loadProfile reads the configuration file and returns the selected profile.
// A missing file is only an error when its path was given explicitly.
func loadProfile(explicitPath, name string) (config.Profile, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return config.Profile{}, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		if name != "" {
			return config.Profile{}, fmt.Errorf("%w: %s (no configuration file)", config.ErrProfileNotFound, name)
		}
		return config.Profile{}, nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return config.Profile{}, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	profile, err := file.GetProfile(name)
	if err != nil {
		return config.Profile{}, fmt.Errorf("%w: %s (available: %v)", err, name, file.ProfileNames())
	}
	return profile, nil
}

// setupLogger creates the secure logger for a command.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// newClient creates an API client from cfg.
func newClient(cfg *config.Config, logger *slog.Logger) (*dandelion.Client, error) {
	return dandelion.NewClient(cfg.Token,
		dandelion.WithBaseURL(cfg.APIURL),
		dandelion.WithTimeout(cfg.Timeout),
		dandelion.WithLanguage(cfg.Language),
		dandelion.WithMinConfidence(cfg.MinConfidence),
		dandelion.WithInclude(cfg.Include...),
		dandelion.WithUserAgent(cfg.UserAgent),
		dandelion.WithMaxBodySize(cfg.MaxBodySize),
		dandelion.WithProxy(cfg.ProxyAddress),
		dandelion.WithLogger(logger),
	)
}

// newPipeline wires the client, optional detector and optional history into
// the extraction pipeline. The returned close function releases the history.
func newPipeline(cfg *config.Config, client *dandelion.Client, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	opts := pipeline.Options{Logger: logger}
	closeFn := func() {}

	// An explicit --lang always wins over detection.
	if cfg.DetectLanguage && strings.EqualFold(cfg.Language, config.DefaultLanguage) {
		opts.Detector = langdetect.New(0)
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
		logger.Debug("history database opened", "path", db.Path())
		opts.Recorder = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close history database", "error", err)
			}
		}
	}

	return pipeline.Default(client, opts), closeFn, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// explainError adds a hint to errors a user can fix.
func explainError(err error) error {
	var apiErr *dandelion.APIError
	switch {
	case errors.Is(err, config.ErrMissingToken), errors.Is(err, dandelion.ErrMissingToken):
		return fmt.Errorf("%w (set %s, add dandelion_token to .streamlit/secrets.toml or pass --token)", err, config.TokenEnvVar)
	case errors.As(err, &apiErr) && apiErr.IsAuthError():
		return fmt.Errorf("%w (check your API token)", err)
	case dandelion.IsTimeout(err):
		return fmt.Errorf("request failed: %w (try a larger --timeout)", err)
	default:
		return err
	}
}
