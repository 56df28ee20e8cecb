package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/entityscan/internal/config"
	"github.com/nao1215/entityscan/internal/log"
	"github.com/nao1215/entityscan/internal/web"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the entity extraction form in the browser",
		Long: `Serve starts a small web server with a text area and an "Extract
entities" button. Results are shown as a table with Wikidata links.

The same operation is available to scripts as POST /api/extract with a
JSON body {"text": "..."}.

Examples:
  # Serve on the default address
  entityscan serve

  # Listen on all interfaces and keep a rotating log file
  entityscan serve --listen :8501 --log-file /var/log/entityscan.log`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addClientFlags(cmd)
	cmd.Flags().String("listen", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().String("log-file", "",
		"Also write logs to a rotating file")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if cfg.LogFile, err = cmd.Flags().GetString("log-file"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logOutput := cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		rotating := log.NewRotatingFile(cfg.LogFile)
		defer rotating.Close()
		logOutput = io.MultiWriter(logOutput, rotating)
	}
	logger := log.NewSecureJSONLogger(logOutput, cfg.Verbose)

	var extractor web.Extractor
	if cfg.Token == "" {
		logger.Warn("no API token configured; the form will refuse to extract",
			"env", config.TokenEnvVar)
	} else {
		client, err := newClient(cfg, logger)
		if err != nil {
			return explainError(err)
		}
		p, closeDB, err := newPipeline(cfg, client, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		extractor = p
		logger.Debug("token resolved", "source", string(cfg.TokenSource))
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", cfg.ListenAddress)
	return web.NewServer(extractor, web.WithLogger(logger)).Run(ctx, cfg.ListenAddress)
}
