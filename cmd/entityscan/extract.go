package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/entityscan/internal/config"
	"github.com/nao1215/entityscan/internal/input"
	"github.com/nao1215/entityscan/internal/model"
	"github.com/nao1215/entityscan/internal/pipeline"
	"github.com/nao1215/entityscan/internal/report"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract entities from text",
		Long: `Extract sends text to the entity extraction API and prints one row per
entity: its label, types, confidence and a Wikidata link when one exists.

The text comes from the arguments, --file, --url or standard input ("-").
HTML files are reduced to their readable text first.

Examples:
  # Analyze inline text
  entityscan extract "The Colosseum is in Rome"

  # Analyze a file and write a Markdown report
  entityscan extract --file notes.txt --markdown -o report.md

  # Let the API fetch and analyze a web page
  entityscan extract --url https://en.wikipedia.org/wiki/Rome

  # Read from standard input and print JSON
  cat notes.txt | entityscan extract --json -`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtractCmd,
	}

	addClientFlags(cmd)

	cmd.Flags().StringP("file", "f", "",
		"Read the text from a file (plain text or HTML)")
	cmd.Flags().StringP("url", "u", "",
		"Analyze a web page fetched by the API")
	cmd.Flags().Int64("max-input-size", input.DefaultMaxSize,
		"Maximum input size in bytes for --file and stdin")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("rows", false,
		"With --json, print only the entity rows to standard output")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := readInputFlags(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.ValidateExtract(); err != nil {
		return explainError(fmt.Errorf("configuration error: %w", err))
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Debug("token resolved", "source", string(cfg.TokenSource))

	maxSize, err := cmd.Flags().GetInt64("max-input-size")
	if err != nil {
		return err
	}
	in, err := readInput(cfg, args, cmd.InOrStdin(), maxSize)
	if err != nil {
		return err
	}
	if in.Source.Kind != model.SourceURL && strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("configuration error: %w", config.ErrNoInput)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return explainError(err)
	}
	p, closeDB, err := newPipeline(cfg, client, logger)
	if err != nil {
		return err
	}
	defer closeDB()
	logger.Debug("pipeline ready", "steps", pipeline.StepList(p))

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	extraction, err := p.Run(ctx, in)
	if err != nil {
		return explainError(err)
	}

	rowsOnly, err := cmd.Flags().GetBool("rows")
	if err != nil {
		return err
	}
	if rowsOnly && cfg.JSONReport && cfg.ReportFile == "" {
		_, err := report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint(), report.WithRowsOnly()).Write(extraction)
		return err
	}

	return writeReport(cmd.OutOrStdout(), cfg, extraction)
}

// readReportFlags copies the report flags into cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}

// readInputFlags copies the input selection into cfg. A single "-" argument
// selects standard input.
func readInputFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	var err error
	if cfg.InputFile, err = cmd.Flags().GetString("file"); err != nil {
		return err
	}
	if cfg.SourceURL, err = cmd.Flags().GetString("url"); err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "-" {
		if cfg.InputFile != "" {
			return fmt.Errorf("configuration error: %w", config.ErrConflictingInputs)
		}
		cfg.InputFile = "-"
		return nil
	}
	if len(args) > 0 && cfg.InputFile != "" {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingInputs)
	}
	cfg.Text = strings.Join(args, " ")
	return nil
}

// readInput loads the text selected by cfg.
func readInput(cfg *config.Config, args []string, stdin io.Reader, maxSize int64) (input.Input, error) {
	switch {
	case cfg.SourceURL != "":
		return input.Input{Source: model.Source{Kind: model.SourceURL, Name: cfg.SourceURL}}, nil
	case cfg.InputFile == "-":
		return input.FromStdin(stdin, maxSize)
	case cfg.InputFile != "":
		return input.FromFile(cfg.InputFile, maxSize)
	default:
		return input.FromArgs(args), nil
	}
}

// writeReport renders the extraction to stdout or to cfg.ReportFile.
func writeReport(stdout io.Writer, cfg *config.Config, e *model.Extraction) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewVersionedJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	// A report saved to a file is echoed to the terminal as a table.
	if cfg.ReportFile != "" {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(stdout))
	}

	if _, err := w.Write(e); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(stdout, "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}
