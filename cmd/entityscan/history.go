package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/nao1215/entityscan/internal/config"
	"github.com/nao1215/entityscan/internal/database"
)

// errInvalidTime is returned when a --since or --before value cannot be parsed.
var errInvalidTime = errors.New("invalid time")

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past extractions",
		Long: `History lists the extractions recorded in the local database, newest
first. Only a digest of each text is stored, never the text itself.

--since accepts a duration ("24h"), a date ("2024-05-01") or a phrase
such as "yesterday" or "last week".

Examples:
  # Show the 20 most recent extractions
  entityscan history

  # Show extractions since yesterday
  entityscan history --since yesterday

  # Show the rows of extraction 12
  entityscan history show 12

  # Delete extractions older than 30 days
  entityscan history prune --before 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.PersistentFlags().String("history-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of entries to list (0 for all)")
	cmd.Flags().String("since", "",
		"Only list extractions at or after this time")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryPruneCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the rows of one past extraction",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old extractions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPruneCmd,
	}
	cmd.Flags().String("before", "",
		"Delete extractions older than this time (required)")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}

// openHistory opens an existing history database.
func openHistory(cmd *cobra.Command) (*database.HistoryDB, error) {
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("no history yet: %w", err)
	}
	return db, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	sinceText, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	opts := database.ListOptions{Limit: limit}
	if sinceText != "" {
		if opts.Since, err = parseTime(sinceText, time.Now()); err != nil {
			return err
		}
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListExtractions(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No extractions recorded.")
		return nil
	}
	fmt.Fprintln(out, renderHistory(entries))
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid extraction id: %q", args[0])
	}

	cfg := config.NewConfig()
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := db.GetExtractionByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg, e)
}

func runHistoryPruneCmd(cmd *cobra.Command, _ []string) error {
	beforeText, err := cmd.Flags().GetString("before")
	if err != nil {
		return err
	}
	before, err := parseTime(beforeText, time.Now())
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.DeleteBefore(cmd.Context(), before)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d extraction(s) older than %s\n", n, before.Format(time.RFC3339))
	return nil
}

// parseTime accepts a duration back from now, a date, an RFC 3339 time or
// an English phrase such as "yesterday".
func parseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", errInvalidTime, s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w %q", errInvalidTime, s)
	}
	return r.Time, nil
}

// renderHistory draws the history entries as a table.
func renderHistory(entries []database.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		lang := e.Lang
		if lang == "" {
			lang = "-"
		}
		digest := e.TextDigest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Source.String(),
			lang,
			strconv.Itoa(e.EntityCount),
			digest,
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Date", "Source", "Lang", "Entities", "Digest").
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
