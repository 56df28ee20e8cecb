package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for entityscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entityscan",
		Short: "Extract named entities and their Wikidata links from text",
		Long: `entityscan sends text to the Dandelion entity extraction API and shows
each entity found with its type, confidence and a link to Wikidata.

The API token is read from --token, the DANDELION_TOKEN environment
variable, .streamlit/secrets.toml or the .entityscan configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
