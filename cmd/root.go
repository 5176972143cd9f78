package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "artcaptions",
		Short: "Artwork caption dataset preparation tool",
		Long: `Artcaptions prepares a small image-captioning dataset from an art collection.

It matches artwork metadata to image files, writes a 100-200 word descriptive caption
for each artwork using a text generation endpoint with a deterministic template
fallback, and letterboxes every image to a fixed square resolution under new
zero-padded identifiers.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	for _, sub := range newDatasetCmds() {
		cmd.AddCommand(sub)
	}

	return cmd
}
