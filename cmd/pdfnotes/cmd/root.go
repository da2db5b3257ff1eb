package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdfnotes/internal/config"
	"pdfnotes/internal/notes"
)

var (
	configPath string
	dataDir    string

	cfg   *config.Config
	store *notes.Store
)

var rootCmd = &cobra.Command{
	Use:   "pdfnotes",
	Short: "Inspect and export notes taken alongside PDFs",
	Long: `pdfnotes is the command-line companion to the pdfnotes viewer.

Notes are keyed by the PDF they belong to, so most commands take the
path of a PDF and operate on its note.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		loaded, err := config.NewLoader(configPath).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
		}

		s, err := notes.Open(filepath.Join(cfg.Storage.DataDir, "notes.db"))
		if err != nil {
			return fmt.Errorf("open notes database: %w", err)
		}
		store = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.ConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the notes data directory")
}
