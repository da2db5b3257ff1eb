package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pdfnotes/internal/export"
	"pdfnotes/internal/link"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <pdf-path>",
	Short: "Export the note for a PDF as HTML or markdown",
	Long: `Export the note attached to a PDF. Images pasted into the note are
embedded as data URIs, so the output is a single self-contained file.

Examples:
  pdfnotes export paper.pdf
  pdfnotes export paper.pdf --format md -o paper-notes.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := link.Resolve(args[0])
		if err != nil {
			return err
		}

		doc, found, err := store.Load(key)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no note for %s", args[0])
		}

		name := filepath.Base(args[0])
		var data []byte
		switch strings.ToLower(exportFormat) {
		case "html":
			data, err = export.ToHTML(doc, name)
			if err != nil {
				return err
			}
		case "md", "markdown":
			data = []byte(export.ToMarkdown(doc))
		default:
			return fmt.Errorf("unknown format %q (want html or md)", exportFormat)
		}

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(exportOut, data, 0o644)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "html", "output format: html or md")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
