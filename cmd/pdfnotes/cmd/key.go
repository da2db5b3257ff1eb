package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfnotes/internal/link"
)

var keyCmd = &cobra.Command{
	Use:   "key <pdf-path>",
	Short: "Print the note key for a PDF",
	Long: `Print the key that links a PDF to its note. The key is derived from
the resolved absolute path, so the same file always maps to the same
note regardless of how the path is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := link.Resolve(args[0])
		if err != nil {
			return err
		}

		exists, err := store.Exists(key)
		if err != nil {
			return err
		}

		fmt.Println(key)
		if exists {
			fmt.Println("note: present")
		} else {
			fmt.Println("note: none")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
}
