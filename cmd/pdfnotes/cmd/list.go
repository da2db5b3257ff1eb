package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents that have notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := store.List()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("no notes yet")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %s  %s\n",
				e.Key[:12],
				e.Modified.Format("2006-01-02 15:04"),
				e.SourcePath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
