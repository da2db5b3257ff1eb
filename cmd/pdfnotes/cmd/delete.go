package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pdfnotes/internal/link"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <pdf-path>",
	Short: "Delete the note for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := link.Resolve(args[0])
		if err != nil {
			return err
		}

		exists, err := store.Exists(key)
		if err != nil {
			return err
		}
		if !exists {
			fmt.Printf("no note for %s\n", args[0])
			return nil
		}

		if !deleteForce {
			fmt.Printf("delete note for %s? [y/N] ", args[0])
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
				fmt.Println("aborted")
				return nil
			}
		}

		if err := store.Delete(key); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
