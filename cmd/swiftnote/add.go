package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

func newAddCmd(a *app) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a note",
		Long: `Create a note. The content comes from --content or, when piped, from stdin.
An empty title is stored as "Untitled".`,
		Example: `  swiftnote add Groceries -c "Milk, eggs"
  pbpaste | swiftnote add Meeting notes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("content") {
				piped, ok, err := a.readStdin()
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				if ok {
					content = piped
				}
			}

			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			n, err := store.Create(cmd.Context(), swiftnote.Draft{
				Title:   strings.Join(args, " "),
				Content: content,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created note %d: %s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	return cmd
}
