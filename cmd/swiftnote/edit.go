package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

func newEditCmd(a *app) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or content of a note",
		Long: `Change the title or content of a note. Only the given fields change;
non-empty piped stdin replaces the content when --content is absent.
Use --content "" to clear it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch swiftnote.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			} else if piped, ok, err := a.readStdin(); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			} else if ok {
				patch.Content = &piped
			}
			if patch.Title == nil && patch.Content == nil {
				return errors.New("nothing to change: pass --title, --content or pipe content")
			}

			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			n, err := store.Apply(cmd.Context(), id, patch)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d: %s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	return cmd
}
