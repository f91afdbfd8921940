package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			n, found, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("note %d: %w", id, swiftnote.ErrNotFound)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			return printNote(cmd.OutOrStdout(), n)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
