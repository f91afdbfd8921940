package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

func newSearchCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List notes whose title or content contains query (case-sensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			notes := s.Search(args[0])

			if asJSON {
				if notes == nil {
					notes = []swiftnote.Note{}
				}
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			return printNotes(cmd.OutOrStdout(), notes)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
