package main

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
	"github.com/aretw0/swiftnote/pkg/core"
)

func newListCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		since  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var notes []swiftnote.Note
			if since != "" {
				from, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				store, err := a.open(ctx)
				if err != nil {
					return err
				}
				notes, err = store.ListByIndex(ctx, core.IndexUpdated, core.Range{From: from})
				if err != nil {
					return err
				}
				// The index is ascending.
				slices.Reverse(notes)
			} else {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				notes = s.Notes()
			}

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
	cmd.Flags().StringVar(&since, "since", "", "Only notes updated since a duration ago (24h) or a date (2024-03-01)")
	return cmd
}
