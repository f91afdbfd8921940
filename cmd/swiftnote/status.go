package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

type statusReport struct {
	Version string `json:"version"`
	Data    string `json:"data"`
	Adapter string `json:"adapter"`
	Store   any    `json:"store"`
	Session any    `json:"session"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the internal state of the store as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), statusReport{
				Version: swiftnote.Version,
				Data:    a.dataDir,
				Adapter: a.adapter,
				Store:   a.store.State(),
				Session: s.State(),
			})
		},
	}
}
