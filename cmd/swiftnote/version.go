package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of swiftnote",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swiftnote version %s\n", swiftnote.Version)
		},
	}
}
