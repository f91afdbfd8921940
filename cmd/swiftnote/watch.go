package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/swiftnote"
	"github.com/aretw0/swiftnote/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made by other processes (fs adapter)",
		Long: `Watch the notes directory and reload the view on every change until
interrupted. Only the fs adapter reports changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			events, err := a.store.Watch(ctx, pattern)
			if errors.Is(err, swiftnote.ErrUnsupported) {
				return fmt.Errorf("the %s adapter cannot be watched, use --adapter fs", a.adapter)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (%d notes). Press Ctrl+C to stop.\n", a.dataDir, len(s.All()))

			err = s.Follow(ctx, events, func(e core.Event, err error) {
				if err != nil {
					fmt.Fprintf(out, "%s (reload failed: %v)\n", e, err)
					return
				}
				fmt.Fprintf(out, "%s (%d notes)\n", e, len(s.All()))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", `Only report files matching a glob, e.g. "1*.md"`)
	return cmd
}
