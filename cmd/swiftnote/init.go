package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/swiftnote"
)

func newInitCmd(a *app) *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and open the store",
		Long: `Create the data directory, run schema setup and, with --versioning,
initialize a git repository. With --write-config the chosen adapter is
recorded in swiftnote.yaml so later commands pick it up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			if writeConfig {
				if err := a.writeConfig(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s store in %s\n", a.adapter, a.dataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Record the adapter and versioning in "+swiftnote.ConfigFileName)
	return cmd
}

func (a *app) writeConfig() error {
	path := filepath.Join(a.dataDir, swiftnote.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := swiftnote.FileConfig{Adapter: a.adapter}
	if a.versioning {
		cfg.Versioning = &a.versioning
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
