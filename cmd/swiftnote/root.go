package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/swiftnote"
)

// app carries the global flags and the lazily opened store shared by all
// subcommands of one invocation.
type app struct {
	dataDir    string
	adapter    string
	configPath string
	readOnly   bool
	versioning bool
	verbose    bool

	stdin       io.Reader
	interactive func() bool

	logger *slog.Logger
	config swiftnote.FileConfig
	opts   []swiftnote.Option
	store  *swiftnote.Store
}

func newApp() *app {
	return &app{
		stdin: os.Stdin,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "swiftnote",
		Short: "Fast local notes, newest first",
		Long: `SwiftNote keeps short text notes on this machine.
Notes live in a SQLite file by default, or as Markdown files (optionally
versioned with git) with --adapter fs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "data", "", "Data directory (default: nearest SwiftNote root or the current directory)")
	pf.StringVar(&a.adapter, "adapter", swiftnote.AdapterSQLite, "Storage adapter: sqlite, fs or memory")
	pf.StringVar(&a.configPath, "config", "", "Path to "+swiftnote.ConfigFileName)
	pf.BoolVar(&a.readOnly, "read-only", false, "Reject every change")
	pf.BoolVar(&a.versioning, "versioning", false, "Commit every change to git (fs adapter)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newSearchCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves the config file and the data directory. Flags given on the
// command line win over swiftnote.yaml.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	dataDir := ""
	if flags.Changed("data") {
		dataDir = a.dataDir
	}

	cfgPath := a.configPath
	if cfgPath == "" {
		base := dataDir
		if base == "" {
			if root, err := swiftnote.FindRoot("."); err == nil {
				base = root
			}
		}
		if base != "" {
			cfgPath = filepath.Join(base, swiftnote.ConfigFileName)
		}
	}
	if cfgPath != "" {
		cfg, err := swiftnote.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	level := a.config.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if dataDir == "" {
		dataDir = a.config.Data
	}
	if dataDir == "" {
		dataDir = "."
		if root, err := swiftnote.FindRoot("."); err == nil {
			dataDir = root
		}
	}
	a.dataDir = dataDir

	a.opts = append(a.config.Options(), swiftnote.WithLogger(a.logger))
	if flags.Changed("adapter") {
		a.opts = append(a.opts, swiftnote.WithAdapter(a.adapter))
	} else if a.config.Adapter != "" {
		a.adapter = a.config.Adapter
	}
	if flags.Changed("read-only") {
		a.opts = append(a.opts, swiftnote.WithReadOnly(a.readOnly))
	}
	if flags.Changed("versioning") {
		a.opts = append(a.opts, swiftnote.WithVersioning(a.versioning))
	}

	a.logger.Debug("configured", "data", a.dataDir, "adapter", a.adapter, "config", cfgPath)
	return nil
}

// open returns the store, creating it on first use.
func (a *app) open(ctx context.Context) (*swiftnote.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := swiftnote.Open(ctx, a.dataDir, a.opts...)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// session returns a loaded session cache over the store.
func (a *app) session(ctx context.Context) (*swiftnote.Session, error) {
	store, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	s := swiftnote.NewSession(store, a.logger)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// readStdin returns piped input. It reports false when stdin is a terminal
// or carries no data, as under cron or with </dev/null.
func (a *app) readStdin() (string, bool, error) {
	if a.interactive() {
		return "", false, nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// execute runs the command tree and releases the store afterwards. Cobra
// skips PersistentPostRunE when a command fails, so the close happens here.
func execute(ctx context.Context, a *app, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}
