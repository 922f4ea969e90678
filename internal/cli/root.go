// Package cli wires the todo commands together.
package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/persist"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// ErrUsage marks errors caused by how the command was invoked (exit code 2).
var ErrUsage = errors.New("usage error")

type usageError struct{ msg string }

func (e usageError) Error() string        { return e.msg }
func (e usageError) Is(target error) bool { return target == ErrUsage }

func usageErrorf(format string, a ...any) error {
	return usageError{msg: fmt.Sprintf(format, a...)}
}

// Env carries the dependencies a command run needs. Zero fields get
// production defaults; tests fill them in.
type Env struct {
	Slot      store.Slot
	Now       func() time.Time
	NewID     func() string
	LogOutput io.Writer
	RunTUI    func(cmd *cobra.Command, s *state.Store) error
}

// Options tune behavior from root flags.
type Options struct {
	ConfigPath string
	Backend    string
	DataDir    string
	Theme      string
	LogLevel   string
	Group      bool // list grouped by pending/done
}

type app struct {
	env  Env
	opt  Options
	cfg  *config.Config
	log  *log.Logger
	st   *state.Store
	done func() error
}

// NewRootCommand builds the tada command tree.
func NewRootCommand(env Env, version string) *cobra.Command {
	a := &app{env: env}
	if a.env.Now == nil {
		a.env.Now = time.Now
	}
	if a.env.RunTUI == nil {
		a.env.RunTUI = func(cmd *cobra.Command, s *state.Store) error {
			return tui.Run(cmd.Context(), s)
		}
	}

	root := &cobra.Command{
		Use:   "tada",
		Short: "a tiny todo list",
		Long: `tada keeps a todo list in a local slot (a JSON file or SQLite database).

Run without a subcommand to open the interactive list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opt.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/tada/config.toml)")
	f.StringVar(&a.opt.Backend, "backend", "", "storage backend: file or sqlite")
	f.StringVar(&a.opt.DataDir, "data-dir", "", "directory holding the todo slot")
	f.StringVar(&a.opt.Theme, "theme", "", "color theme: classic, neon or mono")
	f.StringVar(&a.opt.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&a.opt.Group, "group", false, "group output by pending/done")

	root.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newToggleCommand(a),
		newRemoveCommand(a),
		newExportCommand(a),
		newTUICommand(a),
		newConfigCommand(a),
	)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})
	return root
}

// setup resolves configuration, theme and logging.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.opt.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Override(config.Config{
		Backend:  a.opt.Backend,
		DataDir:  a.opt.DataDir,
		Theme:    a.opt.Theme,
		LogLevel: a.opt.LogLevel,
	}); err != nil {
		return usageErrorf("%v", err)
	}
	a.cfg = cfg

	ui.SetTheme(cfg.Theme)
	out := a.env.LogOutput
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	a.log = logging.New(out, cfg.LogLevel)
	return nil
}

// withStore opens the list, runs fn and releases the backend.
func (a *app) withStore(cmd *cobra.Command, fn func(*state.Store) error) error {
	st, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			a.log.Warn("closing store failed", "err", cerr)
		}
	}()
	return fn(st)
}

// open loads the list once per invocation.
func (a *app) open(cmd *cobra.Command) (*state.Store, error) {
	if a.st != nil {
		return a.st, nil
	}
	if err := a.setup(cmd); err != nil {
		return nil, err
	}

	slot := a.env.Slot
	a.done = func() error { return nil }
	if slot == nil {
		switch a.cfg.Backend {
		case config.BackendSQLite:
			db, err := sqlitestore.Open(filepath.Join(a.cfg.DataDir, sqlitestore.FileName))
			if err != nil {
				return nil, err
			}
			slot, a.done = db, db.Close
		default:
			slot = jsonstore.New(a.cfg.DataDir)
		}
	}

	opts := []state.Option{state.WithClock(a.env.Now), state.WithLogger(a.log)}
	if a.env.NewID != nil {
		opts = append(opts, state.WithIDGenerator(a.env.NewID))
	}
	bridge := persist.NewBridge(slot, a.cfg.Key, persist.WithLogger(a.log))
	st, rep := state.Open(cmd.Context(), bridge, opts...)
	a.log.Debug("list opened", "backend", a.cfg.Backend, "status", rep.Status, "items", rep.Count)
	a.st = st
	return st, nil
}

func (a *app) close() error {
	if a.done == nil {
		return nil
	}
	err := a.done()
	a.done = nil
	a.st = nil
	return err
}

func (a *app) runTUI(cmd *cobra.Command) error {
	return a.withStore(cmd, func(st *state.Store) error {
		if err := a.env.RunTUI(cmd, st); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown subcommand %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("usage: %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("usage: %s", usage)
		}
		return nil
	}
}

// ExitCode prints err to w and returns the process exit code
// (0 ok, 1 error, 2 usage).
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	ui.Fail(w, err.Error())
	if errors.Is(err, ErrUsage) {
		return 2
	}
	return 1
}
