package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/persist"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <text...>",
		Short:   "Add a new item (text can be multiple words)",
		Example: `  tada add "Buy milk"`,
		Args:    minArgs(1, "tada add <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(st *state.Store) error {
				res, err := st.Add(cmd.Context(), strings.Join(args, " "))
				if res == model.EmptyText {
					return usageErrorf("add: empty text")
				}
				if res != model.Applied {
					return fmt.Errorf("add: %s", res)
				}
				if err != nil {
					return fmt.Errorf("save: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "added")
				return nil
			})
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items, newest first, colored by age",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(st *state.Store) error {
				r := renderer{now: a.env.Now(), showIDs: showIDs}
				ui.Panel(cmd.OutOrStdout(), r.panel(st.Items(), a.opt.Group))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "show item id prefixes")
	return cmd
}

func newToggleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <index|id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle done for an item (1-based index or id prefix; refs of 8+ characters match ids first)",
		Args:    exactArgs(1, "tada done <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], "toggled", toggleItem)
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index|id>",
		Aliases: []string{"remove"},
		Short:   "Remove an item (1-based index or id prefix; refs of 8+ characters match ids first)",
		Args:    exactArgs(1, "tada rm <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], "removed", removeItem)
		},
	}
}

type mutation func(cmd *cobra.Command, st *state.Store, id string) (model.Result, error)

func toggleItem(cmd *cobra.Command, st *state.Store, id string) (model.Result, error) {
	return st.Toggle(cmd.Context(), id)
}

func removeItem(cmd *cobra.Command, st *state.Store, id string) (model.Result, error) {
	return st.Remove(cmd.Context(), id)
}

func (a *app) mutate(cmd *cobra.Command, ref, verb string, fn mutation) error {
	return a.withStore(cmd, func(st *state.Store) error {
		it, ok := st.Find(ref)
		if !ok {
			ui.Hint(cmd.ErrOrStderr(), "Hint: run `tada ls --ids` to see valid indexes and ids")
			return usageErrorf("no item matches %q (have %d)", ref, st.Len())
		}
		res, err := fn(cmd, st, it.ID)
		if res != model.Applied {
			return fmt.Errorf("%s: %s", verb, res)
		}
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		ui.OK(cmd.OutOrStdout(), verb)
		return nil
	})
}

func newExportCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored list as JSON or YAML",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var encode func(v any) ([]byte, error)
			switch strings.ToLower(format) {
			case "json":
				encode = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
			case "yaml", "yml":
				encode = yaml.Marshal
			default:
				return usageErrorf("export: unknown format %q (want json or yaml)", format)
			}
			return a.withStore(cmd, func(st *state.Store) error {
				b, err := encode(persist.Records(st.Items()))
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				out := cmd.OutOrStdout()
				if _, err := out.Write(b); err != nil {
					return err
				}
				if len(b) > 0 && b[len(b)-1] != '\n' {
					_, err = fmt.Fprintln(out)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			b, err := a.cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
