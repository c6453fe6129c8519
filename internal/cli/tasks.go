package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := app.controller(ctx, cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctrl.Add(ctx, strings.Join(args, " ")); err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), ctrl.Tasks())
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the task list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			printTasks(cmd.OutOrStdout(), ctrl.Tasks())
			return nil
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <n>",
		Short: "Flip completion of task number n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := position(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			ctrl, err := app.controller(ctx, cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctrl.ToggleAt(ctx, pos); err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), ctrl.Tasks())
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <n> <title...>",
		Short: "Rename task number n",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := position(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			ctrl, err := app.controller(ctx, cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := ctrl.Tasks()
			if pos >= len(tasks) {
				return writeErr(cmd, fmt.Errorf("there is no task #%d", pos+1))
			}
			if err := ctrl.Edit(ctx, tasks[pos].ID, strings.Join(args[1:], " ")); err != nil {
				return writeErr(cmd, err)
			}
			printTasks(cmd.OutOrStdout(), ctrl.Tasks())
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"remove"},
		Short:   "Delete task number n",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := position(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			ctrl, err := app.controller(ctx, cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctrl.RemoveAt(ctx, pos); err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), ctrl.Tasks())
			return nil
		},
	}
}

func newSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save [title...]",
		Short: "Save the current list as a snapshot (title defaults to today's date)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := app.controller(ctx, cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			entry, err := ctrl.Capture(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%d tasks)\n", entry.ID, entry.Title, len(entry.Items))
			return nil
		},
	}
}

// position converts a 1-based task number into a mirror position.
func position(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("task number must be a positive integer, got %q", raw)
	}
	return n - 1, nil
}
