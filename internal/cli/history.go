package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.viewer(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := viewer.Open(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.AddCommand(newHistoryRemoveCmd(app))
	return cmd
}

func newHistoryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <snapshot-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a saved snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return writeErr(cmd, fmt.Errorf("snapshot id must be a positive integer, got %q", args[0]))
			}
			viewer, err := app.viewer(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := viewer.CloseCard(cmd.Context(), uint(id)); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot #%d\n", id)
			return nil
		},
	}
}
