package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Manage account groups",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List groups",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, g := range app.store.GetGroups(cmd.Context()) {
					fmt.Fprintln(app.out, g)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.store.AddGroup(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a group; member accounts become ungrouped",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.store.DeleteGroup(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "rename <old> <new>",
			Short: "Rename a group and move its members",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.store.RenameGroup(cmd.Context(), args[0], args[1])
			},
		},
	)
	return cmd
}
