package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func newTagCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Manage global tags and account tagging",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tags with their colors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tw := newTable(app.out)
				fmt.Fprintln(tw, "NAME\tCOLOR")
				for _, t := range app.store.GetTags(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%s\n", t.Name, orDash(t.Color))
				}
				return tw.Flush()
			},
		},
		newTagAddCmd(app),
		newTagUpdateCmd(app),
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a tag everywhere",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.store.DeleteTag(cmd.Context(), args[0])
			},
		},
		newTagBatchCmd(app),
	)
	return cmd
}

func newTagAddCmd(app *App) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.store.AddTag(cmd.Context(), models.GlobalTag{Name: args[0], Color: color})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "default color, e.g. #ff8800")
	return cmd
}

func newTagUpdateCmd(app *App) *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename a tag or change its color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tags := app.store.GetTags(ctx)
			i := slices.IndexFunc(tags, func(t models.GlobalTag) bool { return t.Name == args[0] })
			if i < 0 {
				return fmt.Errorf("tag %q: %w", args[0], common.ErrorNotFound)
			}
			next := tags[i]
			if cmd.Flags().Changed("name") {
				next.Name = name
			}
			if cmd.Flags().Changed("color") {
				next.Color = color
			}
			return app.store.UpdateTag(ctx, args[0], next)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new default color")
	return cmd
}

func newTagBatchCmd(app *App) *cobra.Command {
	var add, remove []string
	cmd := &cobra.Command{
		Use:   "batch <id>...",
		Short: "Add and remove tags on several accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(add) == 0 && len(remove) == 0 {
				return fmt.Errorf("give --add or --remove: %w", common.ErrorValidation)
			}
			ok, failed, err := app.store.BatchUpdateAccountTags(cmd.Context(), args, add, remove)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "updated %d accounts, %d failed\n", ok, failed)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&add, "add", nil, "tags to add")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "tags to remove")
	return cmd
}
