package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		Aliases: []string{"backups"},
		Short:   "Snapshots, restore and cross-install export/import",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Write a timestamped snapshot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := app.data.Backup(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(app.out, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List snapshots, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := app.data.ListBackups(cmd.Context())
				if err != nil {
					return err
				}
				tw := newTable(app.out)
				fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
				for _, b := range list {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Name, b.Size, formatTime(&b.CreatedAt))
				}
				return tw.Flush()
			},
		},
		newBackupRestoreCmd(app),
		&cobra.Command{
			Use:   "export <path>",
			Short: "Write accounts, groups and settings to an export file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.data.Export(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(app.out, "exported to", args[0])
				return nil
			},
		},
		newBackupImportCmd(app),
	)
	return cmd
}

func newBackupRestoreCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Replace the current data with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := Confirm(app.in, "Replace all current data with "+args[0]+"?", app.errOut)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(app.out, "restore cancelled")
					return nil
				}
			}
			if err := app.data.Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "restored from", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newBackupImportCmd(app *App) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import an export file, merging by email unless --replace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.data.Import(cmd.Context(), args[0], !replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "accounts added: %d, skipped: %d, groups added: %d\n",
				res.AccountsAdded, res.AccountsSkipped, res.GroupsAdded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the account list instead of merging")
	return cmd
}
