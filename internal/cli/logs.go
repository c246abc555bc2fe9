package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent operation log entries, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(app.out)
			fmt.Fprintln(tw, "TIME\tTYPE\tSTATUS\tACCOUNT\tMESSAGE")
			for _, l := range app.store.Logs().GetLogs(cmd.Context(), limit) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					formatTime(&l.CreatedAt), l.Type, l.Status, orDash(l.AccountEmail), l.Message)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 50, "number of entries; 0 shows all")

	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"logs"},
		Short:   "Inspect or clear the operation log",
	}
	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every log entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.store.Logs().ClearLogs(cmd.Context())
			},
		},
	)
	return cmd
}
