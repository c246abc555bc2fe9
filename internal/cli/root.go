package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accountkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/accountkeeper/internal/config"
)

// NewRootCommand builds the keeper command tree bound to streams.
func NewRootCommand(streams Streams) *cobra.Command {
	app := newApp(streams)

	root := &cobra.Command{
		Use:           "keeper",
		Short:         "Manage locally stored accounts, tokens and backups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.RegisterFlags(root.PersistentFlags())

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := flags.Resolve()
		if err != nil {
			return err
		}
		return app.init(cmd.Context(), cfg)
	}

	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.AddCommand(
		newAccountCmd(app),
		newGroupCmd(app),
		newTagCmd(app),
		newSettingsCmd(app),
		newLogCmd(app),
		newBackupCmd(app),
		newNetCmd(app),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// overrides the root hook so no store is opened
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the command tree against the process streams.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
