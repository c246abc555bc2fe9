package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the card-binding settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the settings as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(app.out, app.store.GetSettings(cmd.Context()))
			},
		},
		newSettingsSetCmd(app),
	)
	return cmd
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var (
		customBIN, binRange, lastTestBIN string
		useBINPool, testMode             bool
		retries                          int
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the settings given as flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s := app.store.GetSettings(ctx)
			f := cmd.Flags()
			if f.Changed("custom-bin") {
				s.CustomBIN = customBIN
			}
			if f.Changed("bin-range") {
				s.BINRange = binRange
			}
			if f.Changed("use-bin-pool") {
				s.UseBINPool = useBINPool
			}
			if f.Changed("test-mode") {
				s.TestModeEnabled = testMode
			}
			if f.Changed("last-test-bin") {
				s.LastTestBIN = lastTestBIN
			}
			if f.Changed("retries") {
				s.CardBindRetryTimes = retries
			}
			if err := app.store.UpdateSettings(ctx, s); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "settings saved")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&customBIN, "custom-bin", "", "card BIN prefix")
	f.StringVar(&binRange, "bin-range", "", "BIN range, e.g. 626200-626299")
	f.BoolVar(&useBINPool, "use-bin-pool", false, "draw BINs from the pool")
	f.BoolVar(&testMode, "test-mode", false, "enable test mode")
	f.StringVar(&lastTestBIN, "last-test-bin", "", "test mode resume cursor")
	f.IntVar(&retries, "retries", 0, "card bind retry count")
	return cmd
}
