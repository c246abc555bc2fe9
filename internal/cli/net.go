package cli

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newNetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "net",
		Short: "Exercise the supervised HTTP clients",
	}
	cmd.AddCommand(newNetProbeCmd(app))
	return cmd
}

func newNetProbeCmd(app *App) *cobra.Command {
	var (
		count    int
		useProxy bool
	)
	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "GET a URL through the supervisor and report client health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 1; i <= count; i++ {
				req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, args[0], nil)
				if err != nil {
					return err
				}

				var resp *http.Response
				if useProxy {
					resp, err = app.net.GetProxyClient().Do(req)
				} else {
					resp, err = app.net.Do(req)
				}
				if err != nil {
					fmt.Fprintf(app.out, "#%d error: %v\n", i, err)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				fmt.Fprintf(app.out, "#%d %s %s\n", i, resp.Proto, resp.Status)
			}

			fmt.Fprintf(app.out, "generation: %d, consecutive failures: %d\n",
				app.net.Generation(), app.net.ConsecutiveFailures())
			return app.printMetrics()
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of requests")
	cmd.Flags().BoolVar(&useProxy, "proxy-client", false, "use the proxy-capable API client")
	return cmd
}

// printMetrics writes every collected sample as name{labels} value.
func (a *App) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, v))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(a.out, l)
	}
	return nil
}
