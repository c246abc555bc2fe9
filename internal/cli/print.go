package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

func formatQuota(a models.Account) string {
	if a.UsedQuota == nil && a.TotalQuota == nil {
		return "-"
	}
	num := func(p *int64) string {
		if p == nil {
			return "?"
		}
		return strconv.FormatInt(*p, 10)
	}
	return num(a.UsedQuota) + "/" + num(a.TotalQuota)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printAccounts(w io.Writer, accounts []models.Account) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tEMAIL\tNICKNAME\tGROUP\tTAGS\tPLAN\tQUOTA\tTOKEN EXPIRES\tSTATUS")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Email, orDash(a.Nickname), orDash(a.Group), orDash(strings.Join(a.Tags, ",")),
			orDash(a.PlanName), formatQuota(a), formatTime(a.TokenExpiresAt), a.Status)
	}
	return tw.Flush()
}
