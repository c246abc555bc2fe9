package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts", "acc"},
		Short:   "Add, inspect and change accounts",
	}
	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
		newAccountShowCmd(app),
		newAccountUpdateCmd(app),
		newAccountPasswdCmd(app),
		newAccountDeleteCmd(app),
		newAccountTokenCmd(app),
		newAccountOrderCmd(app),
		newAccountSortCmd(app),
		newAccountSearchCmd(app),
	)
	return cmd
}

func newAccountAddCmd(app *App) *cobra.Command {
	var in services.AddAccountInput
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create an account; the password is prompted for when --password is absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Email = args[0]
			if !cmd.Flags().Changed("password") {
				pw, err := app.promptPassword("Password")
				if err != nil {
					return err
				}
				in.Password = pw
			}
			a, err := app.accounts.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "added %s (%s)\n", a.Email, a.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&in.Nickname, "nickname", "n", "", "display name")
	cmd.Flags().StringVarP(&in.Group, "group", "g", "", "group, created when missing (default \""+common.DefaultGroupName+"\")")
	cmd.Flags().StringSliceVarP(&in.Tags, "tag", "t", nil, "tag to attach (repeatable)")
	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	var (
		group  string
		tags   []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, optionally filtered by group or tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var accounts []models.Account
			switch {
			case cmd.Flags().Changed("group"):
				accounts = app.accounts.FilterByGroup(ctx, group)
			case len(tags) > 0:
				accounts = app.accounts.FilterByTags(ctx, tags)
			default:
				accounts = app.store.GetAllAccounts(ctx)
			}
			if asJSON {
				return printJSON(app.out, redact(accounts))
			}
			return printAccounts(app.out, accounts)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "only accounts in this group (empty selects ungrouped)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "only accounts carrying any of these tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// redact blanks secrets before printing.
func redact(accounts []models.Account) []models.Account {
	for i := range accounts {
		accounts[i].Password = ""
		accounts[i].Token = ""
		accounts[i].RefreshToken = ""
	}
	return accounts
}

func newAccountShowCmd(app *App) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one account as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := app.store.GetAccount(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !reveal {
				a = redact([]models.Account{a})[0]
			}
			return printJSON(app.out, a)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "include password and tokens")
	return cmd
}

func newAccountUpdateCmd(app *App) *cobra.Command {
	var (
		email, nickname, group, plan, status, subExpires string
		used, total                                      int64
		disabled                                         bool
		tags                                             []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			f := cmd.Flags()
			var patch models.AccountPatch
			if f.Changed("email") {
				patch.Email = &email
			}
			if f.Changed("nickname") {
				patch.Nickname = &nickname
			}
			if f.Changed("group") {
				patch.Group = &group
			}
			if f.Changed("plan") {
				patch.PlanName = &plan
			}
			if f.Changed("used-quota") {
				patch.UsedQuota = &used
			}
			if f.Changed("total-quota") {
				patch.TotalQuota = &total
			}
			if f.Changed("disabled") {
				patch.Disabled = &disabled
			}
			if f.Changed("tags") {
				patch.Tags = append([]string{}, tags...)
			}
			if f.Changed("subscription-expires") {
				t, err := time.Parse(time.RFC3339, subExpires)
				if err != nil {
					return fmt.Errorf("subscription-expires: %w", common.ErrorValidation)
				}
				patch.SubscriptionExpiresAt = &t
			}
			if f.Changed("status") {
				st, err := parseStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update: %w", common.ErrorValidation)
			}

			a, err := app.accounts.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "updated %s\n", a.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&email, "email", "", "new email")
	f.StringVar(&nickname, "nickname", "", "display name")
	f.StringVar(&group, "group", "", "group (empty clears)")
	f.StringVar(&plan, "plan", "", "subscription plan name")
	f.Int64Var(&used, "used-quota", 0, "used quota")
	f.Int64Var(&total, "total-quota", 0, "total quota")
	f.BoolVar(&disabled, "disabled", false, "disabled flag")
	f.StringSliceVar(&tags, "tags", nil, "replace the tag list")
	f.StringVar(&subExpires, "subscription-expires", "", "subscription expiry (RFC3339)")
	f.StringVar(&status, "status", "", "active, inactive or error:<message>")
	return cmd
}

func parseStatus(s string) (models.AccountStatus, error) {
	switch {
	case strings.EqualFold(s, "active"):
		return models.Active(), nil
	case strings.EqualFold(s, "inactive"):
		return models.Inactive(), nil
	case strings.HasPrefix(strings.ToLower(s), "error:"):
		return models.Errored(strings.TrimSpace(s[len("error:"):])), nil
	}
	return models.AccountStatus{}, fmt.Errorf("status %q: %w", s, common.ErrorValidation)
}

func newAccountPasswdCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <id>",
		Short: "Change an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pw, err := app.promptPassword("New password")
			if err != nil {
				return err
			}
			if pw == "" {
				return fmt.Errorf("empty password: %w", common.ErrorValidation)
			}
			if _, err := app.accounts.Update(cmd.Context(), id, models.AccountPatch{Password: &pw}); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "password changed")
			return nil
		},
	}
}

func newAccountDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete accounts and the log entries that reference them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := app.accounts.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(app.out, "deleted 1 account")
				return nil
			}

			res := app.accounts.DeleteBatch(cmd.Context(), args)
			fmt.Fprintf(app.out, "deleted %d accounts, %d failed\n", res.SuccessCount, len(res.FailedIDs))
			for _, id := range res.FailedIDs {
				fmt.Fprintf(app.out, "  failed: %s\n", id)
			}
			return nil
		},
	}
}

func newAccountTokenCmd(app *App) *cobra.Command {
	var (
		refresh string
		expires string
	)
	cmd := &cobra.Command{
		Use:   "token <id> <token>",
		Short: "Store a new token triple and mark the account active",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var exp time.Time
			if expires != "" {
				exp, err = time.Parse(time.RFC3339, expires)
				if err != nil {
					return fmt.Errorf("expires: %w", common.ErrorValidation)
				}
			}
			stored, err := app.accounts.RefreshTokens(cmd.Context(), id, args[1], refresh, exp)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "token stored, expires %s\n", stored.Local().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&refresh, "refresh", "", "refresh token")
	cmd.Flags().StringVar(&expires, "expires", "", "token expiry (RFC3339); read from the JWT when omitted")
	return cmd
}

func newAccountOrderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "order <id>...",
		Short: "Set the manual order; each id gets its position",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.store.UpdateAccountsOrder(cmd.Context(), args)
		},
	}
}

func newAccountSortCmd(app *App) *cobra.Command {
	var field, dir string
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "List accounts sorted by a field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := app.accounts.Sorted(cmd.Context(), field, dir)
			if err != nil {
				return err
			}
			return printAccounts(app.out, accounts)
		},
	}
	names := make([]string, len(models.SortFields))
	for i, f := range models.SortFields {
		names[i] = string(f)
	}
	cmd.Flags().StringVar(&field, "by", string(models.SortByEmail), "one of "+strings.Join(names, ", "))
	cmd.Flags().StringVar(&dir, "dir", string(models.Asc), "asc or desc")
	return cmd
}

func newAccountSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find accounts by email, nickname or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAccounts(app.out, app.accounts.Search(cmd.Context(), args[0]))
		},
	}
}
