package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// Snapshot returns a deep copy of the whole aggregate.
func (s *Store) Snapshot(_ context.Context) models.AppConfig {
	var out models.AppConfig
	s.view(func(c *models.AppConfig) { out = c.Clone() })
	return out
}

// ReplaceConfig swaps in cfg wholesale after validating it.
func (s *Store) ReplaceConfig(ctx context.Context, cfg models.AppConfig) error {
	next := cfg.Clone()
	next.Logs = nil
	next.Normalize()
	if err := next.Validate(); err != nil {
		return common.WrapValidation("replace config", err)
	}
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		*c = next
		return nil
	})
}

// ImportAccounts brings accounts and groups in from another install.
//
// With merge, accounts whose email already exists are skipped and the rest
// are appended; otherwise the account list is replaced. A nil accounts slice
// leaves the accounts alone in both modes. Groups are always merged
// additively. Settings are never touched.
func (s *Store) ImportAccounts(ctx context.Context, accounts []models.Account, groups []string, merge bool) (models.ImportResult, error) {
	var res models.ImportResult
	incoming := cloneAccounts(accounts)
	for i := range incoming {
		if incoming[i].Tags == nil {
			incoming[i].Tags = []string{}
		}
		if incoming[i].TagColors == nil {
			incoming[i].TagColors = []models.TagWithColor{}
		}
	}

	err := s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		switch {
		case accounts == nil:
		case merge:
			ids := make(map[uuid.UUID]struct{}, len(c.Accounts))
			for _, a := range c.Accounts {
				ids[a.ID] = struct{}{}
			}
			for _, a := range incoming {
				if c.HasEmail(a.Email) {
					res.AccountsSkipped++
					continue
				}
				if _, clash := ids[a.ID]; clash || a.ID == uuid.Nil {
					a.ID = uuid.New()
				}
				ids[a.ID] = struct{}{}
				c.Accounts = append(c.Accounts, a)
				res.AccountsAdded++
			}
		default:
			c.Accounts = incoming
			res.AccountsAdded = len(incoming)
		}

		for _, g := range groups {
			if g != "" && !c.HasGroup(g) {
				c.Groups = append(c.Groups, g)
				res.GroupsAdded++
			}
		}
		return nil
	})
	if err != nil {
		return models.ImportResult{}, err
	}
	return res, nil
}
