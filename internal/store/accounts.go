package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func findAccount(c *models.AppConfig, id uuid.UUID) int {
	for i := range c.Accounts {
		if c.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("account %s: %w", id, common.ErrorNotFound)
}

func duplicateEmail(email string) error {
	return fmt.Errorf("email %s: %w", email, common.ErrorAlreadyExists)
}

// emailTaken reports whether any account other than except uses email.
func emailTaken(c *models.AppConfig, email string, except uuid.UUID) bool {
	for _, a := range c.Accounts {
		if a.ID != except && models.SameEmail(a.Email, email) {
			return true
		}
	}
	return false
}

// AddAccount creates an account in group, or in the default group when group
// is blank. The group is created if it does not exist yet.
func (s *Store) AddAccount(ctx context.Context, email, password, nickname, group string) (models.Account, error) {
	return s.AddAccountWithTags(ctx, email, password, nickname, group, nil)
}

// AddAccountWithTags is AddAccount with an initial tag list, written in the
// same mutation. Blank and repeated names are dropped; tags known globally
// bring their default color.
func (s *Store) AddAccountWithTags(ctx context.Context, email, password, nickname, group string, tags []string) (models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Account{}, fmt.Errorf("email is required: %w", common.ErrorValidation)
	}
	group = strings.TrimSpace(group)
	if group == "" {
		group = common.DefaultGroupName
	}

	var created models.Account
	err := s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		if c.HasEmail(email) {
			return duplicateEmail(email)
		}
		if !c.HasGroup(group) {
			c.Groups = append(c.Groups, group)
		}
		a := models.NewAccount(email, password, nickname, group)
		for _, name := range models.CleanTags(tags) {
			addAccountTag(c, &a, name)
		}
		c.Accounts = append(c.Accounts, a)
		created = a.Clone()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return created, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (models.Account, error) {
	var (
		out models.Account
		err error
	)
	s.view(func(c *models.AppConfig) {
		i := findAccount(c, id)
		if i < 0 {
			err = notFound(id)
			return
		}
		out = c.Accounts[i].Clone()
	})
	return out, err
}

// GetAllAccounts returns every account in storage order.
func (s *Store) GetAllAccounts(_ context.Context) []models.Account {
	var out []models.Account
	s.view(func(c *models.AppConfig) {
		out = cloneAccounts(c.Accounts)
	})
	return out
}

func cloneAccounts(in []models.Account) []models.Account {
	out := make([]models.Account, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// UpdateAccount replaces the stored record with the same id. The stored
// password always survives; use UpdateAccountPassword to change it.
func (s *Store) UpdateAccount(ctx context.Context, a models.Account) error {
	if err := s.UpdateAccountNoSave(ctx, a); err != nil {
		return err
	}
	return s.persist(ctx)
}

// UpdateAccountNoSave is UpdateAccount without the disk write. Call Flush to
// commit.
func (s *Store) UpdateAccountNoSave(_ context.Context, a models.Account) error {
	return s.mutate(func(c *models.AppConfig) error {
		i := findAccount(c, a.ID)
		if i < 0 {
			return notFound(a.ID)
		}
		email := strings.TrimSpace(a.Email)
		if email == "" {
			return fmt.Errorf("email is required: %w", common.ErrorValidation)
		}
		if emailTaken(c, email, a.ID) {
			return duplicateEmail(email)
		}

		next := a.Clone()
		next.Email = email
		next.Password = c.Accounts[i].Password
		next.Tags = models.CleanTags(next.Tags)
		if next.Tags == nil {
			next.Tags = []string{}
		}
		if next.TagColors == nil {
			next.TagColors = []models.TagWithColor{}
		}
		if err := next.Validate(); err != nil {
			return common.WrapValidation("account "+a.ID.String(), err)
		}
		c.Accounts[i] = next
		return nil
	})
}

// ApplyAccountPatch updates the fields set in patch and returns the result.
// patch.Password is ignored.
func (s *Store) ApplyAccountPatch(ctx context.Context, id uuid.UUID, patch models.AccountPatch) (models.Account, error) {
	var updated models.Account
	err := s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		i := findAccount(c, id)
		if i < 0 {
			return notFound(id)
		}
		if patch.Email != nil {
			email := strings.TrimSpace(*patch.Email)
			if email == "" {
				return fmt.Errorf("email is required: %w", common.ErrorValidation)
			}
			if emailTaken(c, email, id) {
				return duplicateEmail(email)
			}
			patch.Email = &email
		}

		patch.Tags = models.CleanTags(patch.Tags)

		next := c.Accounts[i].Clone()
		patch.Apply(&next)
		if err := next.Validate(); err != nil {
			return common.WrapValidation("account "+id.String(), err)
		}
		c.Accounts[i] = next
		updated = next.Clone()
		return nil
	})
	return updated, err
}

// DeleteAccount removes the account and every log entry that references it.
func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := s.mutate(func(c *models.AppConfig) error {
		i := findAccount(c, id)
		if i < 0 {
			return notFound(id)
		}
		c.Accounts = append(c.Accounts[:i], c.Accounts[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.logs.DeleteLogsForAccount(ctx, id); err != nil {
		s.log.Warn(ctx, "cascade log delete failed", "account_id", id, "err", err)
	}
	return s.persist(ctx)
}

// UpdateAccountPassword is the only operation that changes a password.
func (s *Store) UpdateAccountPassword(ctx context.Context, id uuid.UUID, password string) error {
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		i := findAccount(c, id)
		if i < 0 {
			return notFound(id)
		}
		c.Accounts[i].Password = password
		return nil
	})
}

// UpdateAccountTokens stores a new token triple, marks the account Active,
// stamps its last login and notifies the subscriber.
func (s *Store) UpdateAccountTokens(ctx context.Context, id uuid.UUID, token, refreshToken string, expiresAt time.Time) error {
	if err := s.setTokens(id, token, refreshToken, expiresAt); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.notifyTokens(ctx, id, token, expiresAt)
	return nil
}

// UpdateAccountTokensNoSave is UpdateAccountTokens without the disk write,
// for batch refresh cycles that end with Flush.
func (s *Store) UpdateAccountTokensNoSave(ctx context.Context, id uuid.UUID, token, refreshToken string, expiresAt time.Time) error {
	if err := s.setTokens(id, token, refreshToken, expiresAt); err != nil {
		return err
	}
	s.notifyTokens(ctx, id, token, expiresAt)
	return nil
}

func (s *Store) setTokens(id uuid.UUID, token, refreshToken string, expiresAt time.Time) error {
	return s.mutate(func(c *models.AppConfig) error {
		i := findAccount(c, id)
		if i < 0 {
			return notFound(id)
		}
		now := time.Now().UTC()
		exp := expiresAt
		a := &c.Accounts[i]
		a.Token = token
		a.RefreshToken = refreshToken
		a.TokenExpiresAt = &exp
		a.LastLoginAt = &now
		a.Status = models.Active()
		return nil
	})
}

func (s *Store) notifyTokens(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) {
	ev := models.TokenRefreshedEvent{AccountID: id, Token: token, ExpiresAt: expiresAt}
	if err := s.notifier.TokenRefreshed(ctx, ev); err != nil {
		s.log.Warn(ctx, "token refresh notification failed", "account_id", id, "err", err)
	}
}

func (s *Store) GetAccountPassword(_ context.Context, id uuid.UUID) (string, error) {
	var (
		pw  string
		err error
	)
	s.view(func(c *models.AppConfig) {
		i := findAccount(c, id)
		if i < 0 {
			err = notFound(id)
			return
		}
		pw = c.Accounts[i].Password
	})
	return pw, err
}

// GetAccountToken returns the current auth token, "" when none is stored.
func (s *Store) GetAccountToken(_ context.Context, id uuid.UUID) (string, error) {
	var (
		tok string
		err error
	)
	s.view(func(c *models.AppConfig) {
		i := findAccount(c, id)
		if i < 0 {
			err = notFound(id)
			return
		}
		tok = c.Accounts[i].Token
	})
	return tok, err
}

// UpdateAccountsOrder sets each account's sort position to its index in ids.
// Unknown or malformed ids are skipped.
func (s *Store) UpdateAccountsOrder(ctx context.Context, ids []string) error {
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		for pos, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			if i := findAccount(c, id); i >= 0 {
				c.Accounts[i].SortOrder = pos
			}
		}
		return nil
	})
}

// SearchAccounts matches query case-insensitively against email, nickname
// and tag names. An empty query matches everything.
func (s *Store) SearchAccounts(_ context.Context, query string) []models.Account {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filter(func(a *models.Account) bool {
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(a.Email), q) || strings.Contains(strings.ToLower(a.Nickname), q) {
			return true
		}
		for _, t := range a.Tags {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
		return false
	})
}

// FilterAccountsByGroup returns the members of group. An empty group selects
// accounts without a group.
func (s *Store) FilterAccountsByGroup(_ context.Context, group string) []models.Account {
	return s.filter(func(a *models.Account) bool { return a.Group == group })
}

// FilterAccountsByTags returns accounts carrying at least one of tags.
func (s *Store) FilterAccountsByTags(_ context.Context, tags []string) []models.Account {
	return s.filter(func(a *models.Account) bool {
		for _, t := range tags {
			if a.HasTag(t) {
				return true
			}
		}
		return false
	})
}

func (s *Store) filter(keep func(a *models.Account) bool) []models.Account {
	out := []models.Account{}
	s.view(func(c *models.AppConfig) {
		for i := range c.Accounts {
			if keep(&c.Accounts[i]) {
				out = append(out, c.Accounts[i].Clone())
			}
		}
	})
	return out
}
