// Package services holds the command layer between the CLI and the store:
// it combines store operations and records an OperationLog for each.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/store"
	"github.com/dmitrijs2005/accountkeeper/internal/tokens"
)

// AddAccountInput carries the fields accepted when creating an account.
type AddAccountInput struct {
	Email    string
	Password string
	Nickname string
	Group    string
	Tags     []string
}

// BatchResult reports a best-effort batch. FailedIDs keeps the raw input of
// every id that could not be processed.
type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	FailedIDs    []string `json:"failed_ids"`
}

// TokenUpdate is one entry of a batch token refresh.
type TokenUpdate struct {
	AccountID    uuid.UUID
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

type AccountService struct {
	store *store.Store
	log   logging.Logger
	now   func() time.Time
}

func NewAccountService(s *store.Store, l logging.Logger) *AccountService {
	if l == nil {
		l = logging.Nop()
	}
	return &AccountService{store: s, log: l, now: time.Now}
}

// record appends an operation log. Failures to log never fail the caller.
func (s *AccountService) record(ctx context.Context, entry models.OperationLog) {
	if err := s.store.Logs().AddLog(ctx, entry); err != nil {
		s.log.Warn(ctx, "operation log not written", "type", entry.Type, "err", err)
	}
}

// Add creates the account with its initial tag list in one write.
func (s *AccountService) Add(ctx context.Context, in AddAccountInput) (models.Account, error) {
	a, err := s.store.AddAccountWithTags(ctx, in.Email, in.Password, in.Nickname, in.Group, in.Tags)
	if err != nil {
		return models.Account{}, err
	}

	s.record(ctx, models.NewOperationLog(models.OpAddAccount, models.LogSuccess,
		"added account "+a.Email).ForAccount(a.ID, a.Email))
	return a, nil
}

// Update applies patch, then changes the password when patch carries a
// non-empty one.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, patch models.AccountPatch) (models.Account, error) {
	a, err := s.store.ApplyAccountPatch(ctx, id, patch)
	if err != nil {
		return models.Account{}, err
	}

	if patch.Password != nil && *patch.Password != "" {
		if err := s.store.UpdateAccountPassword(ctx, id, *patch.Password); err != nil {
			return models.Account{}, err
		}
		a.Password = *patch.Password
	}

	s.record(ctx, models.NewOperationLog(models.OpEditAccount, models.LogSuccess,
		"updated account "+a.Email).ForAccount(a.ID, a.Email))
	return a, nil
}

// Delete removes the account. The resulting log entry carries no account
// reference so that it outlives the cascade.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.record(ctx, models.NewOperationLog(models.OpDeleteAccount, models.LogSuccess,
		"deleted account "+a.Email))
	return nil
}

// DeleteBatch deletes every id it can and reports the rest.
func (s *AccountService) DeleteBatch(ctx context.Context, ids []string) BatchResult {
	res := BatchResult{FailedIDs: []string{}}
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			res.FailedIDs = append(res.FailedIDs, raw)
			continue
		}
		if err := s.store.DeleteAccount(ctx, id); err != nil {
			res.FailedIDs = append(res.FailedIDs, raw)
			continue
		}
		res.SuccessCount++
	}

	status := models.LogSuccess
	if len(res.FailedIDs) > 0 {
		status = models.LogFailed
	}
	s.record(ctx, models.NewOperationLog(models.OpBatchOperation, status,
		fmt.Sprintf("batch delete: %d succeeded, %d failed", res.SuccessCount, len(res.FailedIDs))))
	return res
}

// RefreshTokens stores a new token triple. A zero expiresAt is derived from
// the token itself and falls back to one hour from now. The expiry actually
// stored is returned.
func (s *AccountService) RefreshTokens(ctx context.Context, id uuid.UUID, token, refreshToken string, expiresAt time.Time) (time.Time, error) {
	exp := tokens.ResolveExpiry(token, expiresAt, s.now().UTC())

	email := ""
	if a, err := s.store.GetAccount(ctx, id); err == nil {
		email = a.Email
	}

	if err := s.store.UpdateAccountTokens(ctx, id, token, refreshToken, exp); err != nil {
		s.record(ctx, models.NewOperationLog(models.OpRefreshToken, models.LogFailed,
			"token refresh failed: "+err.Error()).ForAccount(id, email))
		return time.Time{}, err
	}

	s.record(ctx, models.NewOperationLog(models.OpRefreshToken, models.LogSuccess,
		"token refreshed for "+email).ForAccount(id, email))
	return exp, nil
}

// RefreshTokensBatch applies every update in memory and writes the store
// once at the end. Unknown accounts are counted as failures.
func (s *AccountService) RefreshTokensBatch(ctx context.Context, updates []TokenUpdate) (success, failed int, err error) {
	now := s.now().UTC()
	for _, u := range updates {
		exp := tokens.ResolveExpiry(u.Token, u.ExpiresAt, now)
		if err := s.store.UpdateAccountTokensNoSave(ctx, u.AccountID, u.Token, u.RefreshToken, exp); err != nil {
			failed++
			continue
		}
		success++
	}

	if err := s.store.Flush(ctx); err != nil {
		return success, failed, err
	}

	status := models.LogSuccess
	if failed > 0 {
		status = models.LogFailed
	}
	s.record(ctx, models.NewOperationLog(models.OpRefreshToken, status,
		fmt.Sprintf("batch token refresh: %d succeeded, %d failed", success, failed)))
	return success, failed, nil
}

func (s *AccountService) Search(ctx context.Context, query string) []models.Account {
	return s.store.SearchAccounts(ctx, query)
}

func (s *AccountService) FilterByGroup(ctx context.Context, group string) []models.Account {
	return s.store.FilterAccountsByGroup(ctx, group)
}

func (s *AccountService) FilterByTags(ctx context.Context, tags []string) []models.Account {
	return s.store.FilterAccountsByTags(ctx, tags)
}

// Sorted parses the textual field and direction and returns the sorted list.
func (s *AccountService) Sorted(ctx context.Context, field, direction string) ([]models.Account, error) {
	f, err := models.ParseSortField(field)
	if err != nil {
		return nil, err
	}
	d, err := models.ParseSortDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.store.GetSortedAccounts(ctx, f, d)
}
