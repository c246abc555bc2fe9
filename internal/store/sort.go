package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// GetSortedAccounts returns all accounts stably sorted by field.
//
// Desc reverses the key order, not the result, so ties keep their storage
// order in both directions. Absent timestamps go last either way; absent
// quota counters count as zero. Plans rank by models.PlanRank, so Asc puts
// unknown and free plans first.
func (s *Store) GetSortedAccounts(ctx context.Context, field models.SortField, dir models.SortDirection) ([]models.Account, error) {
	field, err := models.ParseSortField(string(field))
	if err != nil {
		return nil, err
	}
	dir, err = models.ParseSortDirection(string(dir))
	if err != nil {
		return nil, err
	}

	accounts := s.GetAllAccounts(ctx)
	desc := dir == models.Desc
	compare := comparator(field)

	slices.SortStableFunc(accounts, func(a, b models.Account) int {
		return compare(&a, &b, desc)
	})
	return accounts, nil
}

type compareFunc func(a, b *models.Account, desc bool) int

func comparator(field models.SortField) compareFunc {
	switch field {
	case models.SortByEmail:
		return ordered(func(a *models.Account) string { return strings.ToLower(a.Email) })
	case models.SortByCreatedAt:
		return func(a, b *models.Account, desc bool) int {
			return orient(a.CreatedAt.Compare(b.CreatedAt), desc)
		}
	case models.SortByUsedQuota:
		return ordered(func(a *models.Account) int64 {
			if a.UsedQuota == nil {
				return 0
			}
			return *a.UsedQuota
		})
	case models.SortByRemainingQuota:
		return ordered(func(a *models.Account) int64 { return a.RemainingQuota() })
	case models.SortByTokenExpiresAt:
		return optionalTime(func(a *models.Account) *time.Time { return a.TokenExpiresAt })
	case models.SortBySubscriptionExpiresAt:
		return optionalTime(func(a *models.Account) *time.Time { return a.SubscriptionExpiresAt })
	default:
		return ordered(func(a *models.Account) int { return models.PlanRank(a.PlanName) })
	}
}

func orient(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

func ordered[K cmp.Ordered](key func(*models.Account) K) compareFunc {
	return func(a, b *models.Account, desc bool) int {
		return orient(cmp.Compare(key(a), key(b)), desc)
	}
}

func optionalTime(key func(*models.Account) *time.Time) compareFunc {
	return func(a, b *models.Account, desc bool) int {
		ta, tb := key(a), key(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return 1
		case tb == nil:
			return -1
		}
		return orient(ta.Compare(*tb), desc)
	}
}
