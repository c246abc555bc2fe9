package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// SortField selects the key of GetSortedAccounts.
type SortField string

const (
	SortByEmail                 SortField = "email"
	SortByCreatedAt             SortField = "created_at"
	SortByUsedQuota             SortField = "used_quota"
	SortByRemainingQuota        SortField = "remaining_quota"
	SortByTokenExpiresAt        SortField = "token_expires_at"
	SortBySubscriptionExpiresAt SortField = "subscription_expires_at"
	SortByPlanName              SortField = "plan_name"
)

// SortFields lists every supported field.
var SortFields = []SortField{
	SortByEmail,
	SortByCreatedAt,
	SortByUsedQuota,
	SortByRemainingQuota,
	SortByTokenExpiresAt,
	SortBySubscriptionExpiresAt,
	SortByPlanName,
}

// ParseSortField accepts the snake_case field names.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("sort field %q: %w", s, common.ErrorValidation)
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case Asc, "":
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("sort direction %q: %w", s, common.ErrorValidation)
}

// PlanRank orders subscription plans: enterprise 5, teams 4, pro 3,
// trial 2, free 1, anything else 0.
func PlanRank(plan string) int {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case "enterprise":
		return 5
	case "teams":
		return 4
	case "pro":
		return 3
	case "trial":
		return 2
	case "free":
		return 1
	}
	return 0
}
