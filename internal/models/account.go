package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a managed credential and subscription record.
type Account struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email" validate:"required"`
	Password  string         `json:"password"`
	Nickname  string         `json:"nickname"`
	Group     string         `json:"group,omitempty"`
	Tags      []string       `json:"tags" validate:"dive,required"`
	TagColors []TagWithColor `json:"tag_colors" validate:"dive"`

	Token          string     `json:"token,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`

	PlanName              string     `json:"plan_name,omitempty"`
	UsedQuota             *int64     `json:"used_quota,omitempty"`
	TotalQuota            *int64     `json:"total_quota,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`

	Disabled           bool          `json:"disabled"`
	CreatedAt          time.Time     `json:"created_at"`
	LastLoginAt        *time.Time    `json:"last_login_at,omitempty"`
	LastQuotaRefreshAt *time.Time    `json:"last_quota_refresh_at,omitempty"`
	SortOrder          int           `json:"sort_order"`
	Status             AccountStatus `json:"status"`
}

// NewAccount returns an Active account with a fresh random id.
func NewAccount(email, password, nickname, group string) Account {
	return Account{
		ID:        uuid.New(),
		Email:     email,
		Password:  password,
		Nickname:  nickname,
		Group:     group,
		Tags:      []string{},
		TagColors: []TagWithColor{},
		CreatedAt: time.Now().UTC(),
		Status:    Active(),
	}
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	c := a
	c.Tags = append([]string{}, a.Tags...)
	c.TagColors = append([]TagWithColor{}, a.TagColors...)
	c.TokenExpiresAt = cloneTime(a.TokenExpiresAt)
	c.SubscriptionExpiresAt = cloneTime(a.SubscriptionExpiresAt)
	c.LastLoginAt = cloneTime(a.LastLoginAt)
	c.LastQuotaRefreshAt = cloneTime(a.LastQuotaRefreshAt)
	c.UsedQuota = cloneInt(a.UsedQuota)
	c.TotalQuota = cloneInt(a.TotalQuota)
	return c
}

// RemainingQuota is total minus used, treating absent counters as zero.
func (a Account) RemainingQuota() int64 {
	return deref(a.TotalQuota) - deref(a.UsedQuota)
}

// HasTag reports whether name is in the account's tag list.
func (a Account) HasTag(name string) bool {
	for _, t := range a.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// Validate checks the struct tags of a single account.
func (a Account) Validate() error {
	return validate.Struct(a)
}

// CleanTags trims tag names and drops blanks and repeats, keeping first
// occurrence order. A nil input stays nil.
func CleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SameEmail compares emails the way the store enforces uniqueness.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func deref(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
