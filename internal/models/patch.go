package models

import "time"

// AccountPatch is a partial account update. A nil field is left untouched.
//
// Group set to "" clears the group reference. Tags and TagColors replace the
// whole list when non-nil. Password is carried for callers that route it to
// the dedicated password path; Apply never copies it.
type AccountPatch struct {
	Email                 *string
	Password              *string
	Nickname              *string
	Group                 *string
	Tags                  []string
	TagColors             []TagWithColor
	PlanName              *string
	UsedQuota             *int64
	TotalQuota            *int64
	SubscriptionExpiresAt *time.Time
	LastQuotaRefreshAt    *time.Time
	Disabled              *bool
	SortOrder             *int
	Status                *AccountStatus
}

// IsEmpty reports whether the patch changes nothing besides the password.
func (p AccountPatch) IsEmpty() bool {
	return p.Email == nil && p.Nickname == nil && p.Group == nil &&
		p.Tags == nil && p.TagColors == nil && p.PlanName == nil &&
		p.UsedQuota == nil && p.TotalQuota == nil &&
		p.SubscriptionExpiresAt == nil && p.LastQuotaRefreshAt == nil &&
		p.Disabled == nil && p.SortOrder == nil && p.Status == nil
}

// Apply copies the set fields onto a. The password is never touched.
func (p AccountPatch) Apply(a *Account) {
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Nickname != nil {
		a.Nickname = *p.Nickname
	}
	if p.Group != nil {
		a.Group = *p.Group
	}
	if p.Tags != nil {
		a.Tags = append([]string{}, p.Tags...)
	}
	if p.TagColors != nil {
		a.TagColors = append([]TagWithColor{}, p.TagColors...)
	}
	if p.PlanName != nil {
		a.PlanName = *p.PlanName
	}
	if p.UsedQuota != nil {
		a.UsedQuota = cloneInt(p.UsedQuota)
	}
	if p.TotalQuota != nil {
		a.TotalQuota = cloneInt(p.TotalQuota)
	}
	if p.SubscriptionExpiresAt != nil {
		a.SubscriptionExpiresAt = cloneTime(p.SubscriptionExpiresAt)
	}
	if p.LastQuotaRefreshAt != nil {
		a.LastQuotaRefreshAt = cloneTime(p.LastQuotaRefreshAt)
	}
	if p.Disabled != nil {
		a.Disabled = *p.Disabled
	}
	if p.SortOrder != nil {
		a.SortOrder = *p.SortOrder
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}
