package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewAccount(t *testing.T) {
	a := NewAccount("a@example.com", "pw", "nick", "Default")

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, "a@example.com", a.Email)
	assert.Equal(t, "Default", a.Group)
	assert.Equal(t, Active(), a.Status)
	assert.NotNil(t, a.Tags)
	assert.NotNil(t, a.TagColors)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestAccount_CloneIsIndependent(t *testing.T) {
	exp := time.Now()
	a := NewAccount("a@example.com", "pw", "nick", "")
	a.Tags = []string{"x"}
	a.TagColors = []TagWithColor{{Name: "x", Color: "red"}}
	a.TokenExpiresAt = &exp
	a.UsedQuota = ptr[int64](5)

	c := a.Clone()
	c.Tags[0] = "changed"
	c.TagColors[0].Color = "blue"
	*c.TokenExpiresAt = exp.Add(time.Hour)
	*c.UsedQuota = 9

	assert.Equal(t, "x", a.Tags[0])
	assert.Equal(t, "red", a.TagColors[0].Color)
	assert.Equal(t, exp, *a.TokenExpiresAt)
	assert.Equal(t, int64(5), *a.UsedQuota)
}

func TestAccount_RemainingQuota(t *testing.T) {
	a := Account{TotalQuota: ptr[int64](100), UsedQuota: ptr[int64](30)}
	assert.Equal(t, int64(70), a.RemainingQuota())
	assert.Equal(t, int64(0), Account{}.RemainingQuota())
}

func TestSameEmail(t *testing.T) {
	assert.True(t, SameEmail("User@Example.com", " user@example.COM "))
	assert.False(t, SameEmail("a@example.com", "b@example.com"))
}

func TestAccountPatch_ApplyNeverTouchesPassword(t *testing.T) {
	a := NewAccount("a@example.com", "secret", "nick", "g1")
	a.Tags = []string{"old"}

	p := AccountPatch{
		Email:     ptr("b@example.com"),
		Password:  ptr("ignored"),
		Nickname:  ptr("n2"),
		Group:     ptr(""),
		Tags:      []string{"t1", "t2"},
		PlanName:  ptr("pro"),
		Disabled:  ptr(true),
		SortOrder: ptr(4),
		Status:    ptr(Inactive()),
	}
	p.Apply(&a)

	assert.Equal(t, "secret", a.Password)
	assert.Equal(t, "b@example.com", a.Email)
	assert.Equal(t, "n2", a.Nickname)
	assert.Equal(t, "", a.Group)
	assert.Equal(t, []string{"t1", "t2"}, a.Tags)
	assert.Equal(t, "pro", a.PlanName)
	assert.True(t, a.Disabled)
	assert.Equal(t, 4, a.SortOrder)
	assert.Equal(t, Inactive(), a.Status)
}

func TestAccountPatch_NilFieldsUntouched(t *testing.T) {
	a := NewAccount("a@example.com", "secret", "nick", "g1")
	a.Tags = []string{"keep"}
	before := a.Clone()

	AccountPatch{}.Apply(&a)
	assert.Equal(t, before, a)
	assert.True(t, AccountPatch{Password: ptr("x")}.IsEmpty())
	assert.False(t, AccountPatch{Tags: []string{}}.IsEmpty())
}

func TestPlanRank(t *testing.T) {
	require.Greater(t, PlanRank("Enterprise"), PlanRank("teams"))
	require.Greater(t, PlanRank("teams"), PlanRank("pro"))
	require.Greater(t, PlanRank("pro"), PlanRank("trial"))
	require.Greater(t, PlanRank("trial"), PlanRank("FREE"))
	require.Greater(t, PlanRank("free"), PlanRank(""))
	require.Equal(t, 0, PlanRank("mystery"))
}
