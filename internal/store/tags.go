package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func tagIndex(c *models.AppConfig, name string) int {
	for i, t := range c.Tags {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) AddTag(ctx context.Context, tag models.GlobalTag) error {
	name, err := cleanName("tag", tag.Name)
	if err != nil {
		return err
	}
	tag.Name = name
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		if tagIndex(c, name) >= 0 {
			return fmt.Errorf("tag %q: %w", name, common.ErrorAlreadyExists)
		}
		c.Tags = append(c.Tags, tag)
		return nil
	})
}

// UpdateTag replaces the tag named oldName with tag. A rename is carried into
// every account's tag list and color overrides; a color-only change leaves
// per-account overrides alone.
func (s *Store) UpdateTag(ctx context.Context, oldName string, tag models.GlobalTag) error {
	name, err := cleanName("tag", tag.Name)
	if err != nil {
		return err
	}
	tag.Name = name
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		renamed := oldName != name
		if renamed && tagIndex(c, name) >= 0 {
			return fmt.Errorf("tag %q: %w", name, common.ErrorAlreadyExists)
		}
		i := tagIndex(c, oldName)
		if i < 0 {
			return fmt.Errorf("tag %q: %w", oldName, common.ErrorNotFound)
		}
		c.Tags[i] = tag
		if renamed {
			for j := range c.Accounts {
				renameAccountTag(&c.Accounts[j], oldName, tag)
			}
		}
		return nil
	})
}

func renameAccountTag(a *models.Account, oldName string, tag models.GlobalTag) {
	if a.HasTag(oldName) {
		if a.HasTag(tag.Name) {
			a.Tags = removeString(a.Tags, oldName)
		} else {
			for k := range a.Tags {
				if a.Tags[k] == oldName {
					a.Tags[k] = tag.Name
				}
			}
		}
	}

	out := a.TagColors[:0]
	seen := false
	for _, tc := range a.TagColors {
		if tc.Name == tag.Name {
			seen = true
		}
	}
	for _, tc := range a.TagColors {
		if tc.Name == oldName {
			if seen {
				continue
			}
			tc = models.TagWithColor{Name: tag.Name, Color: tag.Color}
		}
		out = append(out, tc)
	}
	a.TagColors = out
}

// DeleteTag removes the tag globally and from every account.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		i := tagIndex(c, name)
		if i < 0 {
			return fmt.Errorf("tag %q: %w", name, common.ErrorNotFound)
		}
		c.Tags = append(c.Tags[:i], c.Tags[i+1:]...)
		for j := range c.Accounts {
			removeAccountTag(&c.Accounts[j], name)
		}
		return nil
	})
}

func removeAccountTag(a *models.Account, name string) {
	a.Tags = removeString(a.Tags, name)
	out := a.TagColors[:0]
	for _, tc := range a.TagColors {
		if tc.Name != name {
			out = append(out, tc)
		}
	}
	a.TagColors = out
}

func removeString(in []string, v string) []string {
	out := in[:0]
	for _, s := range in {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func (s *Store) GetTags(_ context.Context) []models.GlobalTag {
	var out []models.GlobalTag
	s.view(func(c *models.AppConfig) {
		out = append([]models.GlobalTag{}, c.Tags...)
	})
	return out
}

// BatchUpdateAccountTags adds and removes tags on each account in ids.
// Unknown or malformed ids count as failures; the rest of the batch still
// applies. Added tags pick up the global tag's default color.
func (s *Store) BatchUpdateAccountTags(ctx context.Context, ids []string, add, remove []string) (success, failed int, err error) {
	add = models.CleanTags(add)
	err = s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		for _, raw := range ids {
			id, perr := uuid.Parse(raw)
			if perr != nil {
				failed++
				continue
			}
			i := findAccount(c, id)
			if i < 0 {
				failed++
				continue
			}
			a := &c.Accounts[i]
			for _, name := range add {
				addAccountTag(c, a, name)
			}
			for _, name := range remove {
				removeAccountTag(a, name)
			}
			success++
		}
		return nil
	})
	return success, failed, err
}

// addAccountTag attaches name to a unless present. A globally known tag
// brings its default color along.
func addAccountTag(c *models.AppConfig, a *models.Account, name string) {
	if a.HasTag(name) {
		return
	}
	a.Tags = append(a.Tags, name)
	if ti := tagIndex(c, name); ti >= 0 && !hasColor(a, name) {
		a.TagColors = append(a.TagColors, models.TagWithColor{Name: name, Color: c.Tags[ti].Color})
	}
}

func hasColor(a *models.Account, name string) bool {
	for _, tc := range a.TagColors {
		if tc.Name == name {
			return true
		}
	}
	return false
}
