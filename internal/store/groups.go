package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func groupIndex(c *models.AppConfig, name string) int {
	for i, g := range c.Groups {
		if g == name {
			return i
		}
	}
	return -1
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s name is required: %w", kind, common.ErrorValidation)
	}
	return name, nil
}

func (s *Store) AddGroup(ctx context.Context, name string) error {
	name, err := cleanName("group", name)
	if err != nil {
		return err
	}
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		if c.HasGroup(name) {
			return fmt.Errorf("group %q: %w", name, common.ErrorAlreadyExists)
		}
		c.Groups = append(c.Groups, name)
		return nil
	})
}

// DeleteGroup removes the group and clears it on member accounts; the
// accounts themselves stay.
func (s *Store) DeleteGroup(ctx context.Context, name string) error {
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		i := groupIndex(c, name)
		if i < 0 {
			return fmt.Errorf("group %q: %w", name, common.ErrorNotFound)
		}
		c.Groups = append(c.Groups[:i], c.Groups[i+1:]...)
		for j := range c.Accounts {
			if c.Accounts[j].Group == name {
				c.Accounts[j].Group = ""
			}
		}
		return nil
	})
}

// RenameGroup renames in place and moves every member account along.
func (s *Store) RenameGroup(ctx context.Context, oldName, newName string) error {
	newName, err := cleanName("group", newName)
	if err != nil {
		return err
	}
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		if c.HasGroup(newName) {
			return fmt.Errorf("group %q: %w", newName, common.ErrorAlreadyExists)
		}
		i := groupIndex(c, oldName)
		if i < 0 {
			return fmt.Errorf("group %q: %w", oldName, common.ErrorNotFound)
		}
		c.Groups[i] = newName
		for j := range c.Accounts {
			if c.Accounts[j].Group == oldName {
				c.Accounts[j].Group = newName
			}
		}
		return nil
	})
}

func (s *Store) GetGroups(_ context.Context) []string {
	var out []string
	s.view(func(c *models.AppConfig) {
		out = append([]string{}, c.Groups...)
	})
	return out
}
