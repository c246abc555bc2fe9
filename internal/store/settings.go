package store

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func (s *Store) GetSettings(_ context.Context) models.Settings {
	var out models.Settings
	s.view(func(c *models.AppConfig) { out = c.Settings })
	return out
}

// UpdateSettings replaces the settings record wholesale.
func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return common.WrapValidation("settings", err)
	}
	return s.mutateAndPersist(ctx, func(c *models.AppConfig) error {
		c.Settings = settings
		return nil
	})
}
