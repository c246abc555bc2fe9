package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0"

// BackupInfo describes one timestamped snapshot file.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportResult tallies an import.
type ImportResult struct {
	AccountsAdded   int `json:"accounts_added"`
	AccountsSkipped int `json:"accounts_skipped"`
	GroupsAdded     int `json:"groups_added"`
}

// ExportEnvelope is the cross-install interchange format.
type ExportEnvelope struct {
	Version    string    `json:"version"`
	ExportedAt string    `json:"exported_at"`
	Accounts   []Account `json:"accounts" validate:"dive"`
	Groups     []string  `json:"groups" validate:"dive,required"`
	Settings   *Settings `json:"settings,omitempty"`
}

// Validate checks the envelope the same way AppConfig.Validate checks a
// config, so an import never brings in duplicates.
func (e ExportEnvelope) Validate() error {
	c := AppConfig{Accounts: e.Accounts, Groups: e.Groups}
	if e.Settings != nil {
		c.Settings = *e.Settings
	}
	return c.Validate()
}

// TokenRefreshedEvent is emitted after every token triple update.
type TokenRefreshedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"token_expires_at"`
}
