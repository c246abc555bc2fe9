package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AppConfig is the root aggregate persisted in accounts.json.
type AppConfig struct {
	Accounts []Account   `json:"accounts" validate:"dive"`
	Groups   []string    `json:"groups" validate:"dive,required"`
	Tags     []GlobalTag `json:"tags" validate:"dive"`
	Settings Settings    `json:"settings"`

	// Logs is only read from files written before operation logs moved to
	// their own file.
	Logs []OperationLog `json:"logs,omitempty"`
}

// DefaultAppConfig is the state of a fresh install.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Accounts: []Account{},
		Groups:   []string{},
		Tags:     []GlobalTag{},
		Settings: DefaultSettings(),
	}
}

// Normalize replaces nil collections with empty ones so the file layout is
// stable regardless of where the value came from.
func (c *AppConfig) Normalize() {
	if c.Accounts == nil {
		c.Accounts = []Account{}
	}
	if c.Groups == nil {
		c.Groups = []string{}
	}
	if c.Tags == nil {
		c.Tags = []GlobalTag{}
	}
	for i := range c.Accounts {
		if c.Accounts[i].Tags == nil {
			c.Accounts[i].Tags = []string{}
		}
		if c.Accounts[i].TagColors == nil {
			c.Accounts[i].TagColors = []TagWithColor{}
		}
	}
}

// Clone returns a deep copy of c.
func (c AppConfig) Clone() AppConfig {
	out := AppConfig{
		Accounts: make([]Account, len(c.Accounts)),
		Groups:   append([]string{}, c.Groups...),
		Tags:     append([]GlobalTag{}, c.Tags...),
		Settings: c.Settings,
	}
	for i, a := range c.Accounts {
		out.Accounts[i] = a.Clone()
	}
	if c.Logs != nil {
		out.Logs = make([]OperationLog, len(c.Logs))
		for i, l := range c.Logs {
			out.Logs[i] = l.Clone()
		}
	}
	return out
}

// HasGroup reports whether name is a known group.
func (c AppConfig) HasGroup(name string) bool {
	for _, g := range c.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// HasEmail reports whether an account already uses email (case-insensitive).
func (c AppConfig) HasEmail(email string) bool {
	for _, a := range c.Accounts {
		if SameEmail(a.Email, email) {
			return true
		}
	}
	return false
}

// Validate checks field constraints and the aggregate's uniqueness rules:
// account ids, account emails (case-insensitive), group names and tag names.
func (c AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config fields: %w", err)
	}

	var errs []error

	ids := make(map[uuid.UUID]struct{}, len(c.Accounts))
	emails := make(map[string]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID == uuid.Nil {
			errs = append(errs, fmt.Errorf("account %q has no id", a.Email))
		} else if _, dup := ids[a.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate account id %s", a.ID))
		}
		ids[a.ID] = struct{}{}

		key := strings.ToLower(strings.TrimSpace(a.Email))
		if _, dup := emails[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate account email %q", a.Email))
		}
		emails[key] = struct{}{}
	}

	groups := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if _, dup := groups[g]; dup {
			errs = append(errs, fmt.Errorf("duplicate group %q", g))
		}
		groups[g] = struct{}{}
	}

	tags := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		if _, dup := tags[t.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate tag %q", t.Name))
		}
		tags[t.Name] = struct{}{}
	}

	return errors.Join(errs...)
}
