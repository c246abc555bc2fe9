package models

// Settings is the singleton preferences record of the store. Its fields are
// consumed by the card-binding collaborator; the store only persists them.
type Settings struct {
	CustomBIN          string `json:"custom_bin" validate:"max=32"`
	BINRange           string `json:"bin_range,omitempty" validate:"max=64"`
	UseBINPool         bool   `json:"use_bin_pool"`
	TestModeEnabled    bool   `json:"test_mode_enabled"`
	LastTestBIN        string `json:"last_test_bin,omitempty" validate:"max=32"`
	CardBindRetryTimes int    `json:"card_bind_retry_times" validate:"gte=0,lte=100"`
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{CardBindRetryTimes: 5}
}

// Validate checks the field bounds.
func (s Settings) Validate() error {
	return validate.Struct(s)
}
