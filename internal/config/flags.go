package config

import (
	"github.com/spf13/pflag"
)

// Flags are the command-line overrides. Register them on the root command's
// persistent flag set, then call Resolve after parsing.
type Flags struct {
	fs *pflag.FlagSet

	configPath string
	dataDir    string
	logLevel   string
	logFormat  string
	backupKeep int
	proxyURL   string
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVarP(&f.configPath, "config", "c", "", "path to JSON config file")
	fs.StringVar(&f.dataDir, "data-dir", "", "directory holding accounts.json, logs.json and backups")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.IntVar(&f.backupKeep, "backup-keep", 0, "number of timestamped backups to keep")
	fs.StringVar(&f.proxyURL, "proxy", "", "proxy URL for the API client (empty string disables)")

	return f
}

// overlay copies every explicitly set flag into cfg.
func (f *Flags) overlay(cfg *Config) {
	if f.fs.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if f.fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if f.fs.Changed("backup-keep") {
		cfg.BackupKeep = f.backupKeep
	}
	if f.fs.Changed("proxy") {
		cfg.Proxy.URL = f.proxyURL
		cfg.Proxy.Enabled = f.proxyURL != ""
	}
}

// Resolve builds a Config from defaults, the JSON file named by --config and
// finally the explicitly set flags, and validates the result.
func (f *Flags) Resolve() (*Config, error) {
	cfg, err := Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.overlay(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load applies defaults and then the JSON file at path (if non-empty).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
