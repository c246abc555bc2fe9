package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// HTTP holds the construction policy of the supervised HTTP clients.
type HTTP struct {
	Timeout             time.Duration
	ConnectTimeout      time.Duration
	ProxyConnectTimeout time.Duration
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	KeepAlive           time.Duration
	MaxRedirects        int
	FailureThreshold    int
}

// Proxy is the initial proxy setting of the API client.
type Proxy struct {
	Enabled bool
	URL     string
}

// Mirror configures the optional S3 copy of timestamped backups.
type Mirror struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Config holds runtime settings for AccountKeeper.
type Config struct {
	DataDir      string
	LogLevel     string
	LogFormat    string
	BackupKeep   int
	LogRetention int

	HTTP   HTTP
	Proxy  Proxy
	Mirror Mirror
}

// DefaultDataDir is <user config dir>/accountkeeper, or ./accountkeeper when
// the platform reports no config dir.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "accountkeeper"
	}
	return filepath.Join(base, "accountkeeper")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = DefaultDataDir()
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.BackupKeep = common.DefaultBackupKeep
	c.LogRetention = common.MaxLogEntries

	c.HTTP = HTTP{
		Timeout:             30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		ProxyConnectTimeout: 15 * time.Second,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		KeepAlive:           15 * time.Second,
		MaxRedirects:        5,
		FailureThreshold:    3,
	}
	c.Proxy = Proxy{}
	c.Mirror = Mirror{Prefix: "accountkeeper/"}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.BackupKeep <= 0 {
		errs = append(errs, fmt.Errorf("backup_keep must be positive, got %d", c.BackupKeep))
	}
	if c.LogRetention <= 0 {
		errs = append(errs, fmt.Errorf("log_retention must be positive, got %d", c.LogRetention))
	}
	if c.HTTP.FailureThreshold <= 0 {
		errs = append(errs, fmt.Errorf("http.failure_threshold must be positive, got %d", c.HTTP.FailureThreshold))
	}
	if c.HTTP.Timeout <= 0 || c.HTTP.ConnectTimeout <= 0 || c.HTTP.ProxyConnectTimeout <= 0 {
		errs = append(errs, errors.New("http timeouts must be positive"))
	}
	if c.HTTP.MaxRedirects < 1 {
		errs = append(errs, fmt.Errorf("http.max_redirects must be at least 1, got %d", c.HTTP.MaxRedirects))
	}
	if c.Mirror.Enabled && c.Mirror.Bucket == "" {
		errs = append(errs, errors.New("mirror.bucket is required when the mirror is enabled"))
	}

	if len(errs) == 0 {
		return nil
	}
	return common.WrapValidation("config", errors.Join(errs...))
}
