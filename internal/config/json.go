package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// jsonHTTP and friends are DTOs used only for unmarshalling. Pointer fields
// tell "absent" apart from an explicit zero.
type jsonHTTP struct {
	Timeout             *timex.Duration `json:"timeout"`
	ConnectTimeout      *timex.Duration `json:"connect_timeout"`
	ProxyConnectTimeout *timex.Duration `json:"proxy_connect_timeout"`
	MaxIdleConnsPerHost *int            `json:"max_idle_conns_per_host"`
	IdleConnTimeout     *timex.Duration `json:"idle_conn_timeout"`
	KeepAlive           *timex.Duration `json:"keep_alive"`
	MaxRedirects        *int            `json:"max_redirects"`
	FailureThreshold    *int            `json:"failure_threshold"`
}

type jsonProxy struct {
	Enabled *bool   `json:"enabled"`
	URL     *string `json:"url"`
}

type jsonMirror struct {
	Enabled   *bool   `json:"enabled"`
	Bucket    *string `json:"bucket"`
	Region    *string `json:"region"`
	Endpoint  *string `json:"endpoint"`
	AccessKey *string `json:"access_key"`
	SecretKey *string `json:"secret_key"`
	Prefix    *string `json:"prefix"`
}

// JsonConfig is the on-disk shape of the configuration file.
type JsonConfig struct {
	DataDir      *string     `json:"data_dir"`
	LogLevel     *string     `json:"log_level"`
	LogFormat    *string     `json:"log_format"`
	BackupKeep   *int        `json:"backup_keep"`
	LogRetention *int        `json:"log_retention"`
	HTTP         *jsonHTTP   `json:"http"`
	Proxy        *jsonProxy  `json:"proxy"`
	Mirror       *jsonMirror `json:"mirror"`
}

// parseJson overlays cfg with the values present in the JSON file at path.
// An empty path is a no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return common.WrapIO("read config "+path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return common.WrapValidation("decode config "+path, err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setInt(&cfg.BackupKeep, jc.BackupKeep)
	setInt(&cfg.LogRetention, jc.LogRetention)

	if h := jc.HTTP; h != nil {
		setDuration(&cfg.HTTP.Timeout, h.Timeout)
		setDuration(&cfg.HTTP.ConnectTimeout, h.ConnectTimeout)
		setDuration(&cfg.HTTP.ProxyConnectTimeout, h.ProxyConnectTimeout)
		setInt(&cfg.HTTP.MaxIdleConnsPerHost, h.MaxIdleConnsPerHost)
		setDuration(&cfg.HTTP.IdleConnTimeout, h.IdleConnTimeout)
		setDuration(&cfg.HTTP.KeepAlive, h.KeepAlive)
		setInt(&cfg.HTTP.MaxRedirects, h.MaxRedirects)
		setInt(&cfg.HTTP.FailureThreshold, h.FailureThreshold)
	}

	if p := jc.Proxy; p != nil {
		setBool(&cfg.Proxy.Enabled, p.Enabled)
		setString(&cfg.Proxy.URL, p.URL)
	}

	if m := jc.Mirror; m != nil {
		setBool(&cfg.Mirror.Enabled, m.Enabled)
		setString(&cfg.Mirror.Bucket, m.Bucket)
		setString(&cfg.Mirror.Region, m.Region)
		setString(&cfg.Mirror.Endpoint, m.Endpoint)
		setString(&cfg.Mirror.AccessKey, m.AccessKey)
		setString(&cfg.Mirror.SecretKey, m.SecretKey)
		setString(&cfg.Mirror.Prefix, m.Prefix)
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
