package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OverlaysOnlyPresentKeys(t *testing.T) {
	path := writeTempConfig(t, `{
		"data_dir": "/tmp/keeper",
		"log_level": "debug",
		"http": {"timeout": "45s", "failure_threshold": 5, "keep_alive": 1000000000},
		"proxy": {"enabled": true, "url": "http://127.0.0.1:7890"},
		"mirror": {"enabled": true, "bucket": "b", "region": "eu-central-1"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/keeper", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "absent keys keep defaults")
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, time.Second, cfg.HTTP.KeepAlive)
	assert.Equal(t, 5, cfg.HTTP.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ConnectTimeout)
	assert.True(t, cfg.Proxy.Enabled)
	assert.Equal(t, "http://127.0.0.1:7890", cfg.Proxy.URL)
	assert.Equal(t, "b", cfg.Mirror.Bucket)
	assert.Equal(t, "accountkeeper/", cfg.Mirror.Prefix)
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorIs(t, err, common.ErrorIO)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, `{ this is not valid json`))
		require.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, `{"http": {"timeout": "whenever"}}`))
		require.ErrorIs(t, err, common.ErrorValidation)
	})
}
