package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	t.Setenv("AUTHKEEPER_SECRET_KEY", "from-env")
	t.Setenv("AUTHKEEPER_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("AUTHKEEPER_GITHUB_ENABLED", "true")
	t.Setenv("AUTHKEEPER_SMTP_SSL", "true")
	t.Setenv("AUTHKEEPER_OAUTH_CALLER_SECRET", "callback-secret")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.True(t, cfg.GithubEnabled)
	assert.True(t, cfg.SMTPSSL)
	assert.Equal(t, "callback-secret", cfg.OAuthCallerSecret)
	// untouched
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func TestParseEnv_ReadsDotenvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path,
		[]byte("AUTHKEEPER_S3_BUCKET=dotenv-bucket\nAUTHKEEPER_LOG_LEVEL=debug\n"), 0o600))

	orig := dotenvFiles
	dotenvFiles = []string{path}
	t.Cleanup(func() {
		dotenvFiles = orig
		_ = os.Unsetenv("AUTHKEEPER_S3_BUCKET")
	})

	t.Setenv("AUTHKEEPER_LOG_LEVEL", "error")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv-bucket", cfg.S3Bucket)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestParseEnv_InvalidValuePanics(t *testing.T) {
	t.Setenv("AUTHKEEPER_SMTP_PORT", "not-a-number")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
