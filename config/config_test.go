package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, "aes-gcm", c.CryptoAlgorithm)
	assert.Equal(t, 12, c.CryptoNonceLength)
	assert.Equal(t, 30, c.TOTPPeriodSec)
	assert.Equal(t, 6, c.TOTPDigits)
	assert.Equal(t, 2, c.TOTPSkew)
	assert.Equal(t, 20, c.TOTPSecretSize)
	assert.Equal(t, 6, c.CaptchaLength)
	assert.Equal(t, 10, c.CaptchaExpiryMinutes)
	assert.Equal(t, 50, c.MaxUploadSizeMB)
	assert.Contains(t, c.AllowedArchiveTypes, "application/zip")
	assert.Contains(t, c.AllowedArchiveTypes, "application/gzip")
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "fs", c.StorageDriver)
	assert.Empty(t, c.RedisHost, "redis should stay disabled unless configured")
	assert.Empty(t, c.EncryptionKey, "key material must never default")
	assert.Empty(t, c.EncryptionPassphrase, "key material must never default")
}

func TestApplyDefaultsKeepsExistingValues(t *testing.T) {
	c := AppConfig{AppPort: "9000", CryptoAlgorithm: "xchacha20poly1305", MaxUploadSizeMB: 5}
	applyDefaults(&c)

	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "xchacha20poly1305", c.CryptoAlgorithm)
	assert.Equal(t, 5, c.MaxUploadSizeMB)
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("ENCRYPTION_KEY", "aabbccdd")
	t.Setenv("CAPTCHA_LENGTH", "4")
	t.Setenv("ALLOWED_ARCHIVE_TYPES", "application/zip, application/x-tar")
	t.Setenv("CODE_FAIL_MAX_PER_HOUR", "3")

	c := AppConfig{AppPort: "8080", EncryptionKey: "from-json", CaptchaLength: 6}
	applyDefaults(&c)
	applyEnvOverrides(&c)

	assert.Equal(t, "9999", c.AppPort)
	assert.Equal(t, "aabbccdd", c.EncryptionKey)
	assert.Equal(t, 4, c.CaptchaLength)
	assert.Equal(t, []string{"application/zip", "application/x-tar"}, c.AllowedArchiveTypes)
	assert.Equal(t, 3, c.CodeFailMaxPerHour)
}

func TestLoadJSONConfigGroupedAndFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	payload := `{
		"app": {"AppPort": "8090", "RateLimitPerMinute": 120},
		"crypto": {"Algorithm": "chacha20poly1305", "EncryptionPassphrase": "open sesame"},
		"captcha": {"Length": 5, "ExpiryMinutes": 3},
		"storage": {"Driver": "s3", "S3Bucket": "drops"},
		"DBDriver": "mysql",
		"RedisHost": "10.0.0.5"
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "8090", c.AppPort)
	assert.Equal(t, 120, c.RateLimitPerMinute)
	assert.Equal(t, "chacha20poly1305", c.CryptoAlgorithm)
	assert.Equal(t, "open sesame", c.EncryptionPassphrase)
	assert.Equal(t, 5, c.CaptchaLength)
	assert.Equal(t, 3, c.CaptchaExpiryMinutes)
	assert.Equal(t, "s3", c.StorageDriver)
	assert.Equal(t, "drops", c.S3Bucket)
	assert.Equal(t, "mysql", c.DBDriver, "flat keys still parse")
	assert.Equal(t, "10.0.0.5", c.RedisHost)
}

func TestLoadJSONConfigMissingFileIsFine(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c))
	assert.Equal(t, AppConfig{}, c)
}

func TestLoadJSONConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var c AppConfig
	assert.Error(t, loadJSONConfig(path, &c))
}

func TestDurationHelpers(t *testing.T) {
	c := AppConfig{CaptchaExpiryMinutes: 10, CaptchaSweepMinutes: 5, MaxUploadSizeMB: 2}

	assert.Equal(t, 10*time.Minute, c.CaptchaExpiry())
	assert.Equal(t, 5*time.Minute, c.CaptchaSweepInterval())
	assert.Equal(t, int64(2*1024*1024), c.MaxUploadBytes())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,, "))
	assert.Empty(t, splitAndTrim("  "))
}
