package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data (encryption key material) should never have defaults inside
// code and must be provided via config/config.json or the environment.
type AppConfig struct {
	AppPort            string
	GinMode            string
	PublicBaseURL      string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Payload encryption
	CryptoAlgorithm      string
	CryptoNonceLength    int
	EncryptionKey        string
	EncryptionPassphrase string
	// Rotating download codes
	TOTPIssuer     string
	TOTPPeriodSec  int
	TOTPDigits     int
	TOTPSkew       int
	TOTPSecretSize int
	// Visual challenges
	CaptchaLength        int
	CaptchaWidth         int
	CaptchaHeight        int
	CaptchaNoiseCount    int
	CaptchaExpiryMinutes int
	CaptchaSweepMinutes  int
	// Uploads
	MaxUploadSizeMB     int
	AllowedArchiveTypes []string
	// Download code-guess throttling
	CodeFailMaxPerHour int
	CodeFailBanMinutes int
	// Database
	DBDriver    string
	SQLitePath  string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Encrypted blob storage
	StorageDriver string
	StorageRoot   string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	// Redis for caching/throttling; empty host keeps the in-memory fallbacks
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	AccessLogPath string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// CaptchaExpiry returns the challenge validity window. The per-request expiry
// check and the background sweep both read this value so they never disagree.
func (c AppConfig) CaptchaExpiry() time.Duration {
	return time.Duration(c.CaptchaExpiryMinutes) * time.Minute
}

// CaptchaSweepInterval returns the interval of the background challenge sweep.
func (c AppConfig) CaptchaSweepInterval() time.Duration {
	return time.Duration(c.CaptchaSweepMinutes) * time.Minute
}

// MaxUploadBytes returns the upload payload ceiling in bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.EncryptionKey == "" && cfg.EncryptionPassphrase == "" {
		log.Fatal("ENCRYPTION_KEY or ENCRYPTION_PASSPHRASE must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	// Helper to read string/int/bool safely
	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	// Try grouped sections first
	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		if v := getString(app, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(app, "PublicBaseURL"); v != "" {
			out.PublicBaseURL = v
		}
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if cr, ok := raw["crypto"].(map[string]any); ok {
		out.CryptoAlgorithm = getString(cr, "Algorithm")
		if v := getInt(cr, "NonceLength"); v != 0 {
			out.CryptoNonceLength = v
		}
		out.EncryptionKey = getString(cr, "EncryptionKey")
		out.EncryptionPassphrase = getString(cr, "EncryptionPassphrase")
	}

	if tp, ok := raw["totp"].(map[string]any); ok {
		if v := getString(tp, "Issuer"); v != "" {
			out.TOTPIssuer = v
		}
		if v := getInt(tp, "PeriodSec"); v != 0 {
			out.TOTPPeriodSec = v
		}
		if v := getInt(tp, "Digits"); v != 0 {
			out.TOTPDigits = v
		}
		if v := getInt(tp, "Skew"); v != 0 {
			out.TOTPSkew = v
		}
		if v := getInt(tp, "SecretSize"); v != 0 {
			out.TOTPSecretSize = v
		}
	}

	if cp, ok := raw["captcha"].(map[string]any); ok {
		if v := getInt(cp, "Length"); v != 0 {
			out.CaptchaLength = v
		}
		if v := getInt(cp, "Width"); v != 0 {
			out.CaptchaWidth = v
		}
		if v := getInt(cp, "Height"); v != 0 {
			out.CaptchaHeight = v
		}
		if v := getInt(cp, "NoiseCount"); v != 0 {
			out.CaptchaNoiseCount = v
		}
		if v := getInt(cp, "ExpiryMinutes"); v != 0 {
			out.CaptchaExpiryMinutes = v
		}
		if v := getInt(cp, "SweepMinutes"); v != 0 {
			out.CaptchaSweepMinutes = v
		}
	}

	if up, ok := raw["upload"].(map[string]any); ok {
		if v := getInt(up, "MaxUploadSizeMB"); v != 0 {
			out.MaxUploadSizeMB = v
		}
		if list := getStringSlice(up, "AllowedArchiveTypes"); len(list) > 0 {
			out.AllowedArchiveTypes = list
		}
	}

	if th, ok := raw["throttle"].(map[string]any); ok {
		if v := getInt(th, "CodeFailMaxPerHour"); v != 0 {
			out.CodeFailMaxPerHour = v
		}
		if v := getInt(th, "CodeFailBanMinutes"); v != 0 {
			out.CodeFailBanMinutes = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "DBDriver")
		out.SQLitePath = getString(dbs, "SQLitePath")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if st, ok := raw["storage"].(map[string]any); ok {
		out.StorageDriver = getString(st, "Driver")
		out.StorageRoot = getString(st, "Root")
		out.S3Bucket = getString(st, "S3Bucket")
		out.S3Region = getString(st, "S3Region")
		out.S3Endpoint = getString(st, "S3Endpoint")
		out.S3AccessKey = getString(st, "S3AccessKey")
		out.S3SecretKey = getString(st, "S3SecretKey")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	// logging (grouped)
	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "AccessPath"); v != "" {
			out.AccessLogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	// Also support reading flat keys directly for backward compatibility
	if v, ok := raw["AppPort"]; ok && out.AppPort == "" {
		out.AppPort, _ = v.(string)
	}
	if v, ok := raw["GinMode"]; ok && out.GinMode == "" {
		if s, ok := v.(string); ok {
			out.GinMode = s
		}
	}
	if v, ok := raw["PublicBaseURL"]; ok && out.PublicBaseURL == "" {
		out.PublicBaseURL, _ = v.(string)
	}
	if v, ok := raw["RateLimitPerMinute"]; ok && out.RateLimitPerMinute == 0 {
		if f, ok := v.(float64); ok {
			out.RateLimitPerMinute = int(f)
		}
	}
	if v, ok := raw["AllowedOrigins"]; ok && len(out.AllowedOrigins) == 0 {
		if arr, ok := v.([]any); ok {
			for _, it := range arr {
				if s, ok := it.(string); ok {
					out.AllowedOrigins = append(out.AllowedOrigins, s)
				}
			}
		}
	}
	if v, ok := raw["CryptoAlgorithm"]; ok && out.CryptoAlgorithm == "" {
		out.CryptoAlgorithm, _ = v.(string)
	}
	if v, ok := raw["CryptoNonceLength"]; ok && out.CryptoNonceLength == 0 {
		if f, ok := v.(float64); ok {
			out.CryptoNonceLength = int(f)
		}
	}
	if v, ok := raw["EncryptionKey"]; ok && out.EncryptionKey == "" {
		out.EncryptionKey, _ = v.(string)
	}
	if v, ok := raw["EncryptionPassphrase"]; ok && out.EncryptionPassphrase == "" {
		out.EncryptionPassphrase, _ = v.(string)
	}
	if v, ok := raw["MaxUploadSizeMB"]; ok && out.MaxUploadSizeMB == 0 {
		if f, ok := v.(float64); ok {
			out.MaxUploadSizeMB = int(f)
		}
	}
	if v, ok := raw["AllowedArchiveTypes"]; ok && len(out.AllowedArchiveTypes) == 0 {
		if arr, ok := v.([]any); ok {
			for _, it := range arr {
				if s, ok := it.(string); ok {
					out.AllowedArchiveTypes = append(out.AllowedArchiveTypes, s)
				}
			}
		}
	}
	if v, ok := raw["DBDriver"]; ok && out.DBDriver == "" {
		out.DBDriver, _ = v.(string)
	}
	if v, ok := raw["SQLitePath"]; ok && out.SQLitePath == "" {
		out.SQLitePath, _ = v.(string)
	}
	if v, ok := raw["DatabaseURI"]; ok && out.DatabaseURI == "" {
		out.DatabaseURI, _ = v.(string)
	}
	if v, ok := raw["DBHost"]; ok && out.DBHost == "" {
		out.DBHost, _ = v.(string)
	}
	if v, ok := raw["DBPort"]; ok && out.DBPort == "" {
		out.DBPort, _ = v.(string)
	}
	if v, ok := raw["DBUser"]; ok && out.DBUser == "" {
		out.DBUser, _ = v.(string)
	}
	if v, ok := raw["DBPassword"]; ok && out.DBPassword == "" {
		out.DBPassword, _ = v.(string)
	}
	if v, ok := raw["DBName"]; ok && out.DBName == "" {
		out.DBName, _ = v.(string)
	}
	if v, ok := raw["StorageDriver"]; ok && out.StorageDriver == "" {
		out.StorageDriver, _ = v.(string)
	}
	if v, ok := raw["StorageRoot"]; ok && out.StorageRoot == "" {
		out.StorageRoot, _ = v.(string)
	}
	if v, ok := raw["RedisHost"]; ok && out.RedisHost == "" {
		out.RedisHost, _ = v.(string)
	}
	if v, ok := raw["RedisPort"]; ok && out.RedisPort == 0 {
		if f, ok := v.(float64); ok {
			out.RedisPort = int(f)
		}
	}
	if v, ok := raw["RedisDB"]; ok && out.RedisDB == 0 {
		if f, ok := v.(float64); ok {
			out.RedisDB = int(f)
		}
	}
	if v, ok := raw["RedisPassword"]; ok && out.RedisPassword == "" {
		out.RedisPassword, _ = v.(string)
	}
	if v, ok := raw["LogLevel"]; ok && out.LogLevel == "" {
		if s, ok := v.(string); ok {
			out.LogLevel = s
		}
	}
	if v, ok := raw["LogPath"]; ok && out.LogPath == "" {
		if s, ok := v.(string); ok {
			out.LogPath = s
		}
	}
	if v, ok := raw["AccessLogPath"]; ok && out.AccessLogPath == "" {
		if s, ok := v.(string); ok {
			out.AccessLogPath = s
		}
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:" + c.AppPort
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.CryptoAlgorithm == "" {
		c.CryptoAlgorithm = "aes-gcm"
	}
	if c.CryptoNonceLength == 0 {
		c.CryptoNonceLength = 12
	}
	if c.TOTPIssuer == "" {
		c.TOTPIssuer = "cipherdrop"
	}
	if c.TOTPPeriodSec == 0 {
		c.TOTPPeriodSec = 30
	}
	if c.TOTPDigits == 0 {
		c.TOTPDigits = 6
	}
	if c.TOTPSkew == 0 {
		c.TOTPSkew = 2
	}
	if c.TOTPSecretSize == 0 {
		c.TOTPSecretSize = 20
	}
	if c.CaptchaLength == 0 {
		c.CaptchaLength = 6
	}
	if c.CaptchaWidth == 0 {
		c.CaptchaWidth = 240
	}
	if c.CaptchaHeight == 0 {
		c.CaptchaHeight = 80
	}
	if c.CaptchaExpiryMinutes == 0 {
		c.CaptchaExpiryMinutes = 10
	}
	if c.CaptchaSweepMinutes == 0 {
		c.CaptchaSweepMinutes = 5
	}
	if c.MaxUploadSizeMB == 0 {
		c.MaxUploadSizeMB = 50
	}
	if len(c.AllowedArchiveTypes) == 0 {
		c.AllowedArchiveTypes = []string{
			"application/zip",
			"application/x-zip-compressed",
			"application/x-tar",
			"application/gzip",
			"application/x-gzip",
			"application/x-7z-compressed",
			"application/x-rar-compressed",
			"application/vnd.rar",
			"application/x-bzip2",
			"application/x-xz",
		}
	}
	if c.CodeFailMaxPerHour == 0 {
		c.CodeFailMaxPerHour = 10
	}
	if c.CodeFailBanMinutes == 0 {
		c.CodeFailBanMinutes = 15
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/cipherdrop.db"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "cipherdrop"
	}
	if c.StorageDriver == "" {
		c.StorageDriver = "fs"
	}
	if c.StorageRoot == "" {
		c.StorageRoot = "data/blobs"
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AccessLogPath == "" {
		c.AccessLogPath = "logs/access.log"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("PUBLIC_BASE_URL", ""); v != "" {
		c.PublicBaseURL = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("CRYPTO_ALGORITHM", ""); v != "" {
		c.CryptoAlgorithm = v
	}
	if v := getEnv("CRYPTO_NONCE_LENGTH", ""); v != "" {
		c.CryptoNonceLength = mustParseInt(v)
	}
	if v := getEnv("ENCRYPTION_KEY", ""); v != "" {
		c.EncryptionKey = v
	}
	if v := getEnv("ENCRYPTION_PASSPHRASE", ""); v != "" {
		c.EncryptionPassphrase = v
	}
	if v := getEnv("TOTP_ISSUER", ""); v != "" {
		c.TOTPIssuer = v
	}
	if v := getEnv("TOTP_PERIOD_SEC", ""); v != "" {
		c.TOTPPeriodSec = mustParseInt(v)
	}
	if v := getEnv("TOTP_DIGITS", ""); v != "" {
		c.TOTPDigits = mustParseInt(v)
	}
	if v := getEnv("TOTP_SKEW", ""); v != "" {
		c.TOTPSkew = mustParseInt(v)
	}
	if v := getEnv("TOTP_SECRET_SIZE", ""); v != "" {
		c.TOTPSecretSize = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_LENGTH", ""); v != "" {
		c.CaptchaLength = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_WIDTH", ""); v != "" {
		c.CaptchaWidth = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_HEIGHT", ""); v != "" {
		c.CaptchaHeight = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_NOISE_COUNT", ""); v != "" {
		c.CaptchaNoiseCount = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_EXPIRY_MINUTES", ""); v != "" {
		c.CaptchaExpiryMinutes = mustParseInt(v)
	}
	if v := getEnv("CAPTCHA_SWEEP_MINUTES", ""); v != "" {
		c.CaptchaSweepMinutes = mustParseInt(v)
	}
	if v := getEnv("MAX_UPLOAD_SIZE_MB", ""); v != "" {
		c.MaxUploadSizeMB = mustParseInt(v)
	}
	if v := getEnv("ALLOWED_ARCHIVE_TYPES", ""); v != "" {
		c.AllowedArchiveTypes = readListEnv("ALLOWED_ARCHIVE_TYPES", c.AllowedArchiveTypes)
	}
	if v := getEnv("CODE_FAIL_MAX_PER_HOUR", ""); v != "" {
		c.CodeFailMaxPerHour = mustParseInt(v)
	}
	if v := getEnv("CODE_FAIL_BAN_MINUTES", ""); v != "" {
		c.CodeFailBanMinutes = mustParseInt(v)
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = v
	}
	if v := getEnv("SQLITE_PATH", ""); v != "" {
		c.SQLitePath = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("STORAGE_DRIVER", ""); v != "" {
		c.StorageDriver = v
	}
	if v := getEnv("STORAGE_ROOT", ""); v != "" {
		c.StorageRoot = v
	}
	if v := getEnv("S3_BUCKET", ""); v != "" {
		c.S3Bucket = v
	}
	if v := getEnv("S3_REGION", ""); v != "" {
		c.S3Region = v
	}
	if v := getEnv("S3_ENDPOINT", ""); v != "" {
		c.S3Endpoint = v
	}
	if v := getEnv("S3_ACCESS_KEY", ""); v != "" {
		c.S3AccessKey = v
	}
	if v := getEnv("S3_SECRET_KEY", ""); v != "" {
		c.S3SecretKey = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	// Logging env overrides
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("ACCESS_LOG_PATH", ""); v != "" {
		c.AccessLogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
