// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys use a double underscore: LAKEHOUSE_AUTH__JWT_SECRET -> auth.jwt_secret.
const EnvPrefix = "LAKEHOUSE_"

const insecureEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000000"

// AuthConfig holds authentication and identity provider configuration.
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`      // HS256 shared secret for issued tokens
	TokenTTL       time.Duration `koanf:"token_ttl"`       // lifetime of tokens issued by /auth/login
	IssuerURL      string        `koanf:"issuer_url"`      // OIDC issuer URL
	JWKSURL        string        `koanf:"jwks_url"`        // JWKS URL when discovery is unavailable
	Audience       string        `koanf:"audience"`        // required audience for OIDC tokens
	AllowedIssuers []string      `koanf:"allowed_issuers"` // defaults to [IssuerURL]
	TenantClaim    string        `koanf:"tenant_claim"`    // claim carrying the tenant id
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// RateLimitConfig holds the per-client token bucket settings.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// DataSourceConfig controls connections to external databases.
type DataSourceConfig struct {
	MaxOpenConns   int           `koanf:"max_open_conns"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	// DuckDBDir holds per-tenant DuckDB files. Empty disables DuckDB data sources.
	DuckDBDir string `koanf:"duckdb_dir"`
}

// StorageConfig controls downloads from object storage.
type StorageConfig struct {
	HTTPTimeout time.Duration `koanf:"http_timeout"`
}

// Config holds the configuration of the server.
type Config struct {
	MetaDBPath         string           `koanf:"meta_db_path"`
	ListenAddr         string           `koanf:"listen_addr"`
	TLSCertFile        string           `koanf:"tls_cert_file"`
	TLSKeyFile         string           `koanf:"tls_key_file"`
	AllowInsecureHTTP  bool             `koanf:"allow_insecure_http"`
	EncryptionKey      string           `koanf:"encryption_key"` // 64-char hex string (32-byte AES key)
	LogLevel           string           `koanf:"log_level"`
	Env                string           `koanf:"env"` // "development" (default) or "production"
	CORSAllowedOrigins []string         `koanf:"cors_allowed_origins"`
	MaxUploadBytes     int64            `koanf:"max_upload_bytes"`
	RateLimit          RateLimitConfig  `koanf:"rate_limit"`
	Auth               AuthConfig       `koanf:"auth"`
	DataSource         DataSourceConfig `koanf:"datasource"`
	Storage            StorageConfig    `koanf:"storage"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `koanf:"-"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"meta_db_path":               "lakehouse_meta.sqlite",
		"listen_addr":                ":8080",
		"log_level":                  "info",
		"env":                        "development",
		"cors_allowed_origins":       []string{"*"},
		"max_upload_bytes":           int64(50 << 20),
		"rate_limit.rps":             100.0,
		"rate_limit.burst":           200,
		"auth.token_ttl":             "24h",
		"auth.tenant_claim":          "tenant_id",
		"datasource.max_open_conns":  5,
		"datasource.connect_timeout": "10s",
		"storage.http_timeout":       "60s",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// LAKEHOUSE_* environment variables and explicitly set flags, in increasing
// order of precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps LAKEHOUSE_RATE_LIMIT__RPS to rate_limit.rps.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) finalize() error {
	c.CORSAllowedOrigins = compactNonEmpty(c.CORSAllowedOrigins)
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	c.Auth.AllowedIssuers = compactNonEmpty(c.Auth.AllowedIssuers)

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("both tls_cert_file and tls_key_file must be set together")
	}
	if c.Auth.JWTSecret == "" && !c.Auth.OIDCEnabled() {
		c.Auth.JWTSecret = "dev-secret-change-in-production"
		c.Warnings = append(c.Warnings, "auth.jwt_secret not set, using insecure development secret")
	}
	if c.EncryptionKey == "" {
		c.EncryptionKey = insecureEncryptionKey
		c.Warnings = append(c.Warnings, "encryption_key not set, using insecure default. Set LAKEHOUSE_ENCRYPTION_KEY in production!")
	}
	if c.DataSource.MaxOpenConns <= 0 {
		c.DataSource.MaxOpenConns = 5
	}

	// Production mode: insecure defaults are fatal errors.
	if c.IsProduction() {
		if c.EncryptionKey == insecureEncryptionKey {
			return fmt.Errorf("encryption_key must be set in production")
		}
		if c.Auth.JWTSecret == "dev-secret-change-in-production" {
			return fmt.Errorf("auth.jwt_secret must be set in production")
		}
		if len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("CORS wildcard (*) is not allowed in production")
		}
		if c.TLSCertFile == "" && !c.AllowInsecureHTTP {
			return fmt.Errorf("tls_cert_file/tls_key_file must be set in production unless allow_insecure_http=true")
		}
	}
	return nil
}

// compactNonEmpty flattens comma-separated entries (as delivered by env
// vars) and drops blanks.
func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
