package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates every subsystem's settings, read once at boot via
// Load and passed down explicitly rather than read ad hoc from the
// environment at point of use.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Auth          AuthConfig
	HTTP          HTTPConfig
	Tenant        TenantConfig
	Security      SecurityConfig
	Observability ObservabilityConfig
}

// AppConfig is general application metadata.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig configures the Postgres connection pool.
type DBConfig struct {
	DatabaseURL string // optional full DSN, e.g. a managed Postgres connection string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns DatabaseURL if set, otherwise the DSN built
// from the discrete fields.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds a Postgres connection string, URL-encoding the password.
func (c DBConfig) DSN() string {
	userInfo := url.UserPassword(c.User, c.Password)
	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RedisConfig configures the cache/rate-limit backend.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// AuthConfig carries every setting the token/password services need:
// RSA key material, issuer, refresh-token pepper, and breach-oracle
// policy.
type AuthConfig struct {
	Issuer                        string
	PrivateKeyPath                string            // PEM, PKCS#1 or PKCS#8
	PublicKeyPaths                map[string]string // kid -> PEM path, the trust store
	ActiveKeyID                   string
	RefreshTokenPepper            string
	BreachOracleURL               string
	BreachOracleTimeoutSeconds    int
	FailClosedOnBreachOracleError bool
}

// HTTPConfig configures the listen address and CORS policy.
type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TenantConfig configures the tenant resolver.
type TenantConfig struct {
	ApexHost string
}

// SecurityConfig configures cross-cutting rate-limit defaults.
type SecurityConfig struct {
	RateLimitPerMinute int
}

// ObservabilityConfig configures tracing export and the outbox worker's
// polling cadence.
type ObservabilityConfig struct {
	OTLPEndpoint       string
	OutboxPollInterval int // seconds
	OutboxBatchSize    int
}

// Load reads configuration from the environment (and an optional
// .env/config.env file), applying defaults for anything that has a safe
// one. Settings with no safe default — JWT signing key, active kid, the
// refresh-token pepper — are validated by validateRequired; a missing
// one makes Load return an error the caller should treat as fatal
// (spec §6 "abort on missing/malformed required vars").
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "taskforge-core-api"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "taskforge"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString(v, "REDIS_URL", "redis://localhost:6379/0"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Issuer:                        getString(v, "JWT_ISSUER", "taskforge"),
			PrivateKeyPath:                getString(v, "JWT_PRIVATE_KEY_PATH", ""),
			PublicKeyPaths:                parseKeyMap(getString(v, "JWT_PUBLIC_KEYS", "")),
			ActiveKeyID:                   getString(v, "JWT_ACTIVE_KID", ""),
			RefreshTokenPepper:            getString(v, "REFRESH_TOKEN_PEPPER", ""),
			BreachOracleURL:               getString(v, "BREACH_ORACLE_URL", "https://api.pwnedpasswords.com"),
			BreachOracleTimeoutSeconds:    getInt(v, "BREACH_ORACLE_TIMEOUT_SECONDS", 2),
			FailClosedOnBreachOracleError: getBool(v, "BREACH_ORACLE_FAIL_CLOSED", false),
		},
		HTTP: HTTPConfig{
			Host:           getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:           getInt(v, "HTTP_PORT", 8080),
			AllowedOrigins: parseCSV(getString(v, "CORS_ALLOWED_ORIGINS", "")),
		},
		Tenant: TenantConfig{
			ApexHost: getString(v, "TASKFORGE_APEX_HOST", "taskforge.local"),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getInt(v, "RATE_LIMIT_PER_MINUTE", 120),
		},
		Observability: ObservabilityConfig{
			OTLPEndpoint:       getString(v, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OutboxPollInterval: getInt(v, "OUTBOX_POLL_INTERVAL_SECONDS", 2),
			OutboxBatchSize:    getInt(v, "OUTBOX_BATCH_SIZE", 50),
		},
	}

	if err := validateRequired(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateRequired enforces the settings that have no safe default:
// booting with an empty signing key or pepper would silently mint
// tokens nothing can verify, or refresh tokens a restart can't rotate
// safely.
func validateRequired(cfg *Config) error {
	var missing []string
	if cfg.Auth.PrivateKeyPath == "" {
		missing = append(missing, "JWT_PRIVATE_KEY_PATH")
	}
	if cfg.Auth.ActiveKeyID == "" {
		missing = append(missing, "JWT_ACTIVE_KID")
	}
	if cfg.Auth.RefreshTokenPepper == "" {
		missing = append(missing, "REFRESH_TOKEN_PEPPER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func parseKeyMap(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
