package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "BACKOFFICE"

// defaults lists every key Load understands. A key must be present here,
// even with a zero value, for its environment variable to be picked up.
var defaults = map[string]any{
	"app.name": "backoffice",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "backoffice",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.lock_timeout":       "3s",
	"database.auto_migrate":       false,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"lock.backend":        "memory",
	"lock.ttl":            "30s",
	"lock.wait_timeout":   "5s",
	"lock.retry_interval": "50ms",

	"jwt.secret":     "",
	"jwt.expiration": "12h",
	"jwt.issuer":     "backoffice",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        "15s",
	"http.write_timeout":       "15s",
	"http.idle_timeout":        "60s",
	"http.request_timeout":     "10s",
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       2 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   "1m",
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":     []string{},

	"inventory.default_markup":        "0.30",
	"inventory.expiring_days_default": 30,

	"idempotency.backend": "memory",
	"idempotency.ttl":     "24h",

	"swagger.enabled":      false,
	"swagger.require_auth": false,
	"swagger.allowed_ips":  []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "backoffice",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        "60s",
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": "200ms",
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_address":       "http://localhost:4040",

	"auth.bootstrap_boss_name":     "Boss",
	"auth.bootstrap_boss_email":    "",
	"auth.bootstrap_boss_password": "",

	"scheduler.enabled":        false,
	"scheduler.workers":        2,
	"scheduler.daily_hour":     2,
	"scheduler.daily_minute":   0,
	"scheduler.check_interval": "1m",
	"scheduler.job_timeout":    "10m",
	"scheduler.retry_attempts": 3,
	"scheduler.retry_delay":    "5m",
}

const devJWTSecret = "development-only-secret-change-me-please"

// Load reads config.toml from the working directory or /app, then lets
// BACKOFFICE_<SECTION>_<KEY> environment variables override it. A missing
// file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToDecimal,
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if !cfg.IsProduction() && cfg.JWT.Secret == "" {
		cfg.JWT.Secret = devJWTSecret
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func stringToDecimal(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return decimal.NewFromString(strings.TrimSpace(data.(string)))
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(reflect.ValueOf(data).Float()), nil
	case reflect.Int, reflect.Int64:
		return decimal.NewFromInt(reflect.ValueOf(data).Int()), nil
	}
	return data, nil
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	backends := []string{"memory", "redis"}
	if !slices.Contains(backends, c.Lock.Backend) {
		return fmt.Errorf("lock.backend must be memory or redis, got %q", c.Lock.Backend)
	}
	if !slices.Contains(backends, c.Idempotency.Backend) {
		return fmt.Errorf("idempotency.backend must be memory or redis, got %q", c.Idempotency.Backend)
	}
	if c.Lock.Backend == "redis" && c.Lock.TTL <= c.Lock.WaitTimeout {
		return fmt.Errorf("lock.ttl (%s) must exceed lock.wait_timeout (%s)", c.Lock.TTL, c.Lock.WaitTimeout)
	}

	if c.Inventory.DefaultMarkup.IsNegative() {
		return errors.New("inventory.default_markup cannot be negative")
	}
	if c.Inventory.ExpiringDaysDefault < 0 {
		return errors.New("inventory.expiring_days_default cannot be negative")
	}
	if s := c.Scheduler; s.DailyHour < 0 || s.DailyHour > 23 || s.DailyMinute < 0 || s.DailyMinute > 59 {
		return fmt.Errorf("scheduler.daily_hour/daily_minute out of range: %02d:%02d", s.DailyHour, s.DailyMinute)
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", r)
	}

	if c.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	switch {
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	case c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0:
		return errors.New("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
	case c.Telemetry.DBLogFullSQL:
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	return nil
}
