// Package config loads server settings from config.toml and BACKOFFICE_*
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Lock        LockConfig        `mapstructure:"lock"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Inventory   InventoryConfig   `mapstructure:"inventory"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Swagger     SwaggerConfig     `mapstructure:"swagger"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"` // minutes

	// LockTimeout is the longest a write waits on a row lock before it is
	// reported as Busy.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

// DSN renders a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LockConfig picks the per-record lock used around every write.
type LockConfig struct {
	Backend       string        `mapstructure:"backend"` // memory or redis
	TTL           time.Duration `mapstructure:"ttl"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	Issuer     string        `mapstructure:"issuer"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

type InventoryConfig struct {
	// DefaultMarkup prices new stock when no selling price is given: 0.30
	// sells at cost plus 30%.
	DefaultMarkup       decimal.Decimal `mapstructure:"default_markup"`
	ExpiringDaysDefault int             `mapstructure:"expiring_days_default"`
}

type IdempotencyConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SwaggerConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	RequireAuth bool     `mapstructure:"require_auth"`
	AllowedIPs  []string `mapstructure:"allowed_ips"` // empty allows everyone
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	PyroscopeAddress  string        `mapstructure:"pyroscope_address"`
}

// SchedulerConfig drives the nightly housekeeping run.
type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	DailyHour     int           `mapstructure:"daily_hour"` // server local time
	DailyMinute   int           `mapstructure:"daily_minute"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// AuthConfig seeds the first Boss account on an empty database.
type AuthConfig struct {
	BootstrapBossName     string `mapstructure:"bootstrap_boss_name"`
	BootstrapBossEmail    string `mapstructure:"bootstrap_boss_email"`
	BootstrapBossPassword string `mapstructure:"bootstrap_boss_password"`
}

func (a AuthConfig) HasBootstrapBoss() bool {
	return a.BootstrapBossEmail != "" && a.BootstrapBossPassword != ""
}
