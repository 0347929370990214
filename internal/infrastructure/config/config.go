package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig identifies the service instance.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	ConnMaxIdleTime int // minutes
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// HTTPConfig holds HTTP server and middleware settings.
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry settings for HTTP and database tracing.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0 to 1.0
	ServiceName       string
	Insecure          bool // plaintext connection, development only
	DBTraceEnabled    bool // otelgorm query spans
	DBLogFullSQL      bool // record full SQL in spans, never in production
	DBSlowQueryThresh time.Duration
}

// Load reads configuration in priority order: HMS_-prefixed environment
// variables, then config.toml, then built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("HMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:       readApp(v),
		Database:  readDatabase(v),
		Redis:     readRedis(v),
		JWT:       readJWT(v),
		Log:       readLog(v),
		HTTP:      readHTTP(v),
		Telemetry: readTelemetry(v),
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func readDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func readRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func readJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                v.GetString("jwt.secret"),
		AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		Issuer:                v.GetString("jwt.issuer"),
	}
}

func readLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func readHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       v.GetDuration("http.read_timeout"),
		WriteTimeout:      v.GetDuration("http.write_timeout"),
		IdleTimeout:       v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
		MaxBodySize:       v.GetInt64("http.max_body_size"),
		RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests: v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
	}
}

func readTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:       v.GetString("telemetry.service_name"),
		Insecure:          v.GetBool("telemetry.insecure"),
		DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
	}
}

func (c *Config) applyDefaults() {
	setString(&c.App.Name, "hms-backend")
	setString(&c.App.Env, "development")
	setString(&c.App.Port, "8080")

	setString(&c.Database.Host, "localhost")
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.User, "postgres")
	setString(&c.Database.DBName, "hms")
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 60)
	setInt(&c.Database.ConnMaxIdleTime, 30)

	setString(&c.Redis.Host, "localhost")
	setInt(&c.Redis.Port, 6379)

	setDuration(&c.JWT.AccessTokenExpiration, 15*time.Minute)
	setString(&c.JWT.Issuer, "hms-backend")

	setString(&c.Log.Level, "info")
	setString(&c.Log.Format, "console")
	setString(&c.Log.Output, "stdout")

	setDuration(&c.HTTP.ReadTimeout, 15*time.Second)
	setDuration(&c.HTTP.WriteTimeout, 15*time.Second)
	setDuration(&c.HTTP.IdleTimeout, 60*time.Second)
	setInt(&c.HTTP.MaxHeaderBytes, 1<<20)
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 10 << 20
	}
	setInt(&c.HTTP.RateLimitRequests, 100)
	setDuration(&c.HTTP.RateLimitWindow, time.Minute)
	// CORS origins deliberately have no fallback. An empty list blocks
	// cross-origin requests until origins are configured explicitly.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Idempotency-Key"}
	}

	setString(&c.Telemetry.CollectorEndpoint, "localhost:4317")
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = 1.0
	}
	setString(&c.Telemetry.ServiceName, "hms-backend")
	// Insecure, DBTraceEnabled, and DBLogFullSQL stay false unless enabled
	// explicitly.
	setDuration(&c.Telemetry.DBSlowQueryThresh, 200*time.Millisecond)
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func setDuration(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if err := c.validateProduction(); err != nil {
			return err
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
	}
	return nil
}

// DSN builds the PostgreSQL connection URL, escaping credentials.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
