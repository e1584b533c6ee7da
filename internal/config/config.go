package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Session stores.
const (
	SessionStoreRedis = "redis"
	SessionStoreBolt  = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Session     SessionConfig
	Auth        AuthConfig
	SMTP        SMTPConfig
	Notify      NotifyConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
	SQLitePath      string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SessionConfig struct {
	Store    string
	BoltPath string
	TTL      time.Duration
}

type AuthConfig struct {
	Password  string
	JWTSecret string
	Issuer    string
}

type SMTPConfig struct {
	Host        string
	Port        int
	ImplicitTLS bool
	StartTLS    bool
	Timeout     time.Duration
}

type NotifyConfig struct {
	Enabled       bool
	CheckInterval time.Duration
	ScanInterval  time.Duration
	AnchorHour    int
	Timezone      string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "tasktracker"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "5000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getString("DB_DRIVER", DriverPostgres)),
			URL:             firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("POSTGRES_URL")),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "todos"),
			User:            getString("DB_USER", "todos"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 1),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
			SQLitePath:      getString("SQLITE_PATH", "./data/todos.db"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Store:    strings.ToLower(getString("SESSION_STORE", SessionStoreBolt)),
			BoltPath: getString("BOLTDB_PATH", "./data/sessions.db"),
			TTL:      getDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Auth: AuthConfig{
			Password:  getString("SECRET_PASSWORD", "opensesame"),
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    getString("JWT_ISSUER", "tasktracker"),
		},
		SMTP: SMTPConfig{
			Host:        getString("SMTP_HOST", "smtp.gmail.com"),
			Port:        getInt("SMTP_PORT", 587),
			ImplicitTLS: getBool("SMTP_IMPLICIT_TLS", false),
			StartTLS:    getBool("SMTP_STARTTLS", true),
			Timeout:     getDuration("SMTP_TIMEOUT", 30*time.Second),
		},
		Notify: NotifyConfig{
			Enabled:       getBool("NOTIFY_ENABLED", true),
			CheckInterval: getDuration("NOTIFY_CHECK_INTERVAL", time.Minute),
			ScanInterval:  getDuration("NOTIFY_SCAN_INTERVAL", 30*time.Minute),
			AnchorHour:    getInt("NOTIFY_ANCHOR_HOUR", 7),
			Timezone:      getString("NOTIFY_TIMEZONE", "Local"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects values the rest of the application cannot work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreBolt:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Auth.Password == "" {
		return fmt.Errorf("SECRET_PASSWORD must not be empty")
	}
	if c.Notify.AnchorHour < 0 || c.Notify.AnchorHour > 23 {
		return fmt.Errorf("NOTIFY_ANCHOR_HOUR must be within 0..23, got %d", c.Notify.AnchorHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone that defines "today" for reminders.
func (c *Config) Location() (*time.Location, error) {
	if c.Notify.Timezone == "" || c.Notify.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Notify.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEZONE %q: %w", c.Notify.Timezone, err)
	}
	return loc, nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

// SMTPAddress returns host:port of the mail relay.
func (c *Config) SMTPAddress() string {
	return fmt.Sprintf("%s:%d", c.SMTP.Host, c.SMTP.Port)
}
