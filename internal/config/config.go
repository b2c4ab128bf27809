// Package config provides application configuration loaded from environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Company  CompanyConfig  `mapstructure:"company"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite";
// Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	Debug    bool   `mapstructure:"debug"`
	Seed     bool   `mapstructure:"seed"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool   `mapstructure:"dev"`
	Migrations    bool   `mapstructure:"migrations"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	Timezone      string `mapstructure:"timezone"`
}

// LoggerConfig selects zap level and encoding ("json" or "console").
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// AuthConfig holds session signing and bootstrap admin credentials.
type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
	SessionTTL    int    `mapstructure:"session_ttl"` // hours
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CompanyConfig is printed in the header of order quotes.
type CompanyConfig struct {
	Name    string `mapstructure:"name"`
	Tagline string `mapstructure:"tagline"`
	Address string `mapstructure:"address"`
	Phone   string `mapstructure:"phone"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":          "PORT",
	"server.read_timeout":  "SERVER_READ_TIMEOUT",
	"server.write_timeout": "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":  "SERVER_IDLE_TIMEOUT",

	"database.driver":   "DB_DRIVER",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",
	"database.path":     "DB_PATH",
	"database.debug":    "DB_DEBUG",
	"database.seed":     "DB_SEED",

	"app.dev":            "DEV",
	"app.migrations":     "MIGRATIONS",
	"app.migrations_dir": "MIGRATIONS_DIR",
	"app.timezone":       "APP_TIMEZONE",

	"logger.level":    "LOG_LEVEL",
	"logger.encoding": "LOG_ENCODING",

	"auth.session_secret": "SESSION_SECRET",
	"auth.session_ttl":    "SESSION_TTL_HOURS",
	"auth.admin_email":    "ADMIN_EMAIL",
	"auth.admin_password": "ADMIN_PASSWORD",

	"metrics.enabled": "METRICS_ENABLED",

	"company.name":    "COMPANY_NAME",
	"company.tagline": "COMPANY_TAGLINE",
	"company.address": "COMPANY_ADDRESS",
	"company.phone":   "COMPANY_PHONE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "printshop")
	v.SetDefault("database.password", "printshop123")
	v.SetDefault("database.name", "printshop")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "printshop.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.seed", false)

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)
	v.SetDefault("app.migrations_dir", "migrations")
	v.SetDefault("app.timezone", "UTC")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("auth.session_secret", "devsessionsecret")
	v.SetDefault("auth.session_ttl", 24*14)
	v.SetDefault("auth.admin_email", "admin@printshop.local")
	v.SetDefault("auth.admin_password", "")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("company.name", "COPIADORA PERNAMBUCO")
	v.SetDefault("company.tagline", "Copiadora & Gráfica Rápida")
	v.SetDefault("company.address", "")
	v.SetDefault("company.phone", "")
}

// Load reads configuration from defaults, an optional config file (any format
// viper understands) and environment variables, in increasing precedence.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	return &c, nil
}
