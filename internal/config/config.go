package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SessionCookie = "cookie"
	SessionDB     = "db"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv   string
	LogLevel string

	ListenAddr string

	APIBaseURL string
	APITimeout time.Duration

	SessionBackend string
	SessionSecret  []byte
	CookieSecure   bool

	DBDriver    string
	DatabaseURL string

	KafkaBrokers []string

	HTMXSrc string
}

func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LISTEN_ADDR", ":8090")
	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("SESSION_BACKEND", SessionCookie)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("HTMX_SRC", "https://unpkg.com/htmx.org@1.9.12")
}

// Load reads envFile (if present) into the process environment and then
// builds the config from environment variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Notice: %s file not found: %v. Using system environment variables", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		APIBaseURL:     strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APITimeout:     v.GetDuration("API_TIMEOUT"),
		SessionBackend: strings.ToLower(v.GetString("SESSION_BACKEND")),
		SessionSecret:  []byte(v.GetString("SESSION_SECRET")),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		KafkaBrokers:   CSV(v.GetString("KAFKA_BROKERS")),
		HTMXSrc:        v.GetString("HTMX_SRC"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("missing required env API_BASE_URL")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	switch c.SessionBackend {
	case SessionCookie:
		if len(c.SessionSecret) == 0 {
			return errors.New("missing required env SESSION_SECRET")
		}
	case SessionDB:
		if c.DatabaseURL == "" {
			return errors.New("missing required env DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
