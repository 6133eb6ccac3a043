// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string

	// Shared secret for the ingestion client's X-Api-Key header. Optional:
	// when empty only JWT auth is accepted.
	APIKey string

	// Ingestion policy knobs the upstream sources never agreed on.
	RaceNumberMin    int
	DateFutureWindow int

	// XpressBet gateway. Wager submission is disabled when the URL is empty.
	XBGatewayURL string
	XBAccount    string
	XBPin        string

	// Daily report email.
	SMTPAddr   string
	ReportTo   string
	ReportFrom string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "padraic")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "racedata")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "trackapi.app,www.trackapi.app")
	v.SetDefault("DEBUG", false)
	v.SetDefault("RACE_NUMBER_MIN", 1)
	v.SetDefault("DATE_FUTURE_WINDOW", 10)
	v.SetDefault("SMTP_ADDR", "localhost:25")

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBUser:           v.GetString("DB_USER"),
		DBPass:           v.GetString("DB_PASS"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		APIKey:           v.GetString("API_KEY"),
		RaceNumberMin:    v.GetInt("RACE_NUMBER_MIN"),
		DateFutureWindow: v.GetInt("DATE_FUTURE_WINDOW"),
		XBGatewayURL:     v.GetString("XB_GATEWAY_URL"),
		XBAccount:        v.GetString("XB_ACCOUNT"),
		XBPin:            v.GetString("XB_PIN"),
		SMTPAddr:         v.GetString("SMTP_ADDR"),
		ReportTo:         v.GetString("RP_REPORT_TO"),
		ReportFrom:       v.GetString("RP_REPORT_FROM"),
		Debug:            v.GetBool("DEBUG"),
		Port:             v.GetString("PORT"),
		TLSDomains:       splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
	if c.RaceNumberMin != 1 && c.RaceNumberMin != 3 {
		log.Fatal("config: RACE_NUMBER_MIN must be 1 or 3")
	}
	if c.XBGatewayURL != "" && (c.XBAccount == "" || c.XBPin == "") {
		log.Fatal("config: XB_ACCOUNT and XB_PIN must be set with XB_GATEWAY_URL")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
