package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Invalid configuration is fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds a Config from a lookup function such as os.LookupEnv.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	var errs []error

	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
	require := func(key string) string {
		v := get(key, "")
		if v == "" {
			errs = append(errs, fmt.Errorf("required environment variable %s is not set", key))
		}
		return v
	}
	getInt := func(key string, def int) int {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw))
			return def
		}
		return n
	}
	getBool := func(key string, def bool) bool {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a boolean, got %q", key, raw))
			return def
		}
		return b
	}

	cfg := Config{
		Port:            get("PORT", "8080"),
		DryRun:          getBool("DRY_RUN", false),
		LogLevel:        get("LOG_LEVEL", "info"),
		RefreshInterval: time.Duration(getInt("AUTO_REFRESH_INTERVAL", 60)) * time.Second,
		StaleTicks:      getInt("STALE_TICKS", 30),
		Timezone:        get("TIMEZONE", "America/Sao_Paulo"),
		MessagesDir:     get("MESSAGES_DIR", ""),
		DBName:          get("DB_NAME", "bothltv.db"),
		Turso: TursoConfig{
			PrimaryURL: get("TURSO_PRIMARY_URL", ""),
			AuthToken:  get("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: get("GCP_PROJECT", ""),
		Provider: ProviderConfig{
			Token:      get("PANDASCORE_KEY", ""),
			BaseURL:    get("PANDASCORE_BASE_URL", "https://api.pandascore.co"),
			Discipline: get("TARGET_GAME", "counter"),
			Timeout:    time.Duration(getInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Transport: TransportConfig{
			Kind:       strings.ToLower(get("TRANSPORT", TransportSlack)),
			Headless:   getBool("HEADLESS", false),
			SessionDir: get("SESSION_DIR", "./session"),
		},
	}

	if cfg.RefreshInterval <= 0 {
		errs = append(errs, errors.New("AUTO_REFRESH_INTERVAL must be positive"))
	}
	if cfg.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT_SECONDS must be positive"))
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("unknown TIMEZONE %q: %w", cfg.Timezone, err))
	}

	switch cfg.Transport.Kind {
	case TransportSlack:
		cfg.Slack = SlackConfig{
			BotToken: require("SLACK_BOT_TOKEN"),
			AppToken: require("SLACK_APP_TOKEN"),
		}
	case TransportBridge:
		cfg.Bridge = BridgeConfig{
			BaseURL: require("BRIDGE_BASE_URL"),
			WSURL:   require("BRIDGE_WS_URL"),
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSPORT %q", cfg.Transport.Kind))
	}

	return cfg, errors.Join(errs...)
}

// Location returns the display time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
