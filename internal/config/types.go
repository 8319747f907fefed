package config

import "time"

const (
	TransportSlack  = "slack"
	TransportBridge = "bridge"
)

// Config holds all configuration for the application.
type Config struct {
	Port            string
	DryRun          bool
	LogLevel        string
	RefreshInterval time.Duration
	StaleTicks      int
	Timezone        string
	MessagesDir     string
	DBName          string
	Turso           TursoConfig
	ProjectID       string
	Provider        ProviderConfig
	Transport       TransportConfig
	Slack           SlackConfig
	Bridge          BridgeConfig
}

type ProviderConfig struct {
	Token      string
	BaseURL    string
	Discipline string
	Timeout    time.Duration
}

type TransportConfig struct {
	Kind       string
	Headless   bool
	SessionDir string
}

type SlackConfig struct {
	BotToken string
	AppToken string
}

type BridgeConfig struct {
	BaseURL string
	WSURL   string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
