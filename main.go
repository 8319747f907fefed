package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marcos5333/BotHltv/internal/bot"
	"github.com/Marcos5333/BotHltv/internal/config"
	"github.com/Marcos5333/BotHltv/internal/conversation"
	"github.com/Marcos5333/BotHltv/internal/database"
	"github.com/Marcos5333/BotHltv/internal/history"
	server "github.com/Marcos5333/BotHltv/internal/http"
	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	slacknotifier "github.com/Marcos5333/BotHltv/internal/notifier/slack"
	"github.com/Marcos5333/BotHltv/internal/pandascore"
	"github.com/Marcos5333/BotHltv/internal/processor"
	"github.com/Marcos5333/BotHltv/internal/pubsub"
	"github.com/Marcos5333/BotHltv/internal/subscription"
	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/Marcos5333/BotHltv/internal/transport/bridge"
	slacktransport "github.com/Marcos5333/BotHltv/internal/transport/slack"
	"github.com/charmbracelet/log"
)

const bridgeReconnectAttempts = 10

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown LOG_LEVEL, keeping info", "value", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		db.Close()
	}()
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())

	messages, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("Failed to load message catalog: %s", err)
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	journal := history.New(db)
	registry := subscription.New()
	formatter := match.NewFormatter(cfg.Location())

	providerOpts := []pandascore.Option{pandascore.WithTimeout(cfg.Provider.Timeout)}
	if cfg.Provider.BaseURL != "" {
		providerOpts = append(providerOpts, pandascore.WithBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.Discipline != "" {
		providerOpts = append(providerOpts, pandascore.WithDiscipline(cfg.Provider.Discipline))
	}
	provider := pandascore.NewClient(cfg.Provider.Token, metricsSvc, providerOpts...)

	source, sender, err := buildTransport(cfg, metricsSvc)
	if err != nil {
		log.Fatalf("Failed to initialize transport: %s", err)
	}
	if cfg.DryRun {
		log.Warn("DRY_RUN enabled, outbound messages are logged only")
		sender = notifier.DryRun{}
	}

	var publisher pubsub.Publisher = pubsub.Noop{}
	if cfg.ProjectID != "" {
		publisher, err = pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	}
	defer publisher.Close()

	machine := conversation.New(provider, registry, conversation.NewStateStore(), sender, messages, formatter, metricsSvc)
	proc := processor.New(provider, registry, sender, journal, publisher, metricsSvc, processor.Config{
		Interval:   cfg.RefreshInterval,
		StaleTicks: cfg.StaleTicks,
		Formatter:  formatter,
		Messages:   messages,
	})

	go proc.Run(ctx)

	botErrors := make(chan error, 1)
	go func() {
		botErrors <- bot.New(source, machine).Run(ctx)
	}()

	s := server.NewServer(registry, journal, provider, formatter, proc, metricsHandler)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case err := <-botErrors:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Chat transport failed: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	} else {
		log.Info("Server gracefully stopped")
	}

	log.Info("Server process shutting down")
}

// buildTransport returns the inbound source and outbound sender for the configured chat platform.
func buildTransport(cfg config.Config, m metrics.Metrics) (transport.Source, notifier.Notifier, error) {
	switch cfg.Transport.Kind {
	case config.TransportBridge:
		if cfg.Transport.SessionDir != "" {
			if err := os.MkdirAll(cfg.Transport.SessionDir, 0o700); err != nil {
				return nil, nil, err
			}
		}
		session := bridge.SessionOptions{Headless: cfg.Transport.Headless, SessionDir: cfg.Transport.SessionDir}
		return bridge.NewStream(cfg.Bridge.WSURL, session, bridgeReconnectAttempts), bridge.NewClient(cfg.Bridge.BaseURL, m), nil
	default:
		return slacktransport.NewListener(cfg.Slack.BotToken, cfg.Slack.AppToken), slacknotifier.NewNotifier(cfg.Slack.BotToken, m), nil
	}
}
