package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/royen99/cryptobot-monitor/internal/infrastructure/api"
	"github.com/royen99/cryptobot-monitor/internal/infrastructure/feed"
	"github.com/royen99/cryptobot-monitor/internal/infrastructure/logger"
	"github.com/royen99/cryptobot-monitor/internal/usecase"
	"github.com/royen99/cryptobot-monitor/internal/web"
)

type Config struct {
	Backend struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
		Symbol  string `yaml:"symbol"`
	} `yaml:"backend"`
	Polling struct {
		TickMs    int `yaml:"tick_ms"`
		StatusMs  int `yaml:"status_ms"`
		TradesMs  int `yaml:"trades_ms"`
		BadgesMs  int `yaml:"badges_ms"`
		SummaryMs int `yaml:"summary_ms"`
		GraceMs   int `yaml:"grace_ms"`
	} `yaml:"polling"`
	Feed struct {
		ReconnectMs int `yaml:"reconnect_ms"`
	} `yaml:"feed"`
	Trades struct {
		Limit int `yaml:"limit"`
	} `yaml:"trades"`
	History struct {
		Hours int `yaml:"hours"`
	} `yaml:"history"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// wsURL derives the live-feed endpoint from the REST base when the config
// does not pin one explicitly.
func wsURL(cfg *Config) string {
	if cfg.Backend.WSURL != "" {
		return cfg.Backend.WSURL
	}
	base := cfg.Backend.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + "/ws/live"
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func main() {
	path := "config/config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	backend := api.NewClient(cfg.Backend.BaseURL, log)

	monitor := usecase.NewMonitor(backend, usecase.MonitorConfig{
		Symbol:       cfg.Backend.Symbol,
		TradesLimit:  cfg.Trades.Limit,
		HistoryHours: cfg.History.Hours,
		GracePeriod:  ms(cfg.Polling.GraceMs),
		StatusEvery:  ms(cfg.Polling.StatusMs),
		TradesEvery:  ms(cfg.Polling.TradesMs),
		BadgesEvery:  ms(cfg.Polling.BadgesMs),
		SummaryEvery: ms(cfg.Polling.SummaryMs),
		PollEvery:    ms(cfg.Polling.TickMs),
	}, log)

	live := feed.New(wsURL(cfg), cfg.Backend.Symbol, ms(cfg.Feed.ReconnectMs), monitor.Enqueue, log)
	monitor.SetFeed(live)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go live.Run(ctx)

	go func() {
		if err := monitor.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Monitor stopped", zap.Error(err))
		}
	}()

	srv := web.NewServer(cfg.Server.Port, monitor, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("View server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
