package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/config"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/limits"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/logging"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/redis"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create redis client", "error", err)
		os.Exit(1)
	}

	client.AddHook(&redis.MetricsHook{})
	client.AddHook(redis.NewCircuitBreakerHook())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server, sweeper *limits.Sweeper, cancelSubscriber context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelSubscriber()
		sweeper.Stop()

		close(done)
	}()

	return done
}

func main() {
	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	client := setupRedis(cfg)
	defer func() { _ = client.Close() }()

	clock := clockwork.NewRealClock()

	window, err := limits.NewWindow(cfg.PostWindowCron, clock)
	if err != nil {
		slog.Error("Failed to create window schedule", "error", err)
		os.Exit(1)
	}

	ledger := redis.NewLedgerStore(client, domain.LimitPolicy{
		FreePostQuota: cfg.FreePostQuota,
		TokenCost:     cfg.TokenCost,
		MaxVotes:      cfg.MaxVotes,
		VoteCooldown:  cfg.VoteCooldown,
		VoteBan:       cfg.VoteBan,
	})
	notifier := redis.NewNotifier(client, cfg.NotifyChannel)

	engine := limits.NewEngine(ledger, notifier, window, limits.Config{
		FreePostQuota:       cfg.FreePostQuota,
		RewardThreshold:     cfg.RewardThreshold,
		RewardGain:          cfg.RewardGain,
		ApplicableVoteTypes: cfg.ApplicableVoteTypes,
		NotifyOnReward:      cfg.NotifyOnReward,
		MaxVotes:            cfg.MaxVotes,
	})

	sweeper, err := limits.NewSweeper(ledger, cfg.PostWindowCron)
	if err != nil {
		slog.Error("Failed to create sweeper", "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	subscriberCtx, cancelSubscriber := context.WithCancel(context.Background())
	subscriber := redis.NewEventSubscriber(client, cfg.EventChannelPrefix, engine)
	go func() {
		if err := subscriber.Run(subscriberCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Event subscriber stopped", "error", err)
		}
	}()

	srv := server.NewServer(cfg, engine, client)
	done := runGracefulShutdown(srv, sweeper, cancelSubscriber)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
