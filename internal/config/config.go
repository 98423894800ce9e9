package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	RedisURL  string `env:"REDIS_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	FreePostQuota  int64  `env:"FREE_POST_QUOTA" default:"3"`
	PostWindowCron string `env:"POST_WINDOW_CRON" default:"0 0 * * *"`
	TokenCost      int64  `env:"TOKEN_COST" default:"1"`

	RewardThreshold     int64    `env:"REWARD_THRESHOLD" default:"5"`
	RewardGain          int64    `env:"REWARD_GAIN" default:"1"`
	ApplicableVoteTypes []string `env:"APPLICABLE_VOTE_TYPES" default:"like"`
	NotifyOnReward      bool     `env:"NOTIFY_ON_REWARD" default:"true"`

	MaxVotes     int64         `env:"MAX_VOTES" default:"3"`
	VoteCooldown time.Duration `env:"VOTE_COOLDOWN" default:"1h"`
	VoteBan      time.Duration `env:"VOTE_BAN" default:"24h"`

	EventChannelPrefix string `env:"EVENT_CHANNEL_PREFIX" default:"events"`
	NotifyChannel      string `env:"NOTIFY_CHANNEL" default:"notify:user"`

	// EventRateLimit caps inbound facade events per second per client IP.
	EventRateLimit float64 `env:"EVENT_RATE_LIMIT" default:"50"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if cfg.FreePostQuota < 0 {
		return fmt.Errorf("FREE_POST_QUOTA must not be negative")
	}
	if cfg.TokenCost < 1 {
		return fmt.Errorf("TOKEN_COST must be at least 1")
	}
	if cfg.RewardThreshold < 1 {
		return fmt.Errorf("REWARD_THRESHOLD must be at least 1")
	}
	if cfg.RewardGain < 0 {
		return fmt.Errorf("REWARD_GAIN must not be negative")
	}
	if cfg.MaxVotes < 1 {
		return fmt.Errorf("MAX_VOTES must be at least 1")
	}
	if cfg.VoteCooldown <= 0 {
		return fmt.Errorf("VOTE_COOLDOWN must be positive")
	}
	if cfg.VoteBan < cfg.VoteCooldown {
		return fmt.Errorf("VOTE_BAN must be at least VOTE_COOLDOWN")
	}
	if cfg.EventRateLimit <= 0 {
		return fmt.Errorf("EVENT_RATE_LIMIT must be positive")
	}
	if _, err := cron.ParseStandard(cfg.PostWindowCron); err != nil {
		return fmt.Errorf("POST_WINDOW_CRON is not a valid cron expression: %w", err)
	}
	return nil
}
