package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading, matching pkg/config/loader.go's
// style.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidYAML    = errors.New("invalid yaml")
)

// yamlQueueConfig, yamlStageTimeoutConfig, yamlRetryConfig, yamlRateWindow
// and yamlRetentionConfig mirror their canonical counterparts but read
// duration fields as Go duration strings ("1s", "500ms") rather than plain
// integers — gopkg.in/yaml.v3 has no built-in string→time.Duration
// conversion, so each is parsed explicitly with time.ParseDuration below,
// mirroring pkg/config/loader.go's CacheTTL string-then-parse pattern.
type yamlQueueConfig struct {
	WorkerCount             int    `yaml:"worker_concurrency"`
	PollInterval            string `yaml:"poll_interval"`
	PollIntervalJitter      string `yaml:"poll_interval_jitter"`
	GracefulShutdownTimeout string `yaml:"graceful_shutdown_timeout"`
	HeartbeatInterval       string `yaml:"heartbeat_interval"`
	OrphanDetectionInterval string `yaml:"orphan_detection_interval"`
	OrphanThreshold         string `yaml:"orphan_threshold"`
}

type yamlStageTimeoutConfig struct {
	Fetch   string `yaml:"fetch"`
	Score   string `yaml:"score"`
	Persist string `yaml:"persist"`
	Narrate string `yaml:"narrate"`
	Deliver string `yaml:"deliver"`
}

type yamlRetryConfig struct {
	Fetch   *RetryBudget `yaml:"fetch"`
	Persist *RetryBudget `yaml:"persist"`
}

type yamlRateWindow struct {
	Requests int    `yaml:"requests"`
	Per      string `yaml:"per"`
}

type yamlRateLimitConfig struct {
	Short yamlRateWindow `yaml:"short"`
	Long  yamlRateWindow `yaml:"long"`
}

type yamlRetentionConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	RetentionDays int    `yaml:"retention_days"`
	SweepInterval string `yaml:"sweep_interval"`
}

// yamlConfig is the on-disk shape of config/matchmind.yaml. Only the fields
// present are applied; everything else falls back to the built-in defaults.
type yamlConfig struct {
	Queue         *yamlQueueConfig               `yaml:"queue"`
	StageTimeouts *yamlStageTimeoutConfig         `yaml:"stage_timeout"`
	Retry         *yamlRetryConfig                `yaml:"retry"`
	LLM           *LLMConfig                      `yaml:"llm"`
	RateLimit     map[string]yamlRateLimitConfig   `yaml:"rate_limit"`
	Degradation   *DegradationConfig               `yaml:"degradation"`
	Features      *FeatureFlags                    `yaml:"feature"`
	InteractionTokenTTLSeconds int                 `yaml:"interaction_token_ttl_seconds"`
	Database      *DatabaseConfig                  `yaml:"database"`
	Retention     *yamlRetentionConfig             `yaml:"retention"`
	ChatWebhook   *ChatWebhookConfig               `yaml:"chat_webhook"`
}

// Initialize loads config/matchmind.yaml (if present) from configDir,
// expands environment variables, merges it over the built-in defaults, and
// validates the result — mirroring pkg/config.Initialize's
// load-then-validate shape.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	cfg, err := load(configDir)
	if err != nil {
		return nil, err
	}
	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	cfg := &Config{
		configDir:     configDir,
		Queue:         DefaultQueueConfig(),
		StageTimeouts: DefaultStageTimeouts(),
		Retry:         DefaultRetryConfig(),
		LLM: LLMConfig{
			ModelID:         "claude-sonnet-4-5",
			Temperature:     0.4,
			MaxOutputTokens: 1024,
		},
		RateLimit: map[string]RateLimitConfig{
			"default": {
				Short: RateWindow{Requests: 20, Per: 1 * time.Second},
				Long:  RateWindow{Requests: 100, Per: 120 * time.Second},
			},
		},
		Degradation: DegradationConfig{TemplateEnabled: true},
		Features:    FeatureFlags{ArenaEnabled: true, BlindModeEnabled: true},
		InteractionTokenTTLSeconds: 840,
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, User: "matchmind", Database: "matchmind",
			SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 5,
		},
		Retention: RetentionConfig{Enabled: true, RetentionDays: 90, SweepInterval: 3600 * time.Second},
	}

	path := filepath.Join(configDir, "matchmind.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigNotFound, path, err)
	}

	raw = ExpandEnv(raw)

	var user yamlConfig
	if err := yaml.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
	}

	if user.Queue != nil {
		merged, err := mergeQueueConfig(cfg.Queue, *user.Queue)
		if err != nil {
			return nil, fmt.Errorf("merging queue config: %w", err)
		}
		cfg.Queue = merged
	}
	if user.StageTimeouts != nil {
		merged, err := mergeStageTimeouts(cfg.StageTimeouts, *user.StageTimeouts)
		if err != nil {
			return nil, fmt.Errorf("merging stage timeouts: %w", err)
		}
		cfg.StageTimeouts = merged
	}
	if user.Retry != nil {
		if user.Retry.Fetch != nil {
			cfg.Retry.Fetch = *user.Retry.Fetch
		}
		if user.Retry.Persist != nil {
			cfg.Retry.Persist = *user.Retry.Persist
		}
	}
	if user.LLM != nil {
		if err := mergo.Merge(&cfg.LLM, *user.LLM, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging llm config: %w", err)
		}
	}
	for region, rl := range user.RateLimit {
		merged, err := mergeRateLimitConfig(rl)
		if err != nil {
			return nil, fmt.Errorf("parsing rate_limit.%s: %w", region, err)
		}
		cfg.RateLimit[region] = merged
	}
	if user.Degradation != nil {
		cfg.Degradation = *user.Degradation
	}
	if user.Features != nil {
		cfg.Features = *user.Features
	}
	if user.InteractionTokenTTLSeconds > 0 {
		cfg.InteractionTokenTTLSeconds = user.InteractionTokenTTLSeconds
	}
	if user.Database != nil {
		if err := mergo.Merge(&cfg.Database, *user.Database, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging database config: %w", err)
		}
	}
	if user.Retention != nil {
		merged, err := mergeRetentionConfig(cfg.Retention, *user.Retention)
		if err != nil {
			return nil, fmt.Errorf("merging retention config: %w", err)
		}
		cfg.Retention = merged
	}
	if user.ChatWebhook != nil {
		cfg.ChatWebhook = *user.ChatWebhook
	}

	return cfg, nil
}

func mergeQueueConfig(base QueueConfig, u yamlQueueConfig) (QueueConfig, error) {
	if u.WorkerCount > 0 {
		base.WorkerCount = u.WorkerCount
	}
	var err error
	if base.PollInterval, err = parseDurationOr(u.PollInterval, base.PollInterval); err != nil {
		return base, err
	}
	if base.PollIntervalJitter, err = parseDurationOr(u.PollIntervalJitter, base.PollIntervalJitter); err != nil {
		return base, err
	}
	if base.GracefulShutdownTimeout, err = parseDurationOr(u.GracefulShutdownTimeout, base.GracefulShutdownTimeout); err != nil {
		return base, err
	}
	if base.HeartbeatInterval, err = parseDurationOr(u.HeartbeatInterval, base.HeartbeatInterval); err != nil {
		return base, err
	}
	if base.OrphanDetectionInterval, err = parseDurationOr(u.OrphanDetectionInterval, base.OrphanDetectionInterval); err != nil {
		return base, err
	}
	if base.OrphanThreshold, err = parseDurationOr(u.OrphanThreshold, base.OrphanThreshold); err != nil {
		return base, err
	}
	return base, nil
}

func mergeStageTimeouts(base StageTimeoutConfig, u yamlStageTimeoutConfig) (StageTimeoutConfig, error) {
	var err error
	if base.Fetch, err = parseDurationOr(u.Fetch, base.Fetch); err != nil {
		return base, err
	}
	if base.Score, err = parseDurationOr(u.Score, base.Score); err != nil {
		return base, err
	}
	if base.Persist, err = parseDurationOr(u.Persist, base.Persist); err != nil {
		return base, err
	}
	if base.Narrate, err = parseDurationOr(u.Narrate, base.Narrate); err != nil {
		return base, err
	}
	if base.Deliver, err = parseDurationOr(u.Deliver, base.Deliver); err != nil {
		return base, err
	}
	return base, nil
}

func mergeRetentionConfig(base RetentionConfig, u yamlRetentionConfig) (RetentionConfig, error) {
	if u.Enabled != nil {
		base.Enabled = *u.Enabled
	}
	if u.RetentionDays > 0 {
		base.RetentionDays = u.RetentionDays
	}
	var err error
	if base.SweepInterval, err = parseDurationOr(u.SweepInterval, base.SweepInterval); err != nil {
		return base, err
	}
	return base, nil
}

func mergeRateLimitConfig(u yamlRateLimitConfig) (RateLimitConfig, error) {
	var rl RateLimitConfig
	var err error
	rl.Short.Requests = u.Short.Requests
	if rl.Short.Per, err = parseDurationOr(u.Short.Per, 0); err != nil {
		return rl, err
	}
	rl.Long.Requests = u.Long.Requests
	if rl.Long.Per, err = parseDurationOr(u.Long.Per, 0); err != nil {
		return rl, err
	}
	return rl, nil
}

// parseDurationOr parses s as a Go duration string, returning fallback
// unchanged if s is empty.
func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
