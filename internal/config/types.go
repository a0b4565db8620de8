// Package config loads and validates matchmind's YAML configuration surface:
// worker/queue tuning, per-stage timeouts and retry budgets, LLM provider
// settings, per-region rate limits, degradation/feature gates and the
// interaction-token TTL.
package config

import "time"

// Config is the umbrella configuration object returned by Initialize and
// threaded through the rest of the application, mirroring the teacher's
// pkg/config.Config umbrella-struct shape.
type Config struct {
	configDir string

	Queue            QueueConfig            `yaml:"queue"`
	StageTimeouts     StageTimeoutConfig     `yaml:"stage_timeout"`
	Retry             RetryConfig            `yaml:"retry"`
	LLM               LLMConfig              `yaml:"llm"`
	RateLimit         map[string]RateLimitConfig `yaml:"rate_limit"`
	Degradation       DegradationConfig      `yaml:"degradation"`
	Features          FeatureFlags           `yaml:"feature"`
	InteractionTokenTTLSeconds int          `yaml:"interaction_token_ttl_seconds"`
	Database          DatabaseConfig         `yaml:"database"`
	Retention         RetentionConfig        `yaml:"retention"`
	ChatWebhook       ChatWebhookConfig      `yaml:"chat_webhook"`
}

// ConfigDir returns the directory this configuration was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// InteractionTokenTTL returns the configured TTL as a time.Duration, falling
// back to the repository's chosen default of 14 minutes (840s) — one minute
// of safety margin under the vendor's published 15-minute ceiling, per
// SPEC_FULL.md's pinned Open-Question decision.
func (c *Config) InteractionTokenTTL() time.Duration {
	if c.InteractionTokenTTLSeconds <= 0 {
		return 840 * time.Second
	}
	return time.Duration(c.InteractionTokenTTLSeconds) * time.Second
}

// QueueConfig tunes the worker pool, modeled on the teacher's
// pkg/config/queue.go.
type QueueConfig struct {
	WorkerCount             int           `yaml:"worker_concurrency"`
	PollInterval            time.Duration `yaml:"poll_interval"`
	PollIntervalJitter      time.Duration `yaml:"poll_interval_jitter"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
	HeartbeatInterval       time.Duration `yaml:"heartbeat_interval"`
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`
	OrphanThreshold         time.Duration `yaml:"orphan_threshold"`
}

// DefaultQueueConfig returns the built-in defaults, mirroring
// pkg/config/queue.go's DefaultQueueConfig.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		WorkerCount:             5,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		GracefulShutdownTimeout: 30 * time.Second,
		HeartbeatInterval:       10 * time.Second,
		OrphanDetectionInterval: 5 * time.Minute,
		OrphanThreshold:         5 * time.Minute,
	}
}

// StageTimeoutConfig holds the per-stage deadlines from spec.md §4.2's table.
type StageTimeoutConfig struct {
	Fetch   time.Duration `yaml:"fetch"`
	Score   time.Duration `yaml:"score"`
	Persist time.Duration `yaml:"persist"`
	Narrate time.Duration `yaml:"narrate"`
	Deliver time.Duration `yaml:"deliver"`
}

// DefaultStageTimeouts returns the literal timeouts specified in spec.md §4.2.
func DefaultStageTimeouts() StageTimeoutConfig {
	return StageTimeoutConfig{
		Fetch:   10 * time.Second,
		Score:   200 * time.Millisecond,
		Persist: 2 * time.Second,
		Narrate: 30 * time.Second,
		Deliver: 5 * time.Second,
	}
}

// RetryConfig holds retry budgets for the stages that retry.
type RetryConfig struct {
	Fetch   RetryBudget `yaml:"fetch"`
	Persist RetryBudget `yaml:"persist"`
}

// RetryBudget is a single max-attempts knob.
type RetryBudget struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultRetryConfig returns the literal retry budgets from spec.md §4.2.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Fetch:   RetryBudget{MaxAttempts: 3},
		Persist: RetryBudget{MaxAttempts: 2},
	}
}

// LLMConfig tunes the Narrate stage's model call.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	ModelID         string `yaml:"model_id"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int64   `yaml:"max_output_tokens"`
}

// RateLimitConfig sizes a per-region token bucket's short and long windows.
type RateLimitConfig struct {
	Short RateWindow `yaml:"short"`
	Long  RateWindow `yaml:"long"`
}

// RateWindow is a token-bucket capacity/refill pair.
type RateWindow struct {
	Requests int           `yaml:"requests"`
	Per      time.Duration `yaml:"per"`
}

// DegradationConfig gates stage-4 template fallback.
type DegradationConfig struct {
	TemplateEnabled bool `yaml:"template_enabled"`
}

// FeatureFlags gate strategy availability.
type FeatureFlags struct {
	ArenaEnabled     bool `yaml:"arena_enabled"`
	BlindModeEnabled bool `yaml:"blind_mode_enabled"`
}

// DatabaseConfig is the Postgres connection configuration, modeled on the
// teacher's pkg/database.Config.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RetentionConfig tunes internal/cleanup's soft-delete sweep.
type RetentionConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RetentionDays int           `yaml:"retention_days"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ChatWebhookConfig configures the deferred-interaction delivery client.
type ChatWebhookConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}
