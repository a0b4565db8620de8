package config

import "fmt"

// Validator validates configuration comprehensively with clear error
// messages, mirroring pkg/config/validator.go's fail-fast ValidateAll shape.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation, stopping at the first
// error, in dependency order: queue → stage timeouts → retry → llm →
// database → retention.
func (v *Validator) ValidateAll() error {
	if err := v.validateQueue(); err != nil {
		return fmt.Errorf("queue validation failed: %w", err)
	}
	if err := v.validateStageTimeouts(); err != nil {
		return fmt.Errorf("stage timeout validation failed: %w", err)
	}
	if err := v.validateRetry(); err != nil {
		return fmt.Errorf("retry validation failed: %w", err)
	}
	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("llm validation failed: %w", err)
	}
	if err := v.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := v.validateRetention(); err != nil {
		return fmt.Errorf("retention validation failed: %w", err)
	}
	if v.cfg.InteractionTokenTTLSeconds <= 0 {
		return fmt.Errorf("interaction_token_ttl_seconds must be positive, got %d", v.cfg.InteractionTokenTTLSeconds)
	}
	return nil
}

func (v *Validator) validateQueue() error {
	q := v.cfg.Queue
	if q.WorkerCount < 1 || q.WorkerCount > 50 {
		return fmt.Errorf("worker_concurrency must be between 1 and 50, got %d", q.WorkerCount)
	}
	if q.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", q.PollInterval)
	}
	if q.PollIntervalJitter < 0 || q.PollIntervalJitter >= q.PollInterval {
		return fmt.Errorf("poll_interval_jitter must be in [0, poll_interval), got jitter=%v interval=%v", q.PollIntervalJitter, q.PollInterval)
	}
	if q.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive, got %v", q.HeartbeatInterval)
	}
	if q.OrphanThreshold <= q.HeartbeatInterval {
		return fmt.Errorf("orphan_threshold must exceed heartbeat_interval, got threshold=%v heartbeat=%v", q.OrphanThreshold, q.HeartbeatInterval)
	}
	return nil
}

func (v *Validator) validateStageTimeouts() error {
	st := v.cfg.StageTimeouts
	for name, d := range map[string]int64{
		"fetch":   int64(st.Fetch),
		"score":   int64(st.Score),
		"persist": int64(st.Persist),
		"narrate": int64(st.Narrate),
		"deliver": int64(st.Deliver),
	} {
		if d <= 0 {
			return fmt.Errorf("stage_timeout.%s must be positive", name)
		}
	}
	return nil
}

func (v *Validator) validateRetry() error {
	if v.cfg.Retry.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("retry.fetch.max_attempts must be at least 1, got %d", v.cfg.Retry.Fetch.MaxAttempts)
	}
	if v.cfg.Retry.Persist.MaxAttempts < 1 {
		return fmt.Errorf("retry.persist.max_attempts must be at least 1, got %d", v.cfg.Retry.Persist.MaxAttempts)
	}
	return nil
}

func (v *Validator) validateLLM() error {
	if v.cfg.LLM.ModelID == "" {
		return fmt.Errorf("llm.model_id must not be empty")
	}
	if v.cfg.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("llm.max_output_tokens must be positive, got %d", v.cfg.LLM.MaxOutputTokens)
	}
	if v.cfg.LLM.Temperature < 0 || v.cfg.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be in [0, 1], got %f", v.cfg.LLM.Temperature)
	}
	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if d.Port <= 0 {
		return fmt.Errorf("database.port must be positive, got %d", d.Port)
	}
	if d.Database == "" {
		return fmt.Errorf("database.database must not be empty")
	}
	if d.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1, got %d", d.MaxOpenConns)
	}
	return nil
}

func (v *Validator) validateRetention() error {
	if !v.cfg.Retention.Enabled {
		return nil
	}
	if v.cfg.Retention.RetentionDays <= 0 {
		return fmt.Errorf("retention.retention_days must be positive when enabled, got %d", v.cfg.Retention.RetentionDays)
	}
	if v.cfg.Retention.SweepInterval <= 0 {
		return fmt.Errorf("retention.sweep_interval must be positive when enabled")
	}
	return nil
}
