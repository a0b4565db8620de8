package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Queue:                      DefaultQueueConfig(),
		StageTimeouts:              DefaultStageTimeouts(),
		Retry:                      DefaultRetryConfig(),
		LLM:                        LLMConfig{ModelID: "claude-sonnet-4-5", MaxOutputTokens: 1024, Temperature: 0.4},
		InteractionTokenTTLSeconds: 840,
		Database:                   DatabaseConfig{Host: "localhost", Port: 5432, Database: "matchmind", MaxOpenConns: 10},
		Retention:                  RetentionConfig{Enabled: true, RetentionDays: 90, SweepInterval: time.Hour},
	}
}

func TestValidateAllAcceptsADefaultedConfig(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateQueueRejectsOutOfRangeWorkerCount(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.WorkerCount = 0
	assert.Error(t, NewValidator(cfg).ValidateAll())

	cfg.Queue.WorkerCount = 51
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateQueueRejectsJitterNotLessThanInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.PollIntervalJitter = cfg.Queue.PollInterval
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval_jitter")
}

func TestValidateQueueRejectsOrphanThresholdNotExceedingHeartbeat(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.OrphanThreshold = cfg.Queue.HeartbeatInterval
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orphan_threshold")
}

func TestValidateStageTimeoutsRejectsNonPositiveEntry(t *testing.T) {
	cfg := validConfig()
	cfg.StageTimeouts.Narrate = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage_timeout.narrate")
}

func TestValidateLLMRejectsTemperatureOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 1.5
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateDatabaseRejectsEmptyHost(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateRetentionSkippedWhenDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Retention = RetentionConfig{Enabled: false}
	assert.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateRetentionRejectsNonPositiveDaysWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Retention.RetentionDays = 0
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAllRejectsNonPositiveInteractionTokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.InteractionTokenTTLSeconds = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interaction_token_ttl_seconds")
}
