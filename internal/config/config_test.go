package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "UserVerification", cfg.DynamoTables.UserVerifications)
	assert.Equal(t, "AnalysisResult", cfg.DynamoTables.AnalysisResults)
	assert.Equal(t, 120*time.Second, cfg.CodeTTL)

	// The SMS mirror must stay off unless explicitly enabled.
	assert.False(t, cfg.SNSEnabled)
}

func TestLoad_SNSEnabledSwitch(t *testing.T) {
	t.Setenv("SNS_ENABLED", "true")

	cfg := Load()
	assert.True(t, cfg.SNSEnabled)
}

func TestLoad_SNSEnabledGarbageFallsBack(t *testing.T) {
	t.Setenv("SNS_ENABLED", "yes please")

	cfg := Load()
	assert.False(t, cfg.SNSEnabled)
}

func TestLoad_CodeTTLOverride(t *testing.T) {
	t.Setenv("CODE_TTL_SECONDS", "300")

	cfg := Load()
	assert.Equal(t, 300*time.Second, cfg.CodeTTL)
}
