package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultCircuitBreakerConfig().Validate())

	cfg := DefaultCircuitBreakerConfig()
	cfg.FailureThreshold = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FailureThreshold")

	cfg = DefaultCircuitBreakerConfig()
	cfg.OpenTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	t.Parallel()

	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: false, FailureThreshold: 3})
	assert.False(t, got.Enabled)
	assert.Equal(t, 3, got.FailureThreshold)
	assert.Equal(t, 15*time.Second, got.OpenTimeout)
	assert.Equal(t, 2, got.HalfOpenMaxReq)
}
