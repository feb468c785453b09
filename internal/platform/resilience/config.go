package resilience

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// CircuitBreakerConfig is loaded from the API_CIRCUIT_* variables.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int           `validate:"gte=1"`
	OpenTimeout      time.Duration `validate:"gt=0"`
	HalfOpenMaxReq   int           `validate:"gte=1"`
}

// DefaultCircuitBreakerConfig opens after five consecutive failed API calls
// and tries again after fifteen seconds.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate reports the first field outside its allowed range.
func (c CircuitBreakerConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("circuit breaker %s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
		}
		return err
	}
	return nil
}

// NormalizeCircuitBreakerConfig fills zero or negative thresholds with the
// defaults. Enabled is kept as given.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
