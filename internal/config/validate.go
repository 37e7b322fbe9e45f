package config

import (
	"fmt"
	"time"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
// Delimiter errors are configuration-class errors and must be caught
// here, before any scaling-group record is parsed.
func (c Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("config: QUEUESCALE_REDIS_ADDR is required")
	}

	if c.ScalingGroups == "" {
		return fmt.Errorf("config: QUEUESCALE_SCALING_GROUPS is required")
	}

	if len(c.RecordDelim) != 1 {
		return fmt.Errorf("config: RecordDelim must be a single character, got %q", c.RecordDelim)
	}
	if len(c.FieldDelim) != 1 {
		return fmt.Errorf("config: FieldDelim must be a single character, got %q", c.FieldDelim)
	}
	if c.RecordDelim == c.FieldDelim {
		return fmt.Errorf("config: record and field delimiters must differ, both are %q", c.RecordDelim)
	}

	if c.ActionableStatus == "" {
		return fmt.Errorf("config: QUEUESCALE_ACTIONABLE_STATUS must not be empty")
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("config: PollInterval must be >= 1s, got %v", c.PollInterval)
	}

	if c.RetryBackoff <= 0 {
		return fmt.Errorf("config: RetryBackoff must be > 0, got %v", c.RetryBackoff)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MaxRetries must be >= 0, got %d", c.MaxRetries)
	}

	if c.HealthPort < 1 || c.HealthPort > 65535 {
		return fmt.Errorf("config: HealthPort must be 1-65535, got %d", c.HealthPort)
	}

	return nil
}
