package matcher

import (
	"fmt"

	"acerto-reconciliation-service/internal/aggregator"
)

// Config holds configuration options for the matching engine.
type Config struct {
	// Aliases are the spreadsheet column alias lists handed to the
	// aggregator.
	Aliases *aggregator.ColumnAliases

	// MinTokenLength is the smallest client-name token considered by the
	// match rule. Shorter candidate tokens (initials, connectives like
	// "de") would make trivial substring matches. Payer tokens are never
	// filtered; a short payer token may still match inside a longer
	// client-name token.
	MinTokenLength int

	// Parallel maps the per-broker reconciliation over goroutines. Each
	// broker's working state is private, so parallel runs produce output
	// identical to sequential ones.
	Parallel bool
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() *Config {
	return &Config{
		Aliases:        aggregator.DefaultColumnAliases(),
		MinTokenLength: 3,
		Parallel:       false,
	}
}

// Validate validates the matching configuration.
func (c *Config) Validate() error {
	if c.MinTokenLength < 1 {
		return fmt.Errorf("minimum token length must be positive, got %d", c.MinTokenLength)
	}
	if c.Aliases != nil {
		if err := c.Aliases.Validate(); err != nil {
			return fmt.Errorf("invalid column aliases: %w", err)
		}
	}
	return nil
}
