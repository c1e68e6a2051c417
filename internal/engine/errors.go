package engine

import (
	"fmt"

	"github.com/talgya/warzone/internal/agents"
)

// ConfigError reports invalid initialization parameters. A simulation is
// never created when one is returned.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IntegrityViolation reports a broken grid/registry invariant.
// The registry panics with it when asked to move or remove an agent whose
// grid membership disagrees with its recorded position.
type IntegrityViolation = agents.IntegrityViolation
