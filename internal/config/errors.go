package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/localconf/internal/config/source"
	"github.com/dshills/localconf/internal/config/writer"
)

// Errors returned by configuration operations.
var (
	// ErrEnvSourced indicates reconciliation was invoked while
	// environment-sourced mode is active. Configuration is derived and
	// read-only in that mode; persisting it is a programming error.
	ErrEnvSourced = errors.New("configuration is environment-sourced and cannot be reconciled")
)

// LoadError indicates the settings file exists but could not be safely
// evaluated. Fatal; carries the underlying cause and file path.
type LoadError = source.LoadError

// IOError indicates the settings or legacy file could not be opened or
// written. Fatal.
type IOError = writer.IOError

// ReviewRequiredError signals that new variables were added with defaulted
// values and the caller did not request silent acceptance. The larger setup
// flow is expected to stop until the user inspects the new values. It is a
// deliberate halt, not a failure: the settings file has already been
// written.
type ReviewRequiredError struct {
	// NewVars lists the added variables in schema order.
	NewVars []string
}

// Error implements the error interface.
func (e *ReviewRequiredError) Error() string {
	return fmt.Sprintf("new configuration variables need review: %s",
		strings.Join(e.NewVars, ", "))
}
