package source

import (
	"fmt"
	"os"

	"github.com/dshills/localconf/internal/config/schema"
	"github.com/dshills/localconf/internal/config/script"
)

// LoadError indicates the settings file exists but could not be safely
// evaluated. It is fatal to the caller.
type LoadError struct {
	// Path is the settings file that failed to evaluate.
	Path string
	// Err is the underlying evaluation error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot evaluate settings file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// FileStrategy loads configuration by evaluating the settings file under
// the script sandbox.
type FileStrategy struct {
	path string
}

// NewFileStrategy creates a file loader for the settings file at path.
func NewFileStrategy(path string) *FileStrategy {
	return &FileStrategy{path: path}
}

// Load evaluates the settings file and returns its defined variables.
//
// A missing file yields an empty map: the caller treats every variable as
// missing. An evaluation failure yields a *LoadError. When
// includeDeprecated is true every user-defined symbol is captured,
// including ones outside the schema; otherwise enumeration is restricted
// to schema names.
func (s *FileStrategy) Load(includeDeprecated bool) (map[string]any, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return map[string]any{}, nil
	}

	ev := script.NewEvaluator()
	defer ev.Close()

	if err := ev.EvalFile(s.path); err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}

	if includeDeprecated {
		return ev.Globals(), nil
	}

	cfg := make(map[string]any)
	for _, name := range schema.Names() {
		if v := ev.Global(name); v != nil {
			cfg[name] = v
		}
	}
	return cfg, nil
}

// Path returns the settings file path this strategy reads.
func (s *FileStrategy) Path() string {
	return s.path
}
