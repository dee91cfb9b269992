// Package answers provides the installation answer source consulted for
// variables found missing during reconciliation.
//
// Answers are keyed by variable name. Absence of a key is never an error;
// the reconciler falls back to the default resolver.
package answers

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Source is a key/value lookup for unattended-installation answers.
type Source interface {
	// Lookup returns the answer for name, and whether one exists.
	Lookup(name string) (any, bool)
}

// Map is an in-memory answer source.
type Map map[string]any

// Lookup implements Source.
func (m Map) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// None is an empty answer source.
var None = Map{}

// File is an answer source backed by a TOML file.
type File struct {
	values map[string]any
}

// LoadFile reads a TOML answer file. A missing file yields an empty
// source; a parse failure is an error carrying the file path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{values: map[string]any{}}, nil
		}
		return nil, fmt.Errorf("reading answer file %s: %w", path, err)
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing answer file %s: %w", path, err)
	}
	return &File{values: values}, nil
}

// Lookup implements Source.
func (f *File) Lookup(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Len returns the number of answers.
func (f *File) Len() int {
	return len(f.values)
}
