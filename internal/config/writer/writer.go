// Package writer persists the reconciled configuration back to disk.
//
// The settings file is rewritten wholesale in schema order with a wrapped
// description comment above each variable. Serialization is deterministic:
// mapping keys are emitted alphabetically, so repeated writes of unchanged
// data are byte-identical. Orphaned variables are appended to a sibling
// legacy file that is never truncated.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/localconf/internal/config/describe"
)

// OrphanSuffix is appended to the settings path to form the legacy file.
const OrphanSuffix = ".old"

// IOError indicates the settings or legacy file could not be opened or
// written. It is fatal to the caller.
type IOError struct {
	// Path is the file the operation failed on.
	Path string
	// Op names the failed operation.
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Write renders one record per name in order, each preceded by its wrapped
// description comment, and atomically replaces the settings file at path.
// Names absent from cfg are skipped (lazy variables that were never
// supplied). The write is all-or-nothing: a failure leaves the previous
// file intact.
func Write(path string, cfg map[string]any, order []string, desc describe.Func) error {
	var b strings.Builder

	for _, name := range order {
		v, ok := cfg[name]
		if !ok {
			continue
		}
		writeComment(&b, desc(name))
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(renderValue(v))
		b.WriteString("\n\n")
	}

	if err := atomicWrite(path, []byte(b.String()), 0o600); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// WriteOrphans appends one self-contained assignment block per orphan name
// to the legacy file beside the settings file. The legacy file is append-only
// and is never read back by this module.
func WriteOrphans(settingsPath string, cfg map[string]any, orphans []string) error {
	if len(orphans) == 0 {
		return nil
	}
	path := settingsPath + OrphanSuffix

	var b strings.Builder
	for _, name := range orphans {
		v, ok := cfg[name]
		if !ok {
			continue
		}
		b.WriteString("-- moved out of the active settings file; no longer in the schema\n")
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(renderValue(v))
		b.WriteString("\n\n")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return &IOError{Path: path, Op: "open", Err: err}
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return &IOError{Path: path, Op: "append to", Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	return nil
}

// atomicWrite writes data to a temporary file in the target directory,
// syncs it, and renames it over path. Either the old file or the complete
// new file exists at every point.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".settings-")
	if err != nil {
		return err
	}
	tmp := f.Name()

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	ok = true
	return nil
}
