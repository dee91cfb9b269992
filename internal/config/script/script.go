// Package script evaluates the user-editable settings file under a
// restricted Lua sandbox.
//
// The settings file is free-form script by historical design, so it is
// executed rather than parsed. The sandbox permits variable assignment and
// explicit sub-file inclusion only: no io, os, debug, or package libraries
// are opened, and the load family of functions is removed. The include()
// helper is confined to the settings file's directory.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// IncludeSymbol is the reserved bookkeeping global installed by the
// sandbox. It is never reported as a configuration variable.
const IncludeSymbol = "include"

// Evaluator runs settings scripts in a sandboxed Lua state and recovers
// the global variables they define.
//
// An Evaluator is single-use per settings file and is not safe for
// concurrent use; gopher-lua's LState is not goroutine-safe.
type Evaluator struct {
	L *lua.LState

	// baseline holds the globals present in a fresh sandbox. Enumeration
	// skips them so only user-defined symbols are reported.
	baseline map[string]bool

	// dir confines include() to the settings file's directory.
	dir string

	closed bool
}

// NewEvaluator creates a sandboxed evaluator.
func NewEvaluator() *Evaluator {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// Base plus the value-manipulation libraries only. io, os, debug and
	// package stay closed: the settings file must not touch the host.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The load family can evaluate arbitrary strings and files outside
	// the sandbox's control.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	ev := &Evaluator{L: L}
	L.SetGlobal(IncludeSymbol, L.NewFunction(ev.includeFn))

	ev.baseline = snapshotGlobals(L)
	return ev
}

// Close releases the Lua state.
func (ev *Evaluator) Close() {
	if !ev.closed {
		ev.L.Close()
		ev.closed = true
	}
}

// EvalFile executes the settings file at path. Sub-file inclusion via
// include() resolves relative to the file's directory.
func (ev *Evaluator) EvalFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ev.dir = filepath.Dir(path)
	return ev.evalChunk(string(src), path)
}

// EvalString executes a settings script held in memory. include() resolves
// relative to dir.
func (ev *Evaluator) EvalString(src, dir string) error {
	ev.dir = dir
	return ev.evalChunk(src, "<settings>")
}

func (ev *Evaluator) evalChunk(src, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := ev.L.Load(strings.NewReader(src), name)
	if err != nil {
		return err
	}
	ev.L.Push(fn)
	return ev.L.PCall(0, lua.MultRet, nil)
}

// includeFn implements the include(path) helper. Only paths relative to the
// settings directory are accepted; absolute paths and parent-directory
// escapes raise an error inside the script.
func (ev *Evaluator) includeFn(L *lua.LState) int {
	rel := L.CheckString(1)
	if filepath.IsAbs(rel) || strings.Contains(rel, "..") {
		L.RaiseError("include %q: path must stay within the settings directory", rel)
		return 0
	}

	full := filepath.Join(ev.dir, rel)
	src, err := os.ReadFile(full)
	if err != nil {
		L.RaiseError("include %q: %s", rel, err.Error())
		return 0
	}

	fn, err := L.Load(strings.NewReader(string(src)), full)
	if err != nil {
		L.RaiseError("include %q: %s", rel, err.Error())
		return 0
	}
	L.Push(fn)
	L.Call(0, 0)
	return 0
}

// Global returns the converted value of a single global, or nil when the
// symbol is undefined or has no representable shape.
func (ev *Evaluator) Global(name string) any {
	return toGoValue(ev.L.GetGlobal(name), make(map[*lua.LTable]bool))
}

// Globals enumerates every user-defined global with a representable value.
// Sandbox artifacts are skipped: baseline symbols, the include helper,
// names that do not start with an alphanumeric character, and names
// containing a namespace separator.
func (ev *Evaluator) Globals() map[string]any {
	out := make(map[string]any)
	globals := ev.L.Get(lua.GlobalsIndex).(*lua.LTable)
	globals.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		name := string(ks)
		if ev.baseline[name] || !validName(name) {
			return
		}
		if val := toGoValue(v, make(map[*lua.LTable]bool)); val != nil {
			out[name] = val
		}
	})
	return out
}

// validName reports whether a global name is user configuration rather
// than a sandbox artifact.
func validName(name string) bool {
	if name == "" || name == IncludeSymbol {
		return false
	}
	c := name[0]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
		return false
	}
	return !strings.Contains(name, ".")
}

// snapshotGlobals records the names defined in a fresh sandbox.
func snapshotGlobals(L *lua.LState) map[string]bool {
	base := make(map[string]bool)
	globals := L.Get(lua.GlobalsIndex).(*lua.LTable)
	globals.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			base[string(ks)] = true
		}
	})
	return base
}
