package script

import (
	lua "github.com/yuin/gopher-lua"
)

// toGoValue converts a Lua value to its Go configuration shape: scalar
// (string, int64, float64, bool), sequence ([]any) or mapping
// (map[string]any). Every value has exactly one shape; a table is a
// sequence when its keys are the contiguous integers 1..n, and a mapping
// otherwise. Functions, userdata and nil convert to nil and are dropped
// by the caller.
func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break reference cycles
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a sequence or a mapping.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isSeq := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok {
			isSeq = false
			return
		}
		n := int(kn)
		if float64(n) != float64(kn) || n < 1 {
			isSeq = false
			return
		}
		if n > maxN {
			maxN = n
		}
	})

	if isSeq && maxN > 0 && count == maxN {
		seq := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			seq[i-1] = toGoValue(t.RawGetInt(i), visited)
		}
		return seq
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if val := toGoValue(v, visited); val != nil {
			m[string(ks)] = val
		}
	})
	return m
}
