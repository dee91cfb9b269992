// Package source loads the current configuration state from one of two
// mutually exclusive sources: prefixed process environment variables, or
// the on-disk settings file evaluated under the script sandbox.
package source

import (
	"os"
	"strings"

	"github.com/dshills/localconf/internal/config/schema"
)

// EnvPrefix is prepended to every variable name to form its environment
// key, for both schema variables and override-group sub-keys.
const EnvPrefix = "LOCALCONF_"

// EnvModeVar is the deployment-time switch selecting environment-sourced
// configuration. When it is truthy, the settings file and reconciliation
// are bypassed entirely.
const EnvModeVar = "LOCALCONF_FROM_ENV"

// EnvSourced reports whether environment-sourced mode is active.
func EnvSourced() bool {
	switch strings.ToLower(os.Getenv(EnvModeVar)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// EnvStrategy rebuilds configuration purely from prefixed environment
// variables, falling back to schema defaults for absent keys.
type EnvStrategy struct {
	// lookup is indirected for tests; defaults to os.LookupEnv.
	lookup func(string) (string, bool)
}

// NewEnvStrategy creates an environment loader reading the process
// environment.
func NewEnvStrategy() *EnvStrategy {
	return &EnvStrategy{lookup: os.LookupEnv}
}

// NewEnvStrategyWithLookup creates an environment loader with a custom
// lookup function.
func NewEnvStrategyWithLookup(lookup func(string) (string, bool)) *EnvStrategy {
	return &EnvStrategy{lookup: lookup}
}

// Load builds the configuration map. For each schema variable except
// param_override the prefixed environment key wins verbatim, else the
// default resolves. param_override is populated with one entry per
// override-eligible sub-key; an absent sub-key maps to the explicit nil
// unset marker rather than any schema default. Environment keys outside
// the override-eligible set are ignored.
func (s *EnvStrategy) Load() map[string]any {
	cfg := make(map[string]any, len(schema.Names()))

	for _, v := range schema.Vars() {
		if v.Name == schema.ParamOverride {
			cfg[v.Name] = s.loadOverrides()
			continue
		}
		if raw, ok := s.lookup(EnvPrefix + v.Name); ok {
			cfg[v.Name] = raw
			continue
		}
		if v.Lazy {
			continue
		}
		cfg[v.Name] = v.Default.Resolve()
	}

	return cfg
}

// loadOverrides packs the override-eligible sub-keys into the
// param_override mapping. Values are taken verbatim; absent keys carry
// the nil unset marker.
func (s *EnvStrategy) loadOverrides() map[string]any {
	m := make(map[string]any, len(schema.OverrideVars()))
	for _, name := range schema.OverrideVars() {
		if raw, ok := s.lookup(EnvPrefix + name); ok {
			m[name] = raw
		} else {
			m[name] = nil
		}
	}
	return m
}
