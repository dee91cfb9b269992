// Package schema declares the canonical set of local configuration
// variables.
//
// The schema is an ordered list of variable descriptors plus the fixed list
// of override-eligible names nested under the param_override mapping. Order
// matters: it determines both gap-filling order during reconciliation and
// the on-disk layout of the settings file. The schema is pure data and is
// immutable for the lifetime of the process.
package schema

import (
	"github.com/dshills/localconf/internal/config/resolve"
)

// Variable describes one configuration entry.
type Variable struct {
	// Name is the unique, stable identifier of the variable.
	Name string

	// Default describes how a missing value is filled in.
	Default resolve.Spec

	// Lazy marks variables with no default. They are supplied by the
	// environment or the answer source, or left absent without error.
	Lazy bool
}

// ParamOverride is the single mapping-typed variable whose sub-keys are
// sourced individually when environment mode is active.
const ParamOverride = "param_override"

// vars is the canonical, ordered variable table.
var vars = []Variable{
	{Name: "create_htaccess", Default: resolve.Literal(int64(1))},
	{Name: "webservergroup", Default: resolve.Provider(resolve.EffectiveGroup())},
	{Name: "use_suexec", Default: resolve.Literal(int64(0))},
	{Name: "db_driver", Default: resolve.Literal("mysql")},
	{Name: "db_host", Default: resolve.Literal("localhost")},
	{Name: "db_name", Default: resolve.Literal("app")},
	{Name: "db_user", Default: resolve.Literal("app")},
	{Name: "db_pass", Default: resolve.Literal("")},
	{Name: "db_port", Default: resolve.Literal(int64(0))},
	{Name: "db_sock", Default: resolve.Literal("")},
	{Name: "db_check", Default: resolve.Literal(int64(1))},
	{Name: "db_mysql_ssl_client_cert", Lazy: true},
	{Name: "db_mysql_ssl_client_key", Lazy: true},
	{Name: "db_mysql_ssl_ca_file", Lazy: true},
	{Name: "db_mysql_ssl_ca_dir", Lazy: true},
	{Name: "index_html", Default: resolve.Literal(int64(0))},
	{Name: "interdiff", Default: resolve.Provider(resolve.FindOnPath("interdiff"))},
	{Name: "diffpath", Default: resolve.Provider(resolve.DirOf(resolve.FindOnPath("interdiff")))},
	{Name: "site_wide_secret", Default: resolve.Provider(resolve.Secret(resolve.SecretLength))},
	{Name: ParamOverride, Default: resolve.Provider(resolve.EmptyMapping())},
}

// overrideVars lists the sub-keys of param_override that may be populated
// from individual environment variables. Keys outside this list are ignored
// even when prefixed identically.
var overrideVars = []string{
	"inbound_proxies",
	"shadowdb",
	"shadowdbhost",
	"shadowdbport",
	"shadowdbsock",
	"memcached_servers",
	"memcached_namespace",
	"urlbase",
	"attachment_base",
	"ssl_redirect",
}

// byName indexes the variable table for Lookup.
var byName = func() map[string]Variable {
	m := make(map[string]Variable, len(vars))
	for _, v := range vars {
		m[v.Name] = v
	}
	return m
}()

// Vars returns the ordered variable descriptors.
func Vars() []Variable {
	out := make([]Variable, len(vars))
	copy(out, vars)
	return out
}

// Names returns the variable names in schema order.
func Names() []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Variable, bool) {
	v, ok := byName[name]
	return v, ok
}

// Has reports whether name is a schema variable.
func Has(name string) bool {
	_, ok := byName[name]
	return ok
}

// OverrideVars returns the ordered override-eligible sub-key names.
func OverrideVars() []string {
	out := make([]string, len(overrideVars))
	copy(out, overrideVars)
	return out
}

// IsOverrideVar reports whether name is in the override-eligible set.
func IsOverrideVar(name string) bool {
	for _, n := range overrideVars {
		if n == name {
			return true
		}
	}
	return false
}
