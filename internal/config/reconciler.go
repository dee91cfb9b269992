// Package config reconciles the on-disk settings file against the
// canonical variable schema.
//
// Reconciliation loads current state from the settings file, fills every
// missing variable from the installation answer source or the default
// resolver, migrates historical values, classifies drift (new variables
// versus orphaned ones), and persists a deterministic settings file plus an
// append-only legacy file for orphans. When environment-sourced mode is
// active the settings file is bypassed entirely and state is rebuilt from
// prefixed environment variables.
package config

import (
	"sort"

	"github.com/dshills/localconf/internal/config/answers"
	"github.com/dshills/localconf/internal/config/describe"
	"github.com/dshills/localconf/internal/config/notify"
	"github.com/dshills/localconf/internal/config/schema"
	"github.com/dshills/localconf/internal/config/source"
	"github.com/dshills/localconf/internal/config/writer"
	"github.com/dshills/localconf/internal/logging"
)

// Result classifies the drift observed during one Update call. It is
// computed fresh every call and never persisted.
type Result struct {
	// NewVars lists schema variables that were absent from stored state
	// and have been filled with a default or answer, in schema order.
	NewVars []string

	// OldVars lists stored variables with no schema entry, migrated to
	// the legacy file. Sorted.
	OldVars []string
}

// Reconciler orchestrates loading, gap-filling, drift classification and
// persistence of the settings file.
type Reconciler struct {
	path         string
	answers      answers.Source
	describe     describe.Func
	log          *logging.Logger
	invalidators *notify.Registry
	envSourced   func() bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithAnswers sets the installation answer source consulted before the
// default resolver for missing variables.
func WithAnswers(src answers.Source) Option {
	return func(r *Reconciler) {
		r.answers = src
	}
}

// WithDescriptions sets the description lookup used for settings-file
// comment blocks.
func WithDescriptions(fn describe.Func) Option {
	return func(r *Reconciler) {
		r.describe = fn
	}
}

// WithLogger sets the logger for advisory messages.
func WithLogger(log *logging.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// WithInvalidators sets the registry notified after successful persistence.
func WithInvalidators(reg *notify.Registry) Option {
	return func(r *Reconciler) {
		r.invalidators = reg
	}
}

// WithEnvSourcedCheck overrides detection of environment-sourced mode.
func WithEnvSourcedCheck(fn func() bool) Option {
	return func(r *Reconciler) {
		r.envSourced = fn
	}
}

// New creates a Reconciler for the settings file at path.
func New(path string, opts ...Option) *Reconciler {
	r := &Reconciler{
		path:         path,
		answers:      answers.None,
		describe:     describe.Builtin(),
		log:          logging.Default(),
		invalidators: notify.NewRegistry(),
		envSourced:   source.EnvSourced,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidators returns the invalidation registry so callers can subscribe
// process-wide configuration caches.
func (r *Reconciler) Invalidators() *notify.Registry {
	return r.invalidators
}

// UpdateOptions controls Update behavior.
type UpdateOptions struct {
	// AcceptDefaults suppresses the review-required halt when new
	// variables were filled with defaults.
	AcceptDefaults bool
}

// Update reconciles the settings file against the schema and persists the
// result.
//
// When new variables were added and AcceptDefaults is false, Update returns
// the Result together with a *ReviewRequiredError; both files have already
// been written at that point. Fatal failures return *LoadError or *IOError
// with a nil Result.
func (r *Reconciler) Update(opts UpdateOptions) (*Result, error) {
	if r.envSourced() {
		return nil, ErrEnvSourced
	}

	cfg, err := source.NewFileStrategy(r.path).Load(true)
	if err != nil {
		return nil, err
	}

	applyMigrations(cfg)

	res := &Result{}
	for _, v := range schema.Vars() {
		if _, ok := cfg[v.Name]; ok {
			continue
		}
		res.NewVars = append(res.NewVars, v.Name)

		if val, ok := r.answers.Lookup(v.Name); ok {
			cfg[v.Name] = val
			continue
		}
		if v.Lazy {
			// No default exists; the variable stays absent without error.
			continue
		}
		cfg[v.Name] = v.Default.Resolve()
	}

	if path, _ := cfg["interdiff"].(string); path == "" {
		r.log.Infof("no interdiff executable found on PATH; comparing attachment revisions will not work until interdiff is set")
	}

	for name := range cfg {
		if !schema.Has(name) {
			res.OldVars = append(res.OldVars, name)
		}
	}
	sort.Strings(res.OldVars)

	if err := writer.Write(r.path, cfg, schema.Names(), r.describe); err != nil {
		return nil, err
	}
	if err := writer.WriteOrphans(r.path, cfg, res.OldVars); err != nil {
		return nil, err
	}

	r.invalidators.InvalidateAll()

	// Lazy variables count as new only when a value actually appeared;
	// an absent lazy variable is normal, not drift to review.
	reviewable := res.NewVars[:0:0]
	for _, name := range res.NewVars {
		if _, ok := cfg[name]; ok {
			reviewable = append(reviewable, name)
		}
	}
	res.NewVars = reviewable

	if len(res.NewVars) > 0 && !opts.AcceptDefaults {
		return res, &ReviewRequiredError{NewVars: res.NewVars}
	}
	return res, nil
}

// Load returns the current configuration without reconciling or writing.
//
// In environment-sourced mode the state is rebuilt from prefixed
// environment variables and schema defaults and returned immediately; no
// file is touched. Otherwise the settings file is evaluated and its
// schema variables returned (missing file yields an empty map).
func (r *Reconciler) Load() (map[string]any, error) {
	if r.envSourced() {
		return source.NewEnvStrategy().Load(), nil
	}
	return source.NewFileStrategy(r.path).Load(false)
}
