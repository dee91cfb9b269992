package config

import (
	"github.com/dshills/localconf/internal/config/resolve"
)

// migration rewrites loaded state before gap-filling so historical values
// are upgraded in place. A migration that removes a key forces the normal
// default/answer resolution to regenerate it.
type migration struct {
	// name identifies the migration in debug logs.
	name string

	// apply mutates the loaded configuration map.
	apply func(cfg map[string]any)
}

// migrations run in order on every update, before gap-filling.
var migrations = []migration{
	{
		// Secrets produced by the old generator are 256 characters long and
		// came from a weaker random source. Dropping the value here makes
		// the resolver issue a fresh 64-character secret.
		name: "regenerate weak site_wide_secret",
		apply: func(cfg map[string]any) {
			s, ok := cfg["site_wide_secret"].(string)
			if ok && len(s) == resolve.LegacySecretLength {
				delete(cfg, "site_wide_secret")
			}
		},
	},
}

// applyMigrations runs every migration against cfg.
func applyMigrations(cfg map[string]any) {
	for _, m := range migrations {
		m.apply(cfg)
	}
}
