package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/localconf/internal/config/answers"
	"github.com/dshills/localconf/internal/config/notify"
	"github.com/dshills/localconf/internal/config/resolve"
	"github.com/dshills/localconf/internal/config/schema"
	"github.com/dshills/localconf/internal/config/source"
	"github.com/dshills/localconf/internal/logging"
)

// newReconciler builds a file-mode reconciler over a temp settings path
// with quiet logging.
func newReconciler(t *testing.T, opts ...Option) (*Reconciler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "localconfig")
	log := logging.New(os.Stderr, logging.LevelError)
	base := []Option{
		WithLogger(log),
		WithEnvSourcedCheck(func() bool { return false }),
	}
	return New(path, append(base, opts...)...), path
}

func TestUpdate_FirstRunFillsEveryVariable(t *testing.T) {
	rec, path := newReconciler(t)

	res, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cfg, err := source.NewFileStrategy(path).Load(false)
	if err != nil {
		t.Fatalf("reloading written file: %v", err)
	}
	for _, v := range schema.Vars() {
		if v.Lazy {
			continue
		}
		if _, ok := cfg[v.Name]; !ok {
			t.Errorf("variable %s missing after update", v.Name)
		}
	}

	if len(res.OldVars) != 0 {
		t.Errorf("OldVars = %v on first run", res.OldVars)
	}
	// Every non-lazy variable is new on first run.
	if len(res.NewVars) == 0 {
		t.Error("no NewVars on first run")
	}
	for _, name := range res.NewVars {
		if !schema.Has(name) {
			t.Errorf("NewVars contains non-schema name %s", name)
		}
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	rec, path := newReconciler(t)

	if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	res, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if len(res.NewVars) != 0 {
		t.Errorf("second run NewVars = %v, want none", res.NewVars)
	}
	if len(res.OldVars) != 0 {
		t.Errorf("second run OldVars = %v, want none", res.OldVars)
	}

	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("settings file not byte-identical across idempotent runs")
	}
}

func TestUpdate_ReviewRequiredGating(t *testing.T) {
	rec, _ := newReconciler(t)

	res, err := rec.Update(UpdateOptions{})
	var review *ReviewRequiredError
	if !errors.As(err, &review) {
		t.Fatalf("error = %v, want *ReviewRequiredError", err)
	}
	if res == nil {
		t.Fatal("Result should accompany the review halt")
	}
	if len(review.NewVars) != len(res.NewVars) {
		t.Errorf("error lists %d vars, result %d", len(review.NewVars), len(res.NewVars))
	}

	// The file was written before the halt; a re-run with acceptance
	// finds nothing new.
	res, err = rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("re-run failed: %v", err)
	}
	if len(res.NewVars) != 0 {
		t.Errorf("re-run NewVars = %v", res.NewVars)
	}
}

func TestUpdate_WeakSecretRegenerated(t *testing.T) {
	seen := make(map[string]bool)

	for run := 0; run < 2; run++ {
		rec, path := newReconciler(t)
		legacy := strings.Repeat("x", resolve.LegacySecretLength)
		content := fmt.Sprintf("site_wide_secret = %q\n", legacy)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		cfg, err := source.NewFileStrategy(path).Load(false)
		if err != nil {
			t.Fatal(err)
		}
		secret, _ := cfg["site_wide_secret"].(string)
		if secret == legacy {
			t.Fatal("legacy secret survived the migration")
		}
		if len(secret) != resolve.SecretLength {
			t.Errorf("regenerated secret length = %d, want %d", len(secret), resolve.SecretLength)
		}
		if seen[secret] {
			t.Error("regenerated secret repeated across runs")
		}
		seen[secret] = true
	}
}

func TestUpdate_CurrentSecretKept(t *testing.T) {
	rec, path := newReconciler(t)
	if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
		t.Fatal(err)
	}
	cfg, _ := source.NewFileStrategy(path).Load(false)
	before, _ := cfg["site_wide_secret"].(string)

	if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
		t.Fatal(err)
	}
	cfg, _ = source.NewFileStrategy(path).Load(false)
	after, _ := cfg["site_wide_secret"].(string)

	if before != after {
		t.Error("healthy secret rewritten")
	}
}

func TestUpdate_OrphanRoundTrip(t *testing.T) {
	rec, path := newReconciler(t)
	if err := os.WriteFile(path, []byte("custom_legacy_flag = \"keep\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(res.OldVars) != 1 || res.OldVars[0] != "custom_legacy_flag" {
		t.Fatalf("OldVars = %v", res.OldVars)
	}

	main, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(main), "custom_legacy_flag") {
		t.Error("orphan still present in the main settings file")
	}

	legacy, err := os.ReadFile(path + ".old")
	if err != nil {
		t.Fatalf("legacy file missing: %v", err)
	}
	if got := strings.Count(string(legacy), "custom_legacy_flag"); got != 1 {
		t.Errorf("orphan appears %d times in legacy file, want 1", got)
	}
}

func TestUpdate_AnswersBeatDefaults(t *testing.T) {
	rec, path := newReconciler(t, WithAnswers(answers.Map{
		"db_user":                  "alice",
		"db_mysql_ssl_client_cert": "/certs/client.pem",
	}))

	res, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cfg, err := source.NewFileStrategy(path).Load(false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg["db_user"] != "alice" {
		t.Errorf("db_user = %v, want answer value", cfg["db_user"])
	}
	// Lazy variables accept answers too, and count as new when filled.
	if cfg["db_mysql_ssl_client_cert"] != "/certs/client.pem" {
		t.Errorf("lazy answer = %v", cfg["db_mysql_ssl_client_cert"])
	}
	found := false
	for _, name := range res.NewVars {
		if name == "db_mysql_ssl_client_cert" {
			found = true
		}
	}
	if !found {
		t.Error("answered lazy variable missing from NewVars")
	}
}

func TestUpdate_LazyAbsentNotReported(t *testing.T) {
	rec, path := newReconciler(t)
	res, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range res.NewVars {
		if v, _ := schema.Lookup(name); v.Lazy {
			t.Errorf("unfilled lazy variable %s reported as new", name)
		}
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "db_mysql_ssl_client_cert") {
		t.Error("unfilled lazy variable written to file")
	}
}

func TestUpdate_EnvSourcedModeRejected(t *testing.T) {
	rec, _ := newReconciler(t, WithEnvSourcedCheck(func() bool { return true }))
	_, err := rec.Update(UpdateOptions{})
	if !errors.Is(err, ErrEnvSourced) {
		t.Fatalf("error = %v, want ErrEnvSourced", err)
	}
}

func TestUpdate_InvalidatesCaches(t *testing.T) {
	reg := notify.NewRegistry()
	var invalidations int
	reg.Subscribe(notify.InvalidatorFunc(func() { invalidations++ }))

	rec, _ := newReconciler(t, WithInvalidators(reg))
	if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
		t.Fatal(err)
	}
	if invalidations != 1 {
		t.Errorf("invalidations = %d, want 1", invalidations)
	}
}

func TestUpdate_LoadErrorPropagates(t *testing.T) {
	rec, path := newReconciler(t)
	if err := os.WriteFile(path, []byte("db_driver = "), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := rec.Update(UpdateOptions{AcceptDefaults: true})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
}

func TestLoad_EnvSourcedBypassesFile(t *testing.T) {
	rec, path := newReconciler(t, WithEnvSourcedCheck(func() bool { return true }))
	// A file that would fail evaluation proves it is never touched.
	if err := os.WriteFile(path, []byte("broken = "), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := rec.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg["db_driver"] != "mysql" {
		t.Errorf("db_driver = %v, want default", cfg["db_driver"])
	}
	if _, ok := cfg[schema.ParamOverride]; !ok {
		t.Error("param_override missing from env-sourced state")
	}
}

func TestLoad_FileMode(t *testing.T) {
	rec, path := newReconciler(t)
	if err := os.WriteFile(path, []byte("db_driver = \"pg\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := rec.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg["db_driver"] != "pg" {
		t.Errorf("db_driver = %v", cfg["db_driver"])
	}
}

func TestUpdate_NewSchemaVariableDetected(t *testing.T) {
	rec, path := newReconciler(t)
	if _, err := rec.Update(UpdateOptions{AcceptDefaults: true}); err != nil {
		t.Fatal(err)
	}

	// Simulate an older file missing one schema variable.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "index_html") {
			continue
		}
		kept = append(kept, line)
	}
	if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := rec.Update(UpdateOptions{})
	var review *ReviewRequiredError
	if !errors.As(err, &review) {
		t.Fatalf("error = %v, want review halt", err)
	}
	if len(res.NewVars) != 1 || res.NewVars[0] != "index_html" {
		t.Errorf("NewVars = %v, want [index_html]", res.NewVars)
	}
}
