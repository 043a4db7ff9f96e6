package resolver

import (
	"errors"
	"testing"

	"github.com/example/mlctl/internal/reporoot"
	"github.com/example/mlctl/internal/settings"
	"github.com/spf13/afero"
)

func newTestResolver(t *testing.T) (*Resolver, *settings.LocalStore, *settings.GlobalStore, afero.Fs) {
	t.Helper()
	t.Setenv(reporoot.OverrideEnv, "")
	fsys := afero.NewMemMapFs()
	local := settings.NewLocalStore(fsys, nil)
	global := settings.NewGlobalStore(fsys, "/home/user/.config/mlctl/config.yaml", nil)
	return New(fsys, local, global, nil), local, global, fsys
}

func initRepo(t *testing.T, local *settings.LocalStore, dir string) {
	t.Helper()
	if _, err := local.Init(dir, settings.InitOptions{}); err != nil {
		t.Fatalf("init %s: %v", dir, err)
	}
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	r, local, global, _ := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repo")
	if err := local.Write("/repo", settings.Local{}); err != nil {
		t.Fatalf("clear local: %v", err)
	}

	res, err := r.Resolve("/repo/sub")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.StackName != "g" || res.StackSource != SourceGlobal {
		t.Fatalf("stack=%q source=%q, want g/global", res.StackName, res.StackSource)
	}
	if res.Root != "/repo" {
		t.Fatalf("root=%q, want /repo", res.Root)
	}
}

func TestSetLocalActiveOverridesInsideRootOnly(t *testing.T) {
	r, local, global, fsys := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repo")
	if err := local.Write("/repo", settings.Local{}); err != nil {
		t.Fatalf("clear local: %v", err)
	}
	if err := fsys.MkdirAll("/outside", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := r.SetLocalActive("/repo/sub", FieldStackName, "l"); err != nil {
		t.Fatalf("set local: %v", err)
	}
	inside, err := r.Resolve("/repo/sub")
	if err != nil {
		t.Fatalf("resolve inside: %v", err)
	}
	if inside.StackName != "l" || inside.StackSource != SourceLocal {
		t.Fatalf("inside stack=%q source=%q, want l/local", inside.StackName, inside.StackSource)
	}
	outside, err := r.Resolve("/outside")
	if err != nil {
		t.Fatalf("resolve outside: %v", err)
	}
	if outside.StackName != "g" || outside.StackSource != SourceGlobal {
		t.Fatalf("outside stack=%q source=%q, want g/global", outside.StackName, outside.StackSource)
	}
}

func TestFieldIndependence(t *testing.T) {
	r, local, global, _ := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultProjectName: "global-proj", DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repo")
	if err := local.Write("/repo", settings.Local{}); err != nil {
		t.Fatalf("clear local: %v", err)
	}

	if err := r.SetLocalActive("/repo", FieldStackName, "gpu"); err != nil {
		t.Fatalf("set stack: %v", err)
	}
	res, err := r.Resolve("/repo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.StackName != "gpu" || res.StackSource != SourceLocal {
		t.Fatalf("stack=%q source=%q, want gpu/local", res.StackName, res.StackSource)
	}
	if res.ProjectName != "global-proj" || res.ProjectSource != SourceGlobal {
		t.Fatalf("project must keep deferring to global, got %q from %q", res.ProjectName, res.ProjectSource)
	}
}

func TestSetLocalActiveWithoutRootFails(t *testing.T) {
	r, _, _, fsys := newTestResolver(t)
	if err := fsys.MkdirAll("/nowhere", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := r.SetLocalActive("/nowhere", FieldStackName, "x")
	if !errors.Is(err, ErrNoRepositoryRoot) {
		t.Fatalf("expected ErrNoRepositoryRoot, got %v", err)
	}
}

func TestEnvironmentOverrideSelectsRepository(t *testing.T) {
	r, local, global, fsys := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repos/alpha")
	if err := local.Write("/repos/alpha", settings.Local{ActiveStackName: "alpha-stack"}); err != nil {
		t.Fatalf("write local: %v", err)
	}
	if err := fsys.MkdirAll("/unrelated", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	t.Setenv(reporoot.OverrideEnv, "/repos/alpha")
	res, err := r.Resolve("/unrelated")
	if err != nil {
		t.Fatalf("resolve with override: %v", err)
	}
	if res.StackName != "alpha-stack" || res.Root != "/repos/alpha" {
		t.Fatalf("override not honored: stack=%q root=%q", res.StackName, res.Root)
	}

	t.Setenv(reporoot.OverrideEnv, "/unrelated")
	if _, err := r.Resolve("/unrelated"); !errors.Is(err, reporoot.ErrInvalidOverridePath) {
		t.Fatalf("expected ErrInvalidOverridePath, got %v", err)
	}
}

func TestOverrideReadFreshDespiteCache(t *testing.T) {
	r, local, global, _ := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repos/alpha")
	if err := local.Write("/repos/alpha", settings.Local{ActiveStackName: "alpha-stack"}); err != nil {
		t.Fatalf("write local: %v", err)
	}
	initRepo(t, local, "/repos/beta")
	if err := local.Write("/repos/beta", settings.Local{ActiveStackName: "beta-stack"}); err != nil {
		t.Fatalf("write local: %v", err)
	}

	t.Setenv(reporoot.OverrideEnv, "/repos/alpha")
	first, err := r.Resolve("/repos/alpha")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.StackName != "alpha-stack" {
		t.Fatalf("stack=%q, want alpha-stack", first.StackName)
	}

	// Same cwd, changed override: the cached entry must not be served.
	t.Setenv(reporoot.OverrideEnv, "/repos/beta")
	second, err := r.Resolve("/repos/alpha")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if second.StackName != "beta-stack" || second.Root != "/repos/beta" {
		t.Fatalf("stale override: stack=%q root=%q", second.StackName, second.Root)
	}
}

func TestMutationInvalidatesCache(t *testing.T) {
	r, local, global, _ := newTestResolver(t)
	if err := global.Write(settings.Global{DefaultStackName: "g"}); err != nil {
		t.Fatalf("write global: %v", err)
	}
	initRepo(t, local, "/repo")
	if err := local.Write("/repo", settings.Local{}); err != nil {
		t.Fatalf("clear local: %v", err)
	}

	before, err := r.Resolve("/repo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if before.StackName != "g" {
		t.Fatalf("stack=%q, want g", before.StackName)
	}
	if err := r.SetGlobalActive(FieldStackName, "g2"); err != nil {
		t.Fatalf("set global: %v", err)
	}
	after, err := r.Resolve("/repo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if after.StackName != "g2" {
		t.Fatalf("cache not invalidated, stack=%q", after.StackName)
	}
}

func TestBuiltinFallbackWhenGlobalNeverInitialized(t *testing.T) {
	r, _, _, fsys := newTestResolver(t)
	if err := fsys.MkdirAll("/anywhere", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	res, err := r.Resolve("/anywhere")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.StackName != settings.DefaultStackName {
		t.Fatalf("stack=%q, want builtin %q", res.StackName, settings.DefaultStackName)
	}
	// First read materializes the global record, so the source reads global.
	if res.StackSource != SourceGlobal {
		t.Fatalf("source=%q, want global", res.StackSource)
	}
	if res.ProjectSource != SourceUnset || res.ProjectName != "" {
		t.Fatalf("project should be unset, got %q from %q", res.ProjectName, res.ProjectSource)
	}
}
