// Package resolver merges the per-repository and global settings records,
// plus the repository-path environment override, into one effective active
// configuration. Each field resolves independently: a repository may pin the
// stack while deferring the project to the global record.
//
// Precedence, highest first:
//  1. MLCTL_REPOSITORY_PATH selects which repository's record is consulted
//     (it never supplies a value directly).
//  2. The located repository's record, per non-empty field.
//  3. The global record.
//  4. The built-in fallback stack name.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/example/mlctl/internal/reporoot"
	"github.com/example/mlctl/internal/settings"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNoRepositoryRoot reports a local-scope mutation with no repository root
// in reach. Callers should init a repository or fall back to global scope.
var ErrNoRepositoryRoot = errors.New("no repository root found")

// Field identifies one independently resolved setting.
type Field string

const (
	FieldProjectName Field = "project"
	FieldStackName   Field = "stack"
)

// Source records which layer supplied a resolved field.
type Source string

const (
	SourceLocal   Source = "local"
	SourceGlobal  Source = "global"
	SourceBuiltin Source = "builtin"
	SourceUnset   Source = "unset"
)

// Resolved is the effective active configuration for one invocation. It is
// never persisted; it is recomputed (or served from the in-process cache)
// on every call.
type Resolved struct {
	ProjectName   string
	StackName     string
	ProjectSource Source
	StackSource   Source
	// Root is the repository root the local layer came from, "" when the
	// invocation happened outside any repository.
	Root string
	// Local and Global are the raw layer records the value was derived from,
	// kept for provenance display.
	Local  settings.Local
	Global settings.Global
}

type cacheKey struct {
	cwd      string
	override string
}

// Resolver composes the locator and both stores. It holds no persistent
// state of its own beyond a per-process cache.
type Resolver struct {
	fsys   afero.Fs
	local  *settings.LocalStore
	global *settings.GlobalStore
	logger *zap.Logger

	mu    sync.Mutex
	cache map[cacheKey]Resolved
}

// New returns a resolver over the given filesystem and stores.
func New(fsys afero.Fs, local *settings.LocalStore, global *settings.GlobalStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fsys:   fsys,
		local:  local,
		global: global,
		logger: logger,
		cache:  make(map[cacheKey]Resolved),
	}
}

// overrideValue re-reads the environment on every call so a changed override
// never serves a stale root from the cache.
func overrideValue() string {
	return strings.TrimSpace(os.Getenv(reporoot.OverrideEnv))
}

// Resolve computes the active configuration as seen from cwd. Results are
// cached per (cwd, override) pair until the next mutation through this
// resolver.
func (r *Resolver) Resolve(cwd string) (Resolved, error) {
	key := cacheKey{cwd: cwd, override: overrideValue()}
	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	res, err := r.resolve(cwd, key.override)
	if err != nil {
		return Resolved{}, err
	}
	r.mu.Lock()
	r.cache[key] = res
	r.mu.Unlock()
	return res, nil
}

func (r *Resolver) resolve(cwd, override string) (Resolved, error) {
	root, err := reporoot.LocateWithOverride(r.fsys, cwd, override)
	if err != nil {
		return Resolved{}, err
	}

	global, err := r.global.Read()
	if err != nil {
		return Resolved{}, err
	}
	var local settings.Local
	if root != "" {
		local = r.local.Read(root)
	}

	res := Resolved{Root: root, Local: local, Global: global}

	switch {
	case local.ActiveStackName != "":
		res.StackName, res.StackSource = local.ActiveStackName, SourceLocal
	case global.DefaultStackName != "":
		res.StackName, res.StackSource = global.DefaultStackName, SourceGlobal
	default:
		// Unreachable in practice: GlobalStore.Read guarantees a stack name.
		res.StackName, res.StackSource = settings.DefaultStackName, SourceBuiltin
	}

	switch {
	case local.ActiveProjectName != "":
		res.ProjectName, res.ProjectSource = local.ActiveProjectName, SourceLocal
	case global.DefaultProjectName != "":
		res.ProjectName, res.ProjectSource = global.DefaultProjectName, SourceGlobal
	default:
		res.ProjectSource = SourceUnset
	}

	r.logger.Debug("resolved active configuration",
		zap.String("cwd", cwd),
		zap.String("root", root),
		zap.String("stack", res.StackName),
		zap.String("stack_source", string(res.StackSource)),
		zap.String("project", res.ProjectName),
		zap.String("project_source", string(res.ProjectSource)))
	return res, nil
}

// Root locates the repository root for cwd, honoring the environment
// override, without reading any settings.
func (r *Resolver) Root(cwd string) (string, error) {
	return reporoot.LocateWithOverride(r.fsys, cwd, overrideValue())
}

// SetLocalActive writes one field into the record of the repository located
// from cwd. Fails with ErrNoRepositoryRoot when cwd is outside any
// repository. An empty value clears the field so it defers to global again.
func (r *Resolver) SetLocalActive(cwd string, field Field, value string) error {
	root, err := r.Root(cwd)
	if err != nil {
		return err
	}
	if root == "" {
		return fmt.Errorf("%w (searched upward from %s)", ErrNoRepositoryRoot, cwd)
	}
	rec := r.local.Read(root)
	switch field {
	case FieldProjectName:
		rec.ActiveProjectName = strings.TrimSpace(value)
	case FieldStackName:
		rec.ActiveStackName = strings.TrimSpace(value)
	default:
		return fmt.Errorf("unknown settings field %q", field)
	}
	if err := r.local.Write(root, rec); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// SetGlobalActive writes one field into the global record. Always available;
// no repository root required. An empty stack value resets to the built-in
// fallback, an empty project value clears the default project.
func (r *Resolver) SetGlobalActive(field Field, value string) error {
	rec, err := r.global.Read()
	if err != nil {
		return err
	}
	switch field {
	case FieldProjectName:
		rec.DefaultProjectName = strings.TrimSpace(value)
	case FieldStackName:
		rec.DefaultStackName = strings.TrimSpace(value)
	default:
		return fmt.Errorf("unknown settings field %q", field)
	}
	if err := r.global.Write(rec); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *Resolver) invalidate() {
	r.mu.Lock()
	r.cache = make(map[cacheKey]Resolved)
	r.mu.Unlock()
}
