// Package client is the single entry point the CLI (and any embedding code)
// uses to observe or mutate the active configuration. It hides which layer a
// value came from or which layer a mutation landed in.
package client

import (
	"fmt"
	"strings"

	"github.com/example/mlctl/internal/resolver"
	"github.com/example/mlctl/internal/settings"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Scope selects which settings layer a mutation targets.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// ParseScope validates a user-supplied scope string.
func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "local":
		return ScopeLocal, nil
	case "global":
		return ScopeGlobal, nil
	default:
		return "", fmt.Errorf("unknown scope %q (expected local or global)", raw)
	}
}

// Options configures a Client. Zero values select the real filesystem, the
// default global settings path, and a no-op logger.
type Options struct {
	Fs         afero.Fs
	GlobalPath string
	Logger     *zap.Logger
}

// Client composes the locator, stores, and resolver behind a small facade.
type Client struct {
	fsys     afero.Fs
	local    *settings.LocalStore
	global   *settings.GlobalStore
	resolver *resolver.Resolver
}

// New builds a Client from Options.
func New(opts Options) (*Client, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	globalPath := opts.GlobalPath
	if globalPath == "" {
		p, err := settings.DefaultGlobalPath()
		if err != nil {
			return nil, err
		}
		globalPath = p
	}
	local := settings.NewLocalStore(fsys, opts.Logger)
	global := settings.NewGlobalStore(fsys, globalPath, opts.Logger)
	return &Client{
		fsys:     fsys,
		local:    local,
		global:   global,
		resolver: resolver.New(fsys, local, global, opts.Logger),
	}, nil
}

// Resolve returns the full active configuration as seen from cwd.
func (c *Client) Resolve(cwd string) (resolver.Resolved, error) {
	return c.resolver.Resolve(cwd)
}

// ActiveStackName returns the effective active stack name for cwd.
func (c *Client) ActiveStackName(cwd string) (string, error) {
	res, err := c.resolver.Resolve(cwd)
	if err != nil {
		return "", err
	}
	return res.StackName, nil
}

// ActiveProjectName returns the effective active project name for cwd, ""
// when no layer names one.
func (c *Client) ActiveProjectName(cwd string) (string, error) {
	res, err := c.resolver.Resolve(cwd)
	if err != nil {
		return "", err
	}
	return res.ProjectName, nil
}

// SetActiveStack records name as the active stack in the chosen scope.
func (c *Client) SetActiveStack(cwd, name string, scope Scope) error {
	return c.set(cwd, resolver.FieldStackName, name, scope)
}

// SetActiveProject records name as the active project in the chosen scope.
func (c *Client) SetActiveProject(cwd, name string, scope Scope) error {
	return c.set(cwd, resolver.FieldProjectName, name, scope)
}

func (c *Client) set(cwd string, field resolver.Field, value string, scope Scope) error {
	switch scope {
	case ScopeGlobal:
		return c.resolver.SetGlobalActive(field, value)
	case ScopeLocal:
		return c.resolver.SetLocalActive(cwd, field, value)
	default:
		return fmt.Errorf("unknown scope %q", scope)
	}
}

// InitResult describes what InitRepository created.
type InitResult struct {
	Root         string
	SettingsPath string
	Settings     settings.Local
}

// InitRepository creates a repository root at dir. See settings.InitOptions
// for force and seed-stack behavior.
func (c *Client) InitRepository(dir string, opts settings.InitOptions) (InitResult, error) {
	rec, err := c.local.Init(dir, opts)
	if err != nil {
		return InitResult{}, err
	}
	return InitResult{
		Root:         dir,
		SettingsPath: c.local.Path(dir),
		Settings:     rec,
	}, nil
}

// LocalSettingsPath returns where the local record for root lives.
func (c *Client) LocalSettingsPath(root string) string {
	return c.local.Path(root)
}

// LocalSettings reads the raw local record for root.
func (c *Client) LocalSettings(root string) settings.Local {
	return c.local.Read(root)
}

// GlobalSettingsPath returns where the global record lives.
func (c *Client) GlobalSettingsPath() string {
	return c.global.Path()
}

// Root locates the repository root for cwd, honoring the environment
// override; "" when outside any repository.
func (c *Client) Root(cwd string) (string, error) {
	return c.resolver.Root(cwd)
}
