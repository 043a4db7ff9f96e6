// Package reporoot discovers the mlctl repository root that scopes local
// configuration overrides. A directory is a repository root when it contains
// the .mlctl marker subdirectory. Discovery is read-only; the filesystem is
// passed explicitly so tests can run against an in-memory one.
package reporoot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MarkerDirName is the subdirectory that marks a repository root.
const MarkerDirName = ".mlctl"

// OverrideEnv names an absolute repository root directly, bypassing the
// upward search. The named directory must contain the marker subdirectory.
const OverrideEnv = "MLCTL_REPOSITORY_PATH"

// ErrInvalidOverridePath reports that MLCTL_REPOSITORY_PATH points at a
// directory that is not an initialized repository root.
var ErrInvalidOverridePath = errors.New("repository path override is not an initialized repository")

// IsRepositoryRoot reports whether dir contains the marker subdirectory.
func IsRepositoryRoot(fsys afero.Fs, dir string) bool {
	if strings.TrimSpace(dir) == "" {
		return false
	}
	fi, err := fsys.Stat(filepath.Join(dir, MarkerDirName))
	return err == nil && fi.IsDir()
}

// Locate walks upward from start looking for the marker subdirectory and
// returns the first directory that carries it, or "" when the filesystem root
// is reached without a match. Bounded by path depth; no side effects.
func Locate(fsys afero.Fs, start string) string {
	start = strings.TrimSpace(start)
	if start == "" {
		return ""
	}
	if fi, err := fsys.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}
	current := start
	for {
		if IsRepositoryRoot(fsys, current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// LocateWithOverride resolves the active repository root for start, honoring
// an explicit override path when one is given. An override must name an
// existing initialized repository; a bad override fails the whole resolution
// rather than falling back to the upward search.
func LocateWithOverride(fsys afero.Fs, start, override string) (string, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return Locate(fsys, start), nil
	}
	fi, err := fsys.Stat(override)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrInvalidOverridePath, override)
		}
		return "", fmt.Errorf("stat repository override %s: %w", override, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidOverridePath, override)
	}
	if !IsRepositoryRoot(fsys, override) {
		return "", fmt.Errorf("%w: %s has no %s directory", ErrInvalidOverridePath, override, MarkerDirName)
	}
	return override, nil
}
