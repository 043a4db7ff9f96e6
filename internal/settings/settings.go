// Package settings persists the global and per-repository configuration
// records that the resolver layers into one active configuration. Records are
// small YAML documents; optional fields left empty mean "defer to the layer
// below". Writes replace the whole file atomically (temp file + rename).
// There is no cross-process locking: last writer wins.
package settings

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultStackName is the built-in fallback used when neither a local nor a
// global record names an active stack.
const DefaultStackName = "default"

// LocalFileName is the settings file inside the marker directory.
const LocalFileName = "config.yaml"

// Local is the per-repository record. Empty fields defer to the global record.
type Local struct {
	ActiveProjectName string `yaml:"active_project_name,omitempty"`
	ActiveStackName   string `yaml:"active_stack_name,omitempty"`
}

// Global is the machine-wide record. DefaultStackName is always non-empty
// once the record has been read through the store.
type Global struct {
	DefaultProjectName string `yaml:"default_project_name,omitempty"`
	DefaultStackName   string `yaml:"default_stack_name"`
}

func writeYAMLAtomic(fsys afero.Fs, path string, doc any) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal settings")
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "stage settings file %s", tmp)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, "replace settings file %s", path)
	}
	return nil
}
