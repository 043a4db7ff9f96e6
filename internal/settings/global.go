package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GlobalDirEnv overrides the directory holding the global settings file.
const GlobalDirEnv = "MLCTL_GLOBAL_CONFIG_DIR"

// GlobalFileName is the global settings file name.
const GlobalFileName = "config.yaml"

// DefaultGlobalPath returns the machine-wide settings file location:
// $MLCTL_GLOBAL_CONFIG_DIR, then $XDG_CONFIG_HOME/mlctl, then ~/.config/mlctl.
func DefaultGlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(GlobalDirEnv)); dir != "" {
		return filepath.Join(dir, GlobalFileName), nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "mlctl", GlobalFileName), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".config", "mlctl", GlobalFileName), nil
}

// GlobalStore reads and writes the machine-wide settings record. Reads always
// succeed when the file is absent: defaults are materialized and persisted on
// first use. I/O failures are fatal to the caller since no sensible fallback
// exists once defaults cannot be established.
type GlobalStore struct {
	fsys   afero.Fs
	path   string
	logger *zap.Logger
}

// NewGlobalStore returns a store persisting to path on fsys.
func NewGlobalStore(fsys afero.Fs, path string, logger *zap.Logger) *GlobalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GlobalStore{fsys: fsys, path: path, logger: logger}
}

// Path returns the persisted file location.
func (s *GlobalStore) Path() string {
	return s.path
}

// Read loads the global record, creating it with defaults on first use. An
// empty default stack name in a hand-edited file is normalized back to the
// built-in fallback.
func (s *GlobalStore) Read() (Global, error) {
	raw, err := afero.ReadFile(s.fsys, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			rec := Global{DefaultStackName: DefaultStackName}
			if err := s.Write(rec); err != nil {
				return Global{}, err
			}
			s.logger.Debug("created global settings with defaults", zap.String("path", s.path))
			return rec, nil
		}
		return Global{}, errors.Wrapf(err, "read global settings %s", s.path)
	}
	var rec Global
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return Global{}, fmt.Errorf("parse global settings %s: %w", s.path, err)
	}
	if strings.TrimSpace(rec.DefaultStackName) == "" {
		rec.DefaultStackName = DefaultStackName
	}
	return rec, nil
}

// Write atomically replaces the global record. No cross-process lock is
// taken; concurrent invocations race with last-writer-wins semantics.
func (s *GlobalStore) Write(rec Global) error {
	if strings.TrimSpace(rec.DefaultStackName) == "" {
		rec.DefaultStackName = DefaultStackName
	}
	return writeYAMLAtomic(s.fsys, s.path, rec)
}
