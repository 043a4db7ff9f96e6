package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/mlctl/internal/reporoot"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrAlreadyInitialized reports that init was asked to create a marker
// directory that already exists and --force was not given.
var ErrAlreadyInitialized = errors.New("repository already initialized")

// LocalStore reads and writes the per-repository settings record that lives
// inside the marker directory.
type LocalStore struct {
	fsys   afero.Fs
	logger *zap.Logger
}

// NewLocalStore returns a store bound to the given filesystem. A nil logger
// disables warning output.
func NewLocalStore(fsys afero.Fs, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{fsys: fsys, logger: logger}
}

// Path returns the settings file location for a repository root.
func (s *LocalStore) Path(root string) string {
	return filepath.Join(root, reporoot.MarkerDirName, LocalFileName)
}

// Read loads the record for root. A missing or unreadable file yields the
// zero record; malformed contents also yield the zero record and are reported
// as a warning, never as an error.
func (s *LocalStore) Read(root string) Local {
	path := s.Path(root)
	raw, err := afero.ReadFile(s.fsys, path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unreadable local settings, treating as empty",
				zap.String("path", path), zap.Error(err))
		}
		return Local{}
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Local{}
	}
	var rec Local
	if err := yaml.Unmarshal([]byte(trimmed), &rec); err != nil {
		s.logger.Warn("malformed local settings, treating as empty",
			zap.String("path", path), zap.Error(err))
		return Local{}
	}
	return rec
}

// Write atomically replaces the record for root.
func (s *LocalStore) Write(root string, rec Local) error {
	return writeYAMLAtomic(s.fsys, s.Path(root), rec)
}

// InitOptions controls Init.
type InitOptions struct {
	// Force recreates the record even when the marker directory exists.
	Force bool
	// StackName seeds the initial active stack; empty means DefaultStackName.
	StackName string
}

// Init creates the marker directory under dir and seeds a default record.
// Without Force, an existing marker directory fails with
// ErrAlreadyInitialized and the existing record is left untouched.
func (s *LocalStore) Init(dir string, opts InitOptions) (Local, error) {
	if reporoot.IsRepositoryRoot(s.fsys, dir) && !opts.Force {
		return Local{}, fmt.Errorf("%w: %s", ErrAlreadyInitialized, dir)
	}
	if err := s.fsys.MkdirAll(filepath.Join(dir, reporoot.MarkerDirName), 0o755); err != nil {
		return Local{}, fmt.Errorf("create %s directory: %w", reporoot.MarkerDirName, err)
	}
	stack := strings.TrimSpace(opts.StackName)
	if stack == "" {
		stack = DefaultStackName
	}
	rec := Local{ActiveStackName: stack}
	if err := s.Write(dir, rec); err != nil {
		return Local{}, err
	}
	return rec, nil
}
