// File: cmd/mlctl/app.go
// Brief: Shared wiring for mlctl commands: facade construction and working-directory handling.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/example/mlctl/internal/client"
	"github.com/example/mlctl/internal/logging"
	"go.uber.org/zap"
)

// workingDir returns the directory the command should resolve from: the -C
// flag when given, otherwise the process working directory, absolutized.
func workingDir(directory *string) (string, error) {
	dir := ""
	if directory != nil {
		dir = strings.TrimSpace(*directory)
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return cwd, nil
	}
	return filepath.Abs(dir)
}

// newFacade builds the client facade every command goes through, with a
// logger at the requested level feeding the stores' warning side channel.
func newFacade(logLevel *string) (*client.Client, *zap.Logger, error) {
	level := "warn"
	if logLevel != nil && strings.TrimSpace(*logLevel) != "" {
		level = strings.TrimSpace(*logLevel)
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(client.Options{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}
