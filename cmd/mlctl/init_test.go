// File: cmd/mlctl/init_test.go
// Brief: Tests for the 'init' command.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/mlctl/internal/reporoot"
	"github.com/example/mlctl/internal/settings"
	"github.com/spf13/cobra"
)

func testEnv(t *testing.T) {
	t.Helper()
	t.Setenv(settings.GlobalDirEnv, t.TempDir())
	t.Setenv(reporoot.OverrideEnv, "")
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitCreatesRepository(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	level := "error"
	cmd := newInitCommand(nil, &level)

	out, err := runCommand(t, cmd, dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Initialized repository") {
		t.Fatalf("unexpected output: %s", out)
	}
	marker := filepath.Join(dir, reporoot.MarkerDirName)
	if fi, err := os.Stat(marker); err != nil || !fi.IsDir() {
		t.Fatalf("marker directory missing: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(marker, settings.LocalFileName))
	if err != nil {
		t.Fatalf("settings file missing: %v", err)
	}
	if !strings.Contains(string(raw), "active_stack_name: default") {
		t.Fatalf("unexpected settings contents: %s", raw)
	}
}

func TestInitTwiceFailsWithoutForce(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	level := "error"

	if _, err := runCommand(t, newInitCommand(nil, &level), dir); err != nil {
		t.Fatalf("first init: %v", err)
	}
	_, err := runCommand(t, newInitCommand(nil, &level), dir)
	if err == nil || !strings.Contains(err.Error(), "already initialized") {
		t.Fatalf("expected already-initialized error, got %v", err)
	}
}

func TestInitForceWithDiff(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	level := "error"

	if _, err := runCommand(t, newInitCommand(nil, &level), dir, "--stack", "gpu"); err != nil {
		t.Fatalf("first init: %v", err)
	}
	out, err := runCommand(t, newInitCommand(nil, &level), dir, "--force", "--show-diff")
	if err != nil {
		t.Fatalf("force init: %v", err)
	}
	if !strings.Contains(out, "-active_stack_name: gpu") || !strings.Contains(out, "+active_stack_name: default") {
		t.Fatalf("expected unified diff of the settings change, got: %s", out)
	}
}

func TestInitJSONOutput(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	level := "error"

	out, err := runCommand(t, newInitCommand(nil, &level), dir, "--output", "json", "--stack", "batch")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	var payload struct {
		Root        string `json:"root"`
		ActiveStack string `json:"activeStack"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json output %q: %v", out, err)
	}
	if payload.Root != dir || payload.ActiveStack != "batch" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestInitShowDiffRequiresForce(t *testing.T) {
	testEnv(t)
	level := "error"
	_, err := runCommand(t, newInitCommand(nil, &level), t.TempDir(), "--show-diff")
	if err == nil || !strings.Contains(err.Error(), "--show-diff requires --force") {
		t.Fatalf("expected flag validation error, got %v", err)
	}
}
