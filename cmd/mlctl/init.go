// File: cmd/mlctl/init.go
// Brief: CLI command wiring and implementation for 'init'.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/mlctl/internal/settings"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type initOptions struct {
	force       bool
	showDiff    bool
	interactive bool
	stack       string
	output      string
}

func newInitCommand(directory *string, logLevel *string) *cobra.Command {
	opts := initOptions{output: "text"}

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Mark a directory as a repository root with local settings",
		Long: strings.TrimSpace(`
Creates the .mlctl marker directory and seeds its settings file. From then on
every mlctl invocation inside this tree resolves the local selection before
the machine-wide defaults.`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showDiff && !opts.force {
				return fmt.Errorf("--show-diff requires --force")
			}
			if opts.interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("--interactive requires a TTY")
			}
			opts.output = strings.ToLower(strings.TrimSpace(opts.output))
			if opts.output == "" {
				opts.output = "text"
			}
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported --output %q (expected text or json)", opts.output)
			}

			var dir string
			var err error
			if len(args) == 1 {
				dir, err = filepath.Abs(args[0])
			} else {
				dir, err = workingDir(directory)
			}
			if err != nil {
				return err
			}

			c, _, err := newFacade(logLevel)
			if err != nil {
				return err
			}

			if opts.interactive {
				name, err := promptStackName(cmd)
				if err != nil {
					return err
				}
				opts.stack = name
			}

			previous := readRawLocalSettings(c.LocalSettingsPath(dir))
			result, err := c.InitRepository(dir, settings.InitOptions{
				Force:     opts.force,
				StackName: opts.stack,
			})
			if err != nil {
				return err
			}

			if opts.output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Root         string `json:"root"`
					SettingsPath string `json:"settingsPath"`
					ActiveStack  string `json:"activeStack"`
				}{
					Root:         result.Root,
					SettingsPath: result.SettingsPath,
					ActiveStack:  result.Settings.ActiveStackName,
				})
			}

			out := cmd.OutOrStdout()
			if opts.showDiff && previous != "" {
				if err := printSettingsDiff(out, result.SettingsPath, previous); err != nil {
					return err
				}
			}
			bold := color.New(color.Bold)
			fmt.Fprintf(out, "Initialized repository at %s\n", bold.Sprint(result.Root))
			fmt.Fprintf(out, "Local settings: %s (active stack %q)\n", result.SettingsPath, result.Settings.ActiveStackName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "Reinitialize even when a repository already exists here (resets local settings)")
	cmd.Flags().BoolVar(&opts.showDiff, "show-diff", false, "With --force, print a unified diff of the replaced settings file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the initial stack name")
	cmd.Flags().StringVar(&opts.stack, "stack", "", "Initial active stack name (default \"default\")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	cmd.Example = `  # Initialize the current directory
  mlctl init

  # Initialize another tree with a named stack
  mlctl init ~/work/churn --stack gpu-training`
	return cmd
}

func promptStackName(cmd *cobra.Command) (string, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Initial stack name [%s]: ", settings.DefaultStackName)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read stack name: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func readRawLocalSettings(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(raw)
}

func printSettingsDiff(out io.Writer, path, previous string) error {
	current := readRawLocalSettings(path)
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: path + " (before)",
		ToFile:   path + " (after)",
		Context:  2,
	})
	if err != nil {
		return fmt.Errorf("compute settings diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return nil
	}
	_, err = out.Write([]byte(diff))
	return err
}
