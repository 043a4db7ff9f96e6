// File: cmd/mlctl/status.go
// Brief: CLI command wiring and implementation for 'status'.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/example/mlctl/internal/featureflags"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type statusReport struct {
	Root          string `json:"root,omitempty" yaml:"root,omitempty"`
	Project       string `json:"project,omitempty" yaml:"project,omitempty"`
	ProjectSource string `json:"projectSource" yaml:"projectSource"`
	Stack         string `json:"stack" yaml:"stack"`
	StackSource   string `json:"stackSource" yaml:"stackSource"`
	GlobalPath    string `json:"globalSettingsPath" yaml:"globalSettingsPath"`
	LocalPath     string `json:"localSettingsPath,omitempty" yaml:"localSettingsPath,omitempty"`

	Layers *statusLayers `json:"layers,omitempty" yaml:"layers,omitempty"`
}

type statusLayers struct {
	LocalProject  string `json:"localProject,omitempty" yaml:"localProject,omitempty"`
	LocalStack    string `json:"localStack,omitempty" yaml:"localStack,omitempty"`
	GlobalProject string `json:"globalProject,omitempty" yaml:"globalProject,omitempty"`
	GlobalStack   string `json:"globalStack" yaml:"globalStack"`
}

func newStatusCommand(directory *string, logLevel *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resolved active configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir(directory)
			if err != nil {
				return err
			}
			c, _, err := newFacade(logLevel)
			if err != nil {
				return err
			}
			res, err := c.Resolve(cwd)
			if err != nil {
				return err
			}

			report := statusReport{
				Root:          res.Root,
				Project:       res.ProjectName,
				ProjectSource: string(res.ProjectSource),
				Stack:         res.StackName,
				StackSource:   string(res.StackSource),
				GlobalPath:    c.GlobalSettingsPath(),
			}
			if res.Root != "" {
				report.LocalPath = c.LocalSettingsPath(res.Root)
			}
			if featureflags.FromContext(cmd.Context()).Enabled(featureflags.FeatureStatusLayers) {
				report.Layers = &statusLayers{
					LocalProject:  res.Local.ActiveProjectName,
					LocalStack:    res.Local.ActiveStackName,
					GlobalProject: res.Global.DefaultProjectName,
					GlobalStack:   res.Global.DefaultStackName,
				}
			}

			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "table":
				return printStatusTable(cmd, report)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "yaml", "yml":
				b, err := yaml.Marshal(report)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			default:
				return fmt.Errorf("unsupported --output %q (expected table, json, or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, or yaml")
	return cmd
}

func printStatusTable(cmd *cobra.Command, report statusReport) error {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSOURCE")
	project := report.Project
	if project == "" {
		project = "-"
	}
	fmt.Fprintf(tw, "project\t%s\t%s\n", project, report.ProjectSource)
	fmt.Fprintf(tw, "stack\t%s\t%s\n", report.Stack, report.StackSource)
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.Root != "" {
		fmt.Fprintf(out, "\nRepository root: %s\n", report.Root)
		fmt.Fprintf(out, "Local settings:  %s\n", report.LocalPath)
	} else {
		fmt.Fprintf(out, "\nNo repository root found (global settings only)\n")
	}
	fmt.Fprintf(out, "Global settings: %s\n", report.GlobalPath)
	if report.Layers != nil {
		fmt.Fprintf(out, "\nLayers:\n")
		fmt.Fprintf(out, "  local:  project=%q stack=%q\n", report.Layers.LocalProject, report.Layers.LocalStack)
		fmt.Fprintf(out, "  global: project=%q stack=%q\n", report.Layers.GlobalProject, report.Layers.GlobalStack)
	}
	return nil
}
