// File: cmd/mlctl/selection.go
// Brief: Shared command builder for the 'stack' and 'project' selection commands.

package main

import (
	"fmt"

	"github.com/example/mlctl/internal/client"
	"github.com/example/mlctl/internal/resolver"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type selectionKind struct {
	// noun as it appears in command names and messages ("stack", "project").
	noun  string
	field resolver.Field
	short string
	value func(resolver.Resolved) (name string, source resolver.Source)
}

func newStackCommand(directory *string, logLevel *string) *cobra.Command {
	return newSelectionCommand(directory, logLevel, selectionKind{
		noun:  "stack",
		field: resolver.FieldStackName,
		short: "Show or change the active stack",
		value: func(res resolver.Resolved) (string, resolver.Source) {
			return res.StackName, res.StackSource
		},
	})
}

func newProjectCommand(directory *string, logLevel *string) *cobra.Command {
	return newSelectionCommand(directory, logLevel, selectionKind{
		noun:  "project",
		field: resolver.FieldProjectName,
		short: "Show or change the active project",
		value: func(res resolver.Resolved) (string, resolver.Source) {
			return res.ProjectName, res.ProjectSource
		},
	})
}

func newSelectionCommand(directory *string, logLevel *string, kind selectionKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.noun,
		Short: kind.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectionGet(cmd, directory, logLevel, kind)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: fmt.Sprintf("Print the active %s name", kind.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectionGet(cmd, directory, logLevel, kind)
		},
	}

	var global bool
	setCmd := &cobra.Command{
		Use:   "set NAME",
		Short: fmt.Sprintf("Select the active %s", kind.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectionSet(cmd, directory, logLevel, kind, args[0], global)
		},
	}
	setCmd.Flags().BoolVarP(&global, "global", "g", false, "Change the machine-wide default instead of this repository's override")

	var unsetGlobal bool
	unsetCmd := &cobra.Command{
		Use:   "unset",
		Short: fmt.Sprintf("Clear the %s selection so it defers to the layer below", kind.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectionSet(cmd, directory, logLevel, kind, "", unsetGlobal)
		},
	}
	unsetCmd.Flags().BoolVarP(&unsetGlobal, "global", "g", false, "Clear the machine-wide default instead of this repository's override")

	cmd.AddCommand(getCmd, setCmd, unsetCmd)
	return cmd
}

func runSelectionGet(cmd *cobra.Command, directory *string, logLevel *string, kind selectionKind) error {
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
	name, source := kind.value(res)
	if name == "" {
		return fmt.Errorf("no active %s is set (try 'mlctl %s set NAME')", kind.noun, kind.noun)
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	if source == resolver.SourceLocal {
		// Scripted callers read stdout only; provenance goes to stderr.
		fmt.Fprintf(cmd.ErrOrStderr(), "(local override from %s)\n", res.Root)
	}
	return nil
}

func runSelectionSet(cmd *cobra.Command, directory *string, logLevel *string, kind selectionKind, name string, global bool) error {
	cwd, err := workingDir(directory)
	if err != nil {
		return err
	}
	c, _, err := newFacade(logLevel)
	if err != nil {
		return err
	}
	scope := client.ScopeLocal
	if global {
		scope = client.ScopeGlobal
	}
	switch kind.field {
	case resolver.FieldStackName:
		err = c.SetActiveStack(cwd, name, scope)
	case resolver.FieldProjectName:
		err = c.SetActiveProject(cwd, name, scope)
	default:
		err = fmt.Errorf("unknown selection field %q", kind.field)
	}
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	if name == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared the %s %s selection\n", scope, kind.noun)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active %s set to %s (%s)\n", kind.noun, bold.Sprint(name), scope)
	return nil
}
