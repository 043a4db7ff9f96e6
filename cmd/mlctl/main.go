// main.go bootstraps mlctl: it builds the root Cobra command, wires profiling, and executes with signal-aware contexts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/example/mlctl/internal/featureflags"
	"github.com/example/mlctl/internal/reporoot"
	"github.com/example/mlctl/internal/resolver"
	"github.com/example/mlctl/internal/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stopProfile := setupProfiling()
	defer stopProfile()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var directory string
	logLevel := "warn"
	var featureFlagValues []string
	cmd := &cobra.Command{
		Use:           "mlctl",
		Short:         "Manage the active MLOps stack and project selection",
		Long: strings.TrimSpace(`
mlctl tracks which stack and project are "active" for your pipelines. A
machine-wide default can be overridden per working tree: 'mlctl init' marks a
directory as a repository root, and every invocation from inside that tree
sees the local selection instead of the global one.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags, err := featureflags.Resolve(featureFlagValues, featureflags.EnabledFromEnv(nil))
			if err != nil {
				return err
			}
			ctx := featureflags.ContextWithFlags(cmd.Context(), flags)
			cmd.Root().SetContext(ctx)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&directory, "directory", "C", "", "Run as if mlctl was started in this directory instead of the current one")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level for mlctl output (debug, info, warn, error)")
	cmd.PersistentFlags().StringSliceVar(&featureFlagValues, "feature", nil, "Enable experimental mlctl features (repeat or pass comma-separated names)")
	if err := cmd.PersistentFlags().MarkHidden("feature"); err != nil {
		cobra.CheckErr(err)
	}

	initCmd := newInitCommand(&directory, &logLevel)
	stackCmd := newStackCommand(&directory, &logLevel)
	projectCmd := newProjectCommand(&directory, &logLevel)
	statusCmd := newStatusCommand(&directory, &logLevel)
	envCmd := newEnvCommand()
	cmd.AddCommand(
		initCmd,
		stackCmd,
		projectCmd,
		statusCmd,
		envCmd,
		newCompletionCommand(cmd),
		newVersionCommand(),
	)
	cmd.Example = `  # Mark the current directory as a repository root
  mlctl init

  # Pin the gpu-training stack for this tree only
  mlctl stack set gpu-training

  # Change the machine-wide default instead
  mlctl stack set cpu-batch --global

  # See what is active here and where each value came from
  mlctl status`
	bindViper(cmd, initCmd, stackCmd, projectCmd, statusCmd, envCmd)
	return cmd
}

func bindViper(commands ...*cobra.Command) {
	if len(commands) == 0 {
		return
	}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("MLCTL")
	v.AutomaticEnv()
	configFile := os.Getenv("MLCTL_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	cobra.OnInitialize(func() {
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
			if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if configFile != "" {
			if err := v.ReadInConfig(); err != nil {
				cobra.CheckErr(err)
			}
		}
		for _, cmd := range commands {
			flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()}
			for _, fs := range flagSets {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Changed {
						return
					}
					if !v.IsSet(f.Name) {
						return
					}
					val := fmt.Sprintf("%v", v.Get(f.Name))
					if val != "" {
						_ = f.Value.Set(val)
					}
				})
			}
		}
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, resolver.ErrNoRepositoryRoot):
		message = fmt.Sprintf("%s\nHint: run 'mlctl init' to create a repository here, or pass --global to change the machine-wide default.", err)
	case errors.Is(err, reporoot.ErrInvalidOverridePath):
		message = fmt.Sprintf("%s\nHint: %s must name a directory that was initialized with 'mlctl init'. Unset it to search upward from the working directory instead.", err, reporoot.OverrideEnv)
	case errors.Is(err, settings.ErrAlreadyInitialized):
		message = fmt.Sprintf("%s\nHint: pass --force to recreate the local settings with defaults.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

func setupProfiling() func() {
	mode := strings.ToLower(os.Getenv("MLCTL_PROFILE"))
	if mode != "startup" {
		return func() {}
	}
	ts := time.Now().UTC().Format("20060102-150405")
	cpuPath := fmt.Sprintf("mlctl-startup-%s.cpu.pprof", ts)
	cpuFile, err := os.Create(cpuPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to create CPU profile %s: %v\n", cpuPath, err)
		return func() {}
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to start CPU profile: %v\n", err)
		cpuFile.Close()
		return func() {}
	}
	fmt.Fprintf(os.Stderr, "MLCTL_PROFILE=startup: writing CPU profile to %s\n", cpuPath)
	memPath := fmt.Sprintf("mlctl-startup-%s.mem.pprof", ts)
	return func() {
		pprof.StopCPUProfile()
		cpuFile.Close()
		memFile, err := os.Create(memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to create heap profile %s: %v\n", memPath, err)
			return
		}
		defer memFile.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(memFile); err != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to write heap profile: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "MLCTL_PROFILE=startup: writing heap profile to %s\n", memPath)
	}
}
