// Package cli provides the command-line interface for layerdwell.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/internal/cli/commands"
	"github.com/ccollicutt/layerdwell/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return execute(NewRootCommand(), os.Args[1:], plugins.DefaultFinder())
}

func execute(rootCmd *cobra.Command, args []string, finder *plugins.Finder) int {
	commands.ExitCode = 0

	if name, ok := pluginCandidate(rootCmd, args); ok {
		return runPlugin(rootCmd, finder, name, args[1:])
	}

	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing the error itself
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// pluginCandidate reports whether args start with a command name that no
// built-in subcommand claims.
func pluginCandidate(rootCmd *cobra.Command, args []string) (string, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", false
	}
	switch args[0] {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return "", false
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == args[0] || c.HasAlias(args[0]) {
			return "", false
		}
	}
	return args[0], true
}

func runPlugin(rootCmd *cobra.Command, finder *plugins.Finder, name string, args []string) int {
	path, err := finder.Find(name)
	if err != nil {
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", finder.NotFoundMessage(name))
		return 2
	}

	var env []string
	if self, err := os.Executable(); err == nil {
		env = append(env, "LAYERDWELL_BIN="+self)
	}
	return plugins.Run(context.Background(), plugins.Invocation{
		Path:   path,
		Args:   args,
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: rootCmd.OutOrStdout(),
		Stderr: rootCmd.ErrOrStderr(),
	})
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "layerdwell",
		Short: "Even out G-code layer times with inserted pauses",
		Long: `layerdwell estimates how long each layer of a sliced G-code file takes
to print, smooths the per-layer times so no layer is much faster than its
neighbours, and inserts pauses into layers that would otherwise print too
fast to cool.

Commands:
  analyze   Report per-layer times and the pauses they need
  clean     Write a copy of the G-code with the pauses inserted
  detect    Identify the slicer layer marker dialect
  diagnose  Check a file and configuration for common problems
  validate  Validate a configuration file

PLUGINS:
  Unknown commands run an external layerdwell-<command> binary when one is
  found next to layerdwell, in ~/.layerdwell/plugins/, or in PATH. The
  plugin receives the remaining arguments and LAYERDWELL_BIN in its
  environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.SetupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigFile, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(commands.NewAnalyzeCommand(g))
	rootCmd.AddCommand(commands.NewCleanCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
