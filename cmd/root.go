package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error or discovery failures.
	ExitCodeError = 1
	// ExitCodeInterrupted indicates the command was cancelled.
	ExitCodeInterrupted = 130
)

// rootCmd represents the base command for the testwright application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "testwright",
	Short: "Construct test definitions from declarative suites",
	Long: `testwright expands declarative test suites into concrete test definitions.

Suites declare classes, methods, parameters and properties together with data
sources (inline arguments, provider methods, ranges, matrices and shared
fixtures). testwright resolves every data source, infers generic type
arguments, and prints the resulting tests and discovery failures.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "testwright version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupted
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newFixturesCmd())
	rootCmd.AddCommand(newReportsCmd())
}
