package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fastbuild",
	Short: "Split inline C++ class members into declarations and definitions",
	Long: `fastbuild is a CLI tool that parses C++ compilation units and rewrites every
class member function with an inline body into two texts: a declaration-only
header where bodies are replaced by ';', and an out-of-line source file where
each function is qualified with its enclosing namespaces and classes.
Header-heavy code then compiles once per definition instead of once per include.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fastbuild %s\n", getVersionString())
		fmt.Fprintf(out, "  Version: %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// Execute runs the CLI until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
