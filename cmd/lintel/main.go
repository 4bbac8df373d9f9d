package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/lintel/internal/workspace"
)

var (
	flagDB          string
	flagFormat      string
	flagVerbose     bool
	flagParallelism int
)

// errorHandled is set when a command has already reported its failure, so
// main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lintel",
	Short:         "Incremental project-wide code review",
	Long:          "Lintel runs built-in and Risor-scripted reviews over a project, re-inspecting only the files that changed since the previous run.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "results database path (default: from .lintel.yaml, else .lintel/lintel.db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json|table")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().IntVar(&flagParallelism, "parallelism", 0, "concurrent inspections (default: from .lintel.yaml, else one per CPU)")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(fixCmd)
}

// newLogger builds the stderr logger: warnings only, or debug with --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveTargetDir returns the absolute path of the directory to review.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findProjectRoot walks up from startDir looking for a lintel.toml manifest.
// Returns the directory containing it, or startDir if not found.
func findProjectRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, workspace.ManifestName)); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding a manifest.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the
// configured default.
func resolveDBPath(root, configured string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(root, flagDB)
	}
	return configured
}
