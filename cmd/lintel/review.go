package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/workspace"
)

var flagDiff string

var reviewCmd = &cobra.Command{
	Use:   "review [path]",
	Short: "Run all configured reviews over a project",
	Long:  "Scans the project, runs the built-in and scripted reviews, prints their errors and records them in the results database. Exits with status 1 when errors were reported.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&flagDiff, "diff", "", "only report errors in files touched by this unified diff (\"-\" reads stdin)")
}

func runReview(cmd *cobra.Command, args []string) error {
	started := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("review", err)
	}
	root := findProjectRoot(targetDir)

	var changed map[string]bool
	if flagDiff != "" {
		if changed, err = readDiffPaths(flagDiff, cmd.InOrStdin()); err != nil {
			return outputError("review", err)
		}
	}

	sess, err := newSession(root)
	if err != nil {
		return outputError("review", err)
	}
	defer sess.Close()

	result, err := sess.run(cmd.Context())
	if err != nil {
		return outputError("review", err)
	}
	if changed != nil {
		result = onlyPaths(result, changed)
	}

	runID, err := sess.record(result, started)
	if err != nil {
		return outputError("review", err)
	}

	if err := outputReport(cmd.OutOrStdout(), report{
		Command: "review",
		Root:    root,
		RunID:   runID,
		Count:   result.Count(),
		Errors:  result.Errors(),
	}); err != nil {
		return err
	}

	if n := result.Count(); n > 0 {
		errorHandled = true
		return fmt.Errorf("%d errors reported", n)
	}
	return nil
}

// readDiffPaths returns the paths touched by the unified diff in file, or
// read from stdin when file is "-".
func readDiffPaths(file string, stdin io.Reader) (map[string]bool, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening diff: %w", err)
		}
		defer f.Close()
		r = f
	}
	paths, err := workspace.ChangedPaths(r)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(paths))
	for _, p := range paths {
		changed[p] = true
	}
	return changed, nil
}

// onlyPaths keeps the errors of result whose path is in keep.
func onlyPaths(result lintel.Result, keep map[string]bool) lintel.Result {
	filtered := lintel.Result{ErrorsByPath: map[string][]lintel.Error{}}
	for p, errs := range result.ErrorsByPath {
		if keep[p] {
			filtered.ErrorsByPath[p] = errs
		}
	}
	return filtered
}
