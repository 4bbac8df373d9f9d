package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/lintel"
)

var (
	flagFixFile string
	flagDryRun  bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Apply the fixes recorded for a file by the last review run",
	Long:  "Applies every fix the last review run recorded for --file in one batch. Overlapping fixes abort without touching the file; run \"lintel review\" again and repeat to apply the rest.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().StringVar(&flagFixFile, "file", "", "project-relative path of the file to fix")
	fixCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the fixed source instead of writing it")
	_ = fixCmd.MarkFlagRequired("file")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("fix", err)
	}
	root := findProjectRoot(targetDir)
	rel := filepath.ToSlash(filepath.Clean(flagFixFile))

	run, errs, err := latestErrors(root, rel)
	if err != nil {
		return outputError("fix", err)
	}
	fixable := fixableErrors(errs)

	w := cmd.OutOrStdout()
	if len(fixable) == 0 {
		fmt.Fprintf(w, "No fixes recorded for %s.\n", rel)
		return nil
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return outputError("fix", fmt.Errorf("reading %s: %w", rel, err))
	}
	source, err := os.ReadFile(full)
	if err != nil {
		return outputError("fix", fmt.Errorf("reading %s: %w", rel, err))
	}

	fixed, err := lintel.ApplyFixesToErrors(fixable, string(source))
	switch {
	case errors.Is(err, lintel.ErrResultUnchanged):
		fmt.Fprintf(w, "%s is already fixed.\n", rel)
		return nil
	case err != nil:
		return outputError("fix", fmt.Errorf("fixing %s: %w", rel, err))
	}

	if flagDryRun {
		fmt.Fprint(w, fixed)
		return nil
	}
	if err := os.WriteFile(full, []byte(fixed), info.Mode().Perm()); err != nil {
		return outputError("fix", fmt.Errorf("writing %s: %w", rel, err))
	}
	if flagFormat == "json" {
		return outputReport(w, report{
			Command: "fix",
			Root:    root,
			RunID:   run.ID,
			Count:   len(fixable),
			Errors:  fixable,
		})
	}
	fmt.Fprintf(w, "Fixed %d %s in %s.\n", len(fixable), plural(len(fixable), "error", "errors"), rel)
	return nil
}

// fixableErrors keeps the errors that carry fixes.
func fixableErrors(errs []lintel.Error) []lintel.Error {
	var out []lintel.Error
	for _, e := range errs {
		if e.Fixable() {
			out = append(out, e)
		}
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
