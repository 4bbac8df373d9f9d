package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/config"
	"github.com/jward/lintel/internal/store"
)

var flagFiles []string

var errorsCmd = &cobra.Command{
	Use:   "errors [path]",
	Short: "List the errors recorded by the last review run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runErrors,
}

func init() {
	errorsCmd.Flags().StringSliceVar(&flagFiles, "file", nil, "only list errors for these project-relative paths")
}

var errNoRuns = errors.New("no recorded review runs; run \"lintel review\" first")

func runErrors(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("errors", err)
	}
	root := findProjectRoot(targetDir)

	run, errs, err := latestErrors(root, flagFiles...)
	if err != nil {
		return outputError("errors", err)
	}
	return outputReport(cmd.OutOrStdout(), report{
		Command: "errors",
		Root:    root,
		RunID:   run.ID,
		Count:   len(errs),
		Errors:  errs,
	})
}

// latestErrors loads the most recent run for root and its errors,
// optionally restricted to paths.
func latestErrors(root string, paths ...string) (*store.Run, []lintel.Error, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	run, err := st.LatestRun(root)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, errNoRuns
	}
	errs, err := st.Errors(run.ID, paths...)
	if err != nil {
		return nil, nil, err
	}
	return run, errs, nil
}
