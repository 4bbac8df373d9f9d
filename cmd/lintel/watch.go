package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jward/lintel/internal/workspace"
)

var flagMetricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Review a project again whenever its files change",
	Long:  "Runs a full review, then re-runs incrementally after each debounced batch of file changes until interrupted. Every run is recorded in the results database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("watch", err)
	}
	root := findProjectRoot(targetDir)

	sess, err := newSession(root)
	if err != nil {
		return outputError("watch", err)
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagMetricsAddr != "" {
		srv := &http.Server{
			Addr:              flagMetricsAddr,
			Handler:           promhttp.HandlerFor(sess.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sess.logger.Error("metrics server", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	watcher, err := workspace.NewWatcher(root, sess.cfg.Debounce, sess.logger)
	if err != nil {
		return outputError("watch", err)
	}
	defer watcher.Close()

	w := cmd.OutOrStdout()
	review := func(trigger string) {
		started := time.Now()
		result, err := sess.run(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return
		}
		runID, err := sess.record(result, started)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return
		}
		if flagFormat != "json" {
			fmt.Fprintf(w, "==> %s %s (%s)\n", started.Format(time.TimeOnly), trigger, time.Since(started).Round(time.Millisecond))
		}
		if err := outputReport(w, report{
			Command: "watch",
			Root:    root,
			RunID:   runID,
			Count:   result.Count(),
			Errors:  result.Errors(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}

	review("initial review")
	return watcher.Run(ctx, func(paths []string) {
		review(describeChanges(paths))
	})
}

// describeChanges summarizes a batch of changed paths for the run header.
func describeChanges(paths []string) string {
	const shown = 3
	if len(paths) <= shown {
		return "changed " + strings.Join(paths, ", ")
	}
	return fmt.Sprintf("changed %s and %d more", strings.Join(paths[:shown], ", "), len(paths)-shown)
}
