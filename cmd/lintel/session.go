package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/config"
	"github.com/jward/lintel/internal/reviews"
	lrt "github.com/jward/lintel/internal/runtime"
	"github.com/jward/lintel/internal/store"
	"github.com/jward/lintel/internal/workspace"
)

// session ties one project root to its configuration, workspace, review
// suite and results store. Each run feeds the workspace delta to the suite
// and keeps the suite it returns, so later runs are incremental.
type session struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	ws       *workspace.Workspace
	suite    *lintel.Suite
	store    *store.Store
}

func newSession(root string) (*session, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	parallelism := cfg.Parallelism
	if flagParallelism > 0 {
		parallelism = flagParallelism
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	registry := prometheus.NewRegistry()
	opts := []lintel.Option{
		lintel.WithParallelism(parallelism),
		lintel.WithLogger(logger),
		lintel.WithMetrics(lintel.NewMetrics(registry)),
	}
	runners, err := buildRunners(root, cfg, logger, opts)
	if err != nil {
		return nil, err
	}

	st, err := openStore(root, cfg)
	if err != nil {
		return nil, err
	}

	return &session{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		ws:       workspace.New(root, workspace.WithLogger(logger), workspace.WithParallelism(parallelism)),
		suite:    lintel.NewSuite(runners...),
		store:    st,
	}, nil
}

// buildRunners constructs the configured built-in reviews followed by the
// scripted ones.
func buildRunners(root string, cfg *config.Config, logger *slog.Logger, opts []lintel.Option) ([]lintel.Runner, error) {
	var runners []lintel.Runner

	builtin := cfg.Reviews
	if builtin == nil {
		for _, name := range reviews.Names() {
			builtin = append(builtin, config.Review{Name: name})
		}
	}
	for _, r := range builtin {
		runner, err := reviews.New(r.Name, r.Ignore, opts...)
		if err != nil {
			return nil, err
		}
		runners = append(runners, runner)
	}

	if len(cfg.Scripts) == 0 {
		return runners, nil
	}
	rt := lrt.NewRuntime(cfg.ScriptsPath(root), lrt.WithLogger(logger))
	for _, s := range cfg.Scripts {
		review, err := rt.Review(lrt.Script{Name: s.Name, Kind: s.Kind, Path: s.Script})
		if err != nil {
			return nil, err
		}
		runners = append(runners, lintel.NewRunner(reviews.Ignore(review, s.Ignore), opts...))
	}
	return runners, nil
}

// openStore opens the results database for root, creating its directory.
func openStore(root string, cfg *config.Config) (*store.Store, error) {
	dbPath := resolveDBPath(root, cfg.DatabasePath(root))
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	return store.Open(dbPath)
}

func (s *session) Close() error {
	return s.store.Close()
}

// run scans the workspace and passes the delta to the suite.
func (s *session) run(ctx context.Context) (lintel.Result, error) {
	start := time.Now()
	delta, err := s.ws.Scan(ctx)
	if err != nil {
		return lintel.Result{}, err
	}
	var result lintel.Result
	result, s.suite = s.suite.Run(delta)
	s.logger.Debug("review run",
		"modules_changed", len(delta.AddedOrChangedModules),
		"modules_removed", len(delta.RemovedModulePaths),
		"extra_files_changed", len(delta.AddedOrChangedExtraFiles),
		"extra_files_removed", len(delta.RemovedExtraFilePaths),
		"errors", result.Count(),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// record stores result as the latest run for the root and prunes old runs.
func (s *session) record(result lintel.Result, started time.Time) (string, error) {
	id, err := s.store.RecordRun(&store.Run{
		Root:      s.root,
		Reviews:   s.suite.Names(),
		StartedAt: started,
	}, result.Errors())
	if err != nil {
		return "", err
	}
	pruned, err := s.store.PruneRuns(s.root, s.cfg.KeepRuns)
	if err != nil {
		return "", err
	}
	if pruned > 0 {
		s.logger.Debug("pruned runs", "count", pruned)
	}
	return id, nil
}
