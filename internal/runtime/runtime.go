// Package runtime embeds a Risor VM and turns Risor scripts into lintel
// reviews. A script runs once per inspected part with tree-sitter host
// functions in scope and evaluates to the list of findings for that part.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

// Script kinds, matching the part a scripted inspector is attached to.
const (
	KindModule    = "module"
	KindExtraFile = "extra_file"
	KindManifest  = "manifest"
)

const defaultTimeout = 10 * time.Second

// Runtime loads and evaluates review scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
	timeout    time.Duration
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log object.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithTimeout bounds a single script evaluation.
func WithTimeout(d time.Duration) RuntimeOption {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// NewRuntime creates a Runtime that resolves relative script paths and
// imports against scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.DiscardHandler),
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Script declares a scripted review. Source is used when Path is empty.
type Script struct {
	Name   string
	Kind   string
	Path   string
	Source string
}

// Review builds a review whose single inspector evaluates the script for
// every part of the script's kind. The knowledge is the list of errors the
// script returned; a script that fails produces one failure error for the
// part instead.
func (r *Runtime) Review(s Script) (lintel.Review[[]lintel.Error], error) {
	src := s.Source
	if s.Path != "" {
		var err error
		if src, err = r.LoadScript(s.Path); err != nil {
			return lintel.Review[[]lintel.Error]{}, err
		}
	}

	var inspector lintel.Inspector[[]lintel.Error]
	switch s.Kind {
	case KindModule:
		inspector = lintel.FromModule(func(m lintel.Module) []lintel.Error {
			tree, _ := m.Syntax.(*syntax.Tree)
			return r.inspect(s.Name, src, part{path: m.Path, source: m.Source, tree: tree})
		})
	case KindExtraFile:
		inspector = lintel.FromExtraFile(func(f lintel.ExtraFile) []lintel.Error {
			return r.inspect(s.Name, src, part{path: f.Path, source: f.Source})
		})
	case KindManifest:
		inspector = lintel.FromManifest(func(m lintel.Manifest) []lintel.Error {
			return r.inspect(s.Name, src, part{path: m.Path, source: m.Source})
		})
	default:
		return lintel.Review[[]lintel.Error]{}, fmt.Errorf("runtime: script %s: unknown kind %q", s.Name, s.Kind)
	}

	return lintel.NewReview(s.Name, concatErrors, reportErrors, inspector), nil
}

func concatErrors(a, b []lintel.Error) []lintel.Error {
	out := make([]lintel.Error, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func reportErrors(errs []lintel.Error) []lintel.Error {
	return errs
}

// part is the data a single script evaluation sees.
type part struct {
	path   string
	source string
	tree   *syntax.Tree
}

func (r *Runtime) inspect(name, src string, p part) []lintel.Error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	obj, err := r.eval(ctx, src, name, r.partGlobals(name, p))
	if err != nil {
		r.logger.Warn("script failed", "script", name, "path", p.path, "error", err)
		return []lintel.Error{scriptFailure(p.path, err)}
	}
	errs, err := toErrors(obj, p.path)
	if err != nil {
		r.logger.Warn("script returned invalid findings", "script", name, "path", p.path, "error", err)
		return []lintel.Error{scriptFailure(p.path, err)}
	}
	return errs
}

// FailurePrefix starts the message of errors produced for failed scripts.
const FailurePrefix = "script failed: "

func scriptFailure(path string, err error) lintel.Error {
	at := lintel.Position{Row: 1, Column: 1}
	return lintel.Error{
		Path:    path,
		Range:   lintel.Range{Start: at, End: at},
		Message: FailurePrefix + err.Error(),
	}
}

// IsScriptFailure reports whether e records a failed script evaluation
// rather than a finding.
func IsScriptFailure(e lintel.Error) bool {
	return strings.HasPrefix(e.Message, FailurePrefix)
}

// RunSource executes Risor source code with the host functions and any
// extra globals, and returns the value it evaluates to. No part is in
// scope: tree is nil.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.partGlobals("<inline>", part{})
	for k, v := range extraGlobals {
		globals[k] = v
	}
	return r.eval(ctx, source, "<inline>", globals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, globals map[string]any) (object.Object, error) {
	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	obj, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return obj, nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on that filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		// fs.FS paths are relative ("/checks/todo.risor" -> "checks/todo.risor").
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// partGlobals constructs the globals exposed to one script evaluation.
func (r *Runtime) partGlobals(name string, p part) map[string]any {
	globals := map[string]any{
		"path":       p.path,
		"source":     p.source,
		"language":   "",
		"tree":       object.Nil,
		"node_text":  makeNodeTextFn(p.tree),
		"node_child": makeNodeChildFn(),
		"node_range": makeNodeRangeFn(),
		"query":      makeQueryFn(p.tree),
		"log":        mustProxy(&logObject{logger: r.logger.With("script", name, "path", p.path)}),
	}
	if p.tree != nil {
		globals["language"] = p.tree.Language
		globals["tree"] = mustProxy(p.tree.Root())
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
