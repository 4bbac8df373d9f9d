package workspace

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

// skipDirs are never walked.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Workspace scans a project directory. It remembers the content hash of
// every file it reported, so each Scan returns only the files added,
// changed or removed since the previous one. A Workspace is not safe for
// concurrent use.
type Workspace struct {
	root        string
	logger      *slog.Logger
	parallelism int

	modules    map[string]string
	extraFiles map[string]string
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the workspace logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// WithParallelism bounds how many modules are parsed at once.
func WithParallelism(n int) Option {
	return func(w *Workspace) {
		w.parallelism = n
	}
}

// New creates a Workspace rooted at root. The first Scan reports every
// file.
func New(root string, opts ...Option) *Workspace {
	w := &Workspace{
		root:        root,
		logger:      slog.New(slog.DiscardHandler),
		parallelism: runtime.GOMAXPROCS(0),
		modules:     map[string]string{},
		extraFiles:  map[string]string{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// file is a listed, read project file.
type file struct {
	path    string
	content []byte
}

// Scan reads the project and returns the delta since the previous Scan.
// Manifest and dependencies are always loaded in full.
func (w *Workspace) Scan(ctx context.Context) (lintel.ProjectDelta, error) {
	manifest, project, err := LoadManifest(w.root)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}
	deps, err := LoadDependencies(w.root, project)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}

	modulePaths, extraPaths, err := w.listFiles(project)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}

	changedModules, modules, removedModules, err := w.diff(modulePaths, w.modules)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}
	changedExtra, extraFiles, removedExtra, err := w.diff(extraPaths, w.extraFiles)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}

	parsed, err := w.parseModules(ctx, changedModules)
	if err != nil {
		return lintel.ProjectDelta{}, err
	}

	delta := lintel.ProjectDelta{
		Manifest:              manifest,
		Dependencies:          deps,
		AddedOrChangedModules: parsed,
		RemovedModulePaths:    removedModules,
		RemovedExtraFilePaths: removedExtra,
	}
	for _, f := range changedExtra {
		delta.AddedOrChangedExtraFiles = append(delta.AddedOrChangedExtraFiles, lintel.ExtraFile{
			Path:   f.path,
			Source: string(f.content),
		})
	}

	w.modules = modules
	w.extraFiles = extraFiles

	w.logger.Debug("workspace scanned",
		"root", w.root,
		"modules", len(modules),
		"extra_files", len(extraFiles),
		"changed", len(delta.AddedOrChangedModules)+len(delta.AddedOrChangedExtraFiles),
		"removed", len(removedModules)+len(removedExtra),
	)
	return delta, nil
}

// diff reads paths and compares their hashes with prev. It returns the
// added or changed files, the new hash map and the removed paths.
func (w *Workspace) diff(paths []string, prev map[string]string) ([]file, map[string]string, []string, error) {
	var changed []file
	next := make(map[string]string, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(p)))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("workspace: read %s: %w", p, err)
		}
		hash := fmt.Sprintf("%x", sha256.Sum256(content))
		next[p] = hash
		if prev[p] == hash {
			continue
		}
		changed = append(changed, file{path: p, content: content})
	}

	var removed []string
	for p := range prev {
		if _, ok := next[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	return changed, next, removed, nil
}

func (w *Workspace) parseModules(ctx context.Context, files []file) ([]lintel.Module, error) {
	modules := make([]lintel.Module, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(w.parallelism, 1))
	for i, f := range files {
		g.Go(func() error {
			tree, err := syntax.ParseFile(ctx, f.path, f.content)
			if err != nil {
				return fmt.Errorf("workspace: %s: %w", f.path, err)
			}
			modules[i] = lintel.Module{Path: f.path, Source: string(f.content), Syntax: tree}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

// listFiles returns the project-relative module and extra-file paths, both
// sorted. Files with a known language under a source directory are
// modules; every other text file under an extra directory is an extra file.
// Dependency directories inside the project are skipped.
func (w *Workspace) listFiles(p *Project) ([]string, []string, error) {
	var depDirs []string
	if p != nil {
		for _, dir := range p.DependencyPaths {
			if !filepath.IsAbs(dir) && path.Clean(filepath.ToSlash(dir)) != "." {
				depDirs = append(depDirs, dir)
			}
		}
	}

	all, err := w.gitListFiles()
	if err != nil {
		// Not a git repo or git not available; fall back to walk.
		if all, err = w.walkListFiles(); err != nil {
			return nil, nil, err
		}
	}

	var modules, extra []string
	for _, rel := range all {
		if rel == ManifestName || under(rel, depDirs) {
			continue
		}
		if _, ok := syntax.LanguageForFile(rel); ok && under(rel, p.SourceDirectories()) {
			modules = append(modules, rel)
			continue
		}
		if under(rel, p.ExtraDirectories()) && w.isText(rel) {
			extra = append(extra, rel)
		}
	}
	sort.Strings(modules)
	sort.Strings(extra)
	return modules, extra, nil
}

// under reports whether rel lies inside one of dirs.
func under(rel string, dirs []string) bool {
	for _, d := range dirs {
		d = path.Clean(filepath.ToSlash(d))
		if d == "." || rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

// isText rejects files that look binary (contain a NUL in the first 8KB).
func (w *Workspace) isText(rel string) bool {
	f, err := os.Open(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 8192)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) < 0
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under the root.
func (w *Workspace) gitListFiles() ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = w.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Deleted but still tracked files are listed by --cached.
		if _, err := os.Stat(filepath.Join(w.root, line)); err != nil {
			continue
		}
		paths = append(paths, filepath.ToSlash(line))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem. Skips hidden
// directories, node_modules, vendor and __pycache__.
func (w *Workspace) walkListFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != w.root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: walk directory: %w", err)
	}
	return paths, nil
}
