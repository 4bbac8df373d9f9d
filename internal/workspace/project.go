// Package workspace turns a project directory into lintel project deltas.
// It reads the TOML manifest and dependency metadata, parses modules with
// tree-sitter and tracks content hashes so that successive scans only
// report what changed.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/jward/lintel"
)

const (
	// ManifestName is the project manifest file at the workspace root and
	// in every dependency directory.
	ManifestName = "lintel.toml"
	// DocsName lists the modules a dependency exposes.
	DocsName = "docs.toml"
)

var (
	defaultSourceDirectories = []string{"."}
	defaultExtraDirectories  = []string{"docs"}
)

// Project is the parsed form of a lintel.toml manifest.
type Project struct {
	Project         ProjectInfo       `toml:"project"`
	Dependencies    map[string]string `toml:"dependencies"`
	DependencyPaths map[string]string `toml:"dependency-paths"`
}

// ProjectInfo is the [project] table.
type ProjectInfo struct {
	Name              string   `toml:"name"`
	Version           string   `toml:"version"`
	SourceDirectories []string `toml:"source-directories"`
	ExtraDirectories  []string `toml:"extra-directories"`
}

// SourceDirectories returns the configured module directories, or the
// project root when none are set.
func (p *Project) SourceDirectories() []string {
	if p == nil || len(p.Project.SourceDirectories) == 0 {
		return defaultSourceDirectories
	}
	return p.Project.SourceDirectories
}

// ExtraDirectories returns the configured extra-file directories, or
// "docs" when none are set.
func (p *Project) ExtraDirectories() []string {
	if p == nil || len(p.Project.ExtraDirectories) == 0 {
		return defaultExtraDirectories
	}
	return p.Project.ExtraDirectories
}

// Docs is the parsed form of a dependency's docs.toml.
type Docs struct {
	Modules []DocsModule `toml:"module"`
}

// DocsModule is one [[module]] entry of docs.toml.
type DocsModule struct {
	Name    string `toml:"name"`
	Comment string `toml:"comment"`
}

// ParseManifest decodes manifest source.
func ParseManifest(source string) (*Project, error) {
	var p Project
	if _, err := toml.Decode(source, &p); err != nil {
		return nil, fmt.Errorf("workspace: parse manifest: %w", err)
	}
	return &p, nil
}

// LoadManifest reads dir/lintel.toml. A missing manifest is not an error:
// it returns (nil, nil, nil).
func LoadManifest(dir string) (*lintel.Manifest, *Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("workspace: read manifest: %w", err)
	}
	p, err := ParseManifest(string(data))
	if err != nil {
		return nil, nil, err
	}
	return &lintel.Manifest{Path: ManifestName, Source: string(data), Project: p}, p, nil
}

// LoadDependencies loads the metadata of every dependency declared by p,
// sorted by name. Dependencies without a configured path, or whose
// directory lacks metadata files, are returned with what could be read.
func LoadDependencies(root string, p *Project) ([]lintel.Dependency, error) {
	if p == nil {
		return nil, nil
	}
	names := make([]string, 0, len(p.Dependencies))
	for name := range p.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]lintel.Dependency, 0, len(names))
	for _, name := range names {
		dep := lintel.Dependency{Name: name}
		if rel, ok := p.DependencyPaths[name]; ok {
			dir := rel
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(root, rel)
			}
			if err := loadDependencyDir(dir, &dep); err != nil {
				return nil, fmt.Errorf("workspace: dependency %s: %w", name, err)
			}
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func loadDependencyDir(dir string, dep *lintel.Dependency) error {
	_, project, err := LoadManifest(dir)
	if err != nil {
		return err
	}
	if project != nil {
		dep.Project = project
	}

	var docs Docs
	_, err = toml.DecodeFile(filepath.Join(dir, DocsName), &docs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", DocsName, err)
	}
	for _, m := range docs.Modules {
		dep.Modules = append(dep.Modules, lintel.ModuleDoc{Name: m.Name, Comment: m.Comment})
	}
	return nil
}
