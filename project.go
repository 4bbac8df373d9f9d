package lintel

// Module is one source file of the analyzed project. Syntax is the tree
// produced by the host's parser; the engine never looks inside it.
type Module struct {
	Path   string
	Source string
	Syntax any
}

// Manifest is the project descriptor file. Project holds the host's parsed
// form of Source.
type Manifest struct {
	Path    string
	Source  string
	Project any
}

// ModuleDoc documents one module exposed by a dependency.
type ModuleDoc struct {
	Name    string
	Comment string
}

// Dependency is a package the project depends on, described by its own
// parsed manifest and the docs of the modules it exposes.
type Dependency struct {
	Name    string
	Project any
	Modules []ModuleDoc
}

// ExtraFile is a supplementary, non-module text file of the project.
type ExtraFile struct {
	Path   string
	Source string
}

// ProjectDelta describes what changed since the previous run. Manifest and
// Dependencies always carry the full current state; the remaining fields
// list only the files that were added, changed or removed.
type ProjectDelta struct {
	Manifest     *Manifest
	Dependencies []Dependency

	AddedOrChangedExtraFiles []ExtraFile
	AddedOrChangedModules    []Module
	RemovedExtraFilePaths    []string
	RemovedModulePaths       []string
}

// Empty reports whether the delta carries no file changes. Manifest and
// dependencies are not considered since they are always present.
func (d ProjectDelta) Empty() bool {
	return len(d.AddedOrChangedExtraFiles) == 0 &&
		len(d.AddedOrChangedModules) == 0 &&
		len(d.RemovedExtraFilePaths) == 0 &&
		len(d.RemovedModulePaths) == 0
}
