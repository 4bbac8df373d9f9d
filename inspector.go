package lintel

// inspectorKind tags which project part an Inspector reads.
type inspectorKind int

const (
	kindManifest inspectorKind = iota + 1
	kindDependencies
	kindExtraFile
	kindModule
)

func (k inspectorKind) String() string {
	switch k {
	case kindManifest:
		return "manifest"
	case kindDependencies:
		return "dependencies"
	case kindExtraFile:
		return "extra_file"
	case kindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Inspector extracts knowledge of type K from one kind of project part.
// Construct one with FromManifest, FromDependencies, FromExtraFile or
// FromModule; the zero value inspects nothing.
type Inspector[K any] struct {
	kind         inspectorKind
	manifest     func(Manifest) K
	dependencies func([]Dependency) K
	extraFile    func(ExtraFile) K
	module       func(Module) K
}

// FromManifest inspects the project manifest.
func FromManifest[K any](fn func(Manifest) K) Inspector[K] {
	return Inspector[K]{kind: kindManifest, manifest: fn}
}

// FromDependencies inspects the full dependency list.
func FromDependencies[K any](fn func([]Dependency) K) Inspector[K] {
	return Inspector[K]{kind: kindDependencies, dependencies: fn}
}

// FromExtraFile inspects each extra file independently.
func FromExtraFile[K any](fn func(ExtraFile) K) Inspector[K] {
	return Inspector[K]{kind: kindExtraFile, extraFile: fn}
}

// FromModule inspects each module independently.
func FromModule[K any](fn func(Module) K) Inspector[K] {
	return Inspector[K]{kind: kindModule, module: fn}
}
