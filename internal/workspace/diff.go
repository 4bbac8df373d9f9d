package workspace

import (
	"fmt"
	"io"
	"sort"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ChangedPaths parses a unified diff and returns the sorted set of paths it
// touches. Deleted files are reported by their old name, everything else by
// its new name; a rename contributes both.
func ChangedPaths(r io.Reader) ([]string, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("workspace: parsing diff: %w", err)
	}

	seen := make(map[string]bool)
	for _, f := range files {
		switch {
		case f.IsDelete:
			seen[f.OldName] = true
		case f.IsRename:
			seen[f.OldName] = true
			seen[f.NewName] = true
		default:
			seen[f.NewName] = true
		}
	}
	delete(seen, "")

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
