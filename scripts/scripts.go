// Package scripts ships the Risor reviews compiled into the lintel binary.
package scripts

import (
	"embed"

	"github.com/jward/lintel/internal/runtime"
)

// FS holds the embedded review scripts under reviews/.
//
//go:embed reviews/*.risor
var FS embed.FS

// Reviews lists the embedded scripted reviews. Path is relative to FS.
var Reviews = []runtime.Script{
	{Name: "todo-owner", Kind: runtime.KindModule, Path: "reviews/todo_owner.risor"},
	{Name: "long-line", Kind: runtime.KindExtraFile, Path: "reviews/long_line.risor"},
	{Name: "manifest-version", Kind: runtime.KindManifest, Path: "reviews/manifest_version.risor"},
}
