package reviews

import (
	"strings"

	"github.com/jward/lintel"
)

// TrailingWhitespaceName is the name of the trailing-whitespace review.
const TrailingWhitespaceName = "trailing-whitespace"

// TrailingWhitespace reports spaces and tabs at the end of lines in extra
// files. Each error carries a fix that deletes the whitespace.
func TrailingWhitespace() lintel.Review[[]lintel.Error] {
	return lintel.NewReview(TrailingWhitespaceName, concat, identity,
		lintel.FromExtraFile(func(f lintel.ExtraFile) []lintel.Error {
			return trailingWhitespace(f.Path, f.Source)
		}),
	)
}

func trailingWhitespace(path, source string) []lintel.Error {
	var errs []lintel.Error
	for i, line := range strings.Split(source, "\n") {
		body := strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimRight(body, " \t")
		if len(trimmed) == len(body) {
			continue
		}
		r := lintel.Range{
			Start: lintel.Position{Row: i + 1, Column: len(trimmed) + 1},
			End:   lintel.Position{Row: i + 1, Column: len(body) + 1},
		}
		errs = append(errs, lintel.Error{
			Path:    path,
			Range:   r,
			Message: "trailing whitespace",
			Fixes:   []lintel.Fix{lintel.Removal(r)},
		})
	}
	return errs
}
