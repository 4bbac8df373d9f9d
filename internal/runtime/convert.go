package runtime

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/risor-io/risor/object"

	"github.com/jward/lintel"
)

// toErrors converts a script's return value into errors. The value is nil
// (no findings) or a list of maps:
//
//	{row, column, end_row?, end_column?, message, path?, details?, fixes?}
//
// where fixes is a list of {row, column, end_row?, end_column?, replacement}.
// A missing end defaults to the start; a missing path to the inspected part.
func toErrors(obj object.Object, path string) ([]lintel.Error, error) {
	if obj == nil {
		return nil, nil
	}
	if _, ok := obj.(*object.NilType); ok {
		return nil, nil
	}
	list, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("expected list of findings, got %s", obj.Type())
	}

	var errs []lintel.Error
	for i, item := range list.Value() {
		m, err := extractMap(item)
		if err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		e := lintel.Error{
			Path:    getStringDefault(m, "path", path),
			Range:   getRange(m),
			Message: getString(m, "message"),
		}
		if e.Message == "" {
			return nil, fmt.Errorf("finding %d: missing message", i)
		}
		if e.Details, err = getStrings(m, "details"); err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		if e.Fixes, err = getFixes(m, "fixes"); err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		errs = append(errs, e)
	}
	return errs, nil
}

func getRange(m map[string]object.Object) lintel.Range {
	start := lintel.Position{Row: getInt(m, "row"), Column: getInt(m, "column")}
	end := start
	if _, ok := m["end_row"]; ok {
		end.Row = getInt(m, "end_row")
	}
	if _, ok := m["end_column"]; ok {
		end.Column = getInt(m, "end_column")
	}
	return lintel.Range{Start: start, End: end}
}

func getFixes(m map[string]object.Object, key string) ([]lintel.Fix, error) {
	items, err := getList(m, key)
	if err != nil || items == nil {
		return nil, err
	}
	fixes := make([]lintel.Fix, 0, len(items))
	for i, item := range items {
		fm, err := extractMap(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		fixes = append(fixes, lintel.ReplaceRange(getRange(fm), getString(fm, "replacement")))
	}
	return fixes, nil
}

func getStrings(m map[string]object.Object, key string) ([]string, error) {
	items, err := getList(m, key)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := toString(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func getList(m map[string]object.Object, key string) ([]object.Object, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	if _, ok := v.(*object.NilType); ok {
		return nil, nil
	}
	list, ok := v.(*object.List)
	if !ok {
		return nil, fmt.Errorf("%s: expected list, got %s", key, v.Type())
	}
	return list.Value(), nil
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getStringDefault(m map[string]object.Object, key, def string) string {
	v := getString(m, key)
	if v == "" {
		return def
	}
	return v
}

func getInt(m map[string]object.Object, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case *object.Int:
		i, err := safecast.Conv[int](n.Value())
		if err != nil {
			return 0
		}
		return i
	case *object.Float:
		return int(n.Value())
	}
	return 0
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
