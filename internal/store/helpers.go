package store

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// marshalBlob encodes v as msgpack. Empty slices are stored as NULL.
func marshalBlob[T any](v []T) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}

// unmarshalBlob decodes a msgpack blob written by marshalBlob.
func unmarshalBlob[T any](b []byte) ([]T, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v []T
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}
