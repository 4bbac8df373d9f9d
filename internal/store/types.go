package store

import "time"

// Run is one recorded review run over a project root.
type Run struct {
	ID         string
	Root       string
	Reviews    []string
	StartedAt  time.Time
	FinishedAt time.Time
	ErrorCount int
}
