package lintel

// Runner is an Engine with its knowledge type erased, so reviews with
// different knowledge types can be run side by side.
type Runner interface {
	// Name returns the name of the underlying review.
	Name() string
	// Run processes delta and returns the errors and the Runner to use
	// for the next delta.
	Run(delta ProjectDelta) (Result, Runner)
}

// Erase wraps e as a Runner.
func Erase[K any](e *Engine[K]) Runner {
	return erased[K]{engine: e}
}

// NewRunner is shorthand for Erase(New(review, opts...)).
func NewRunner[K any](review Review[K], opts ...Option) Runner {
	return Erase(New(review, opts...))
}

type erased[K any] struct {
	engine *Engine[K]
}

func (r erased[K]) Name() string {
	return r.engine.review.name
}

func (r erased[K]) Run(delta ProjectDelta) (Result, Runner) {
	result, next := r.engine.Run(delta)
	return result, erased[K]{engine: next}
}

// Suite runs several reviews over the same deltas and merges their errors.
type Suite struct {
	runners []Runner
}

// NewSuite creates a Suite from runners, run in the given order.
func NewSuite(runners ...Runner) *Suite {
	return &Suite{runners: append([]Runner(nil), runners...)}
}

// Names returns the names of the suite's reviews in run order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.runners))
	for i, r := range s.runners {
		names[i] = r.Name()
	}
	return names
}

// Run passes delta to every review and returns the merged errors together
// with the Suite for the next delta.
func (s *Suite) Run(delta ProjectDelta) (Result, *Suite) {
	results := make([]Result, len(s.runners))
	next := make([]Runner, len(s.runners))
	for i, r := range s.runners {
		results[i], next[i] = r.Run(delta)
	}
	return mergeResults(results...), &Suite{runners: next}
}
