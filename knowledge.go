package lintel

// extract applies every inspector in fns to part and folds the results
// left to right. ok is false when fns is empty.
func extract[P, K any](fns []func(P) K, part P, merge func(K, K) K) (k K, ok bool) {
	for _, fn := range fns {
		v := fn(part)
		if !ok {
			k, ok = v, true
			continue
		}
		k = merge(k, v)
	}
	return k, ok
}

// folder accumulates knowledge values with a left fold. Absent values are
// skipped rather than replaced with an identity element, since K need not
// have one.
type folder[K any] struct {
	merge func(K, K) K
	acc   K
	ok    bool
	count int
}

func newFolder[K any](merge func(K, K) K) *folder[K] {
	return &folder[K]{merge: merge}
}

func (f *folder[K]) add(k K) {
	f.count++
	if !f.ok {
		f.acc, f.ok = k, true
		return
	}
	f.acc = f.merge(f.acc, k)
}

func (f *folder[K]) addOptional(o optional[K]) {
	if o.ok {
		f.add(o.value)
	}
}

func (f *folder[K]) result() (K, bool) {
	return f.acc, f.ok
}

// optional is a knowledge value that may be absent.
type optional[K any] struct {
	value K
	ok    bool
}

func some[K any](k K, ok bool) optional[K] {
	return optional[K]{value: k, ok: ok}
}
