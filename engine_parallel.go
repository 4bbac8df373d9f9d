package lintel

import "golang.org/x/sync/errgroup"

// extractAll computes the knowledge of every part. With parallelism > 1 the
// parts are spread over a bounded worker pool; each worker writes only its
// own result slot, and all results are collected before the caller folds
// them, so the outcome does not depend on scheduling.
func extractAll[P, K any](parts []P, key func(P) string, fns []func(P) K, merge func(K, K) K, parallelism int) []extracted[K] {
	results := make([]extracted[K], len(parts))
	if parallelism <= 1 || len(parts) < 2 {
		for i, part := range parts {
			results[i] = extractOne(part, key, fns, merge)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(min(parallelism, len(parts)))
	for i, part := range parts {
		g.Go(func() error {
			results[i] = extractOne(part, key, fns, merge)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()
	return results
}

func extractOne[P, K any](part P, key func(P) string, fns []func(P) K, merge func(K, K) K) extracted[K] {
	v, ok := extract(fns, part, merge)
	return extracted[K]{path: key(part), value: v, ok: ok}
}
