// Package flight deduplicates concurrent produce operations per cache key.
//
// At most one produce runs per key at a time; every caller that requests the
// key while that produce is in flight receives the same outcome, value or
// error. Once the produce settles the key is forgotten, so a failure never
// poisons later requests — a fresh request after a failure starts a new
// flight.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group coordinates in-flight produce operations keyed by string.
// The zero value is ready to use.
type Group[T any] struct {
	sf singleflight.Group
}

// Do returns the result of produce for key, running it at most once
// concurrently. The second return reports whether the result was shared with
// other callers.
//
// A produce once started always runs to completion: canceling ctx detaches
// this caller (returning ctx.Err()) but does not stop the flight, and the
// remaining waiters still receive the settled outcome. Completed results are
// persisted by produce itself, so letting an abandoned flight finish keeps
// the store warm at no extra cost.
func (g *Group[T]) Do(ctx context.Context, key string, produce func() (T, error)) (T, bool, error) {
	ch := g.sf.DoChan(key, func() (any, error) {
		return produce()
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	}
}
