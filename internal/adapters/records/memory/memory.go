// Package memory provides in-process record sets for cube definitions,
// used for fixtures and for data already loaded into memory
package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// Set is an immutable slice of records; filters return new sets
type Set[R any] []R

// Predicate selects records
type Predicate[R any] func(R) bool

// Number is what Sum can add up
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// Filter keeps the records matching p
func Filter[R any](ctx context.Context, set Set[R], p Predicate[R]) (Set[R], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lo.Filter(set, func(r R, _ int) bool { return p(r) }), nil
}

// Count is a count aggregation operator
func Count[R any](_ context.Context, set Set[R]) (any, error) {
	return len(set), nil
}

// Len is Count for lint passes
func Len[R any](_ context.Context, set Set[R]) (int64, error) {
	return int64(len(set)), nil
}

// Sum returns an aggregation operator adding field over the set
func Sum[R any, N Number](field func(R) N) func(context.Context, Set[R]) (any, error) {
	return func(_ context.Context, set Set[R]) (any, error) {
		return lo.SumBy(set, field), nil
	}
}

// Between returns a period filter keeping records whose date falls in the period
func Between[R any](date func(R) time.Time) func(context.Context, Set[R], period.Period) (Set[R], error) {
	return func(ctx context.Context, set Set[R], p period.Period) (Set[R], error) {
		return Filter(ctx, set, func(r R) bool { return p.Contains(date(r)) })
	}
}

// Dataset adapts an accessor to a dataset extractor
func Dataset[O, R any](records func(O) []R) func(context.Context, O) (Set[R], error) {
	return func(_ context.Context, o O) (Set[R], error) { return Set[R](records(o)), nil }
}

// And matches when every predicate matches
func And[R any](ps ...Predicate[R]) Predicate[R] {
	return func(r R) bool {
		return lo.EveryBy(ps, func(p Predicate[R]) bool { return p(r) })
	}
}

// Or matches when any predicate matches
func Or[R any](ps ...Predicate[R]) Predicate[R] {
	return func(r R) bool {
		return lo.SomeBy(ps, func(p Predicate[R]) bool { return p(r) })
	}
}

// Not inverts p
func Not[R any](p Predicate[R]) Predicate[R] {
	return func(r R) bool { return !p(r) }
}
