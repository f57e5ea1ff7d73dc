package adx

import (
	"context"
	"fmt"
	"iter"
)

// Combination is one cell of the category cross product
type Combination[S any] struct {
	Set          S
	Aggregations []Aggregation
}

// Resolve walks the cross product of categories over base, category major
// and option minor, in declaration order. Each option set is the AND of
// its conditions; a prefix is filtered once and shared by its suffixes.
// With no categories it yields base once with no labels. A filter error is
// yielded once and ends the sequence
func Resolve[S, C any](ctx context.Context, categories []CategoryDefinition[C], base S, filter Filter[S, C]) iter.Seq2[Combination[S], error] {
	return func(yield func(Combination[S], error) bool) {
		labels := make([]Aggregation, len(categories))

		var walk func(depth int, set S) bool
		walk = func(depth int, set S) bool {
			if depth == len(categories) {
				out := make([]Aggregation, depth)
				copy(out, labels)
				return yield(Combination[S]{Set: set, Aggregations: out}, nil)
			}
			cat := categories[depth]
			for _, opt := range cat.Options {
				if err := ctx.Err(); err != nil {
					yield(Combination[S]{}, err)
					return false
				}
				sub, err := filter(ctx, set, opt.Cond)
				if err != nil {
					yield(Combination[S]{}, fmt.Errorf("category %s option %s: %w", cat.Name, opt.Code, err))
					return false
				}
				labels[depth] = Aggregation{LabelName: cat.Name, LabelValue: opt.Code}
				if !walk(depth+1, sub) {
					return false
				}
			}
			return true
		}
		walk(0, base)
	}
}
