package adx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// Aggregator computes the values of one data element for one org unit
type Aggregator[O, S, C any] struct {
	Filter Filter[S, C]
}

// Aggregate extracts the org unit's records, keeps the period, then emits
// one value per category combination in Resolve order. Zero values are kept
func (a Aggregator[O, S, C]) Aggregate(ctx context.Context, def DataValueDefinition[O, S, C], orgUnit O, p period.Period) ([]DataValue, error) {
	set, err := def.Dataset(ctx, orgUnit)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	set, err = def.PeriodFilter(ctx, set, p)
	if err != nil {
		return nil, fmt.Errorf("period filter: %w", err)
	}

	var out []DataValue
	for combo, err := range Resolve(ctx, def.Categories, set, a.Filter) {
		if err != nil {
			return nil, err
		}
		v, err := def.Aggregate(ctx, combo.Set)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		out = append(out, DataValue{
			DataElement:  def.DataElement,
			Value:        FormatValue(v),
			Aggregations: combo.Aggregations,
		})
	}
	return out, nil
}

// FormatValue renders an aggregation result the way DHIS2 expects it.
// nil is reported as zero
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "0"
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *int64:
		if x == nil {
			return "0"
		}
		return strconv.FormatInt(*x, 10)
	case *float64:
		if x == nil {
			return "0"
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
