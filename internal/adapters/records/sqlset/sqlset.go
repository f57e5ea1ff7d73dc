// Package sqlset provides record sets backed by Postgres queries. A Set is
// a FROM clause plus conditions; filtering appends a condition and
// aggregation renders a single SELECT
package sqlset

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
)

// Cond is a SQL boolean expression with ? placeholders
type Cond struct {
	SQL  string
	Args []any
}

// Where builds a Cond
func Where(sql string, args ...any) Cond { return Cond{SQL: sql, Args: args} }

// Set is an unevaluated query over From
type Set struct {
	From  string
	Where []Cond
}

// New returns a set over from with optional base conditions
func New(from string, conds ...Cond) Set {
	return Set{From: from, Where: slices.Clone(conds)}
}

// With returns a copy of s with c appended
func (s Set) With(c Cond) Set {
	out := Set{From: s.From, Where: make([]Cond, 0, len(s.Where)+1)}
	out.Where = append(out.Where, s.Where...)
	out.Where = append(out.Where, c)
	return out
}

// Filter is the adx filter capability for sets
func Filter(_ context.Context, s Set, c Cond) (Set, error) {
	return s.With(c), nil
}

// Render returns SELECT selectExpr FROM ... WHERE ... with $n placeholders
func (s Set) Render(selectExpr string) (string, []any, error) {
	if strings.TrimSpace(s.From) == "" {
		return "", nil, perr.Validationf("sqlset: empty FROM")
	}
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT ")
	b.WriteString(selectExpr)
	b.WriteString(" FROM ")
	b.WriteString(s.From)
	for i, c := range s.Where {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		sql, err := renumber(c, len(args))
		if err != nil {
			return "", nil, err
		}
		b.WriteString("(")
		b.WriteString(sql)
		b.WriteString(")")
		args = append(args, c.Args...)
	}
	return b.String(), args, nil
}

// renumber rewrites ? as $n starting after offset. Text inside single or
// double quotes is copied as is, ?| and ?& stay jsonb operators and ?? is a
// literal ? (the jsonb key operator)
func renumber(c Cond, offset int) (string, error) {
	var (
		b     strings.Builder
		n     int
		quote byte
	)
	for i := 0; i < len(c.SQL); i++ {
		ch := c.SQL[i]
		var next byte
		if i+1 < len(c.SQL) {
			next = c.SQL[i+1]
		}
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			b.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			b.WriteByte(ch)
		case ch == '?' && next == '?':
			b.WriteByte('?')
			i++
		case ch == '?' && (next == '|' || next == '&'):
			b.WriteByte(ch)
		case ch == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(offset + n))
		default:
			b.WriteByte(ch)
		}
	}
	if n != len(c.Args) {
		return "", perr.WithField(perr.Validationf("sqlset: %q has %d placeholders for %d args", c.SQL, n, len(c.Args)), "where")
	}
	return b.String(), nil
}

// Between returns a period filter on a date or timestamp column, half open
// on the day after the period ends
func Between(column string) func(context.Context, Set, period.Period) (Set, error) {
	return func(_ context.Context, s Set, p period.Period) (Set, error) {
		return s.With(Where(column+" >= ? AND "+column+" < ?", p.From(), p.End())), nil
	}
}

// Scalar runs selectExpr over s and scans the single result
func Scalar[T any](ctx context.Context, q store.RowQuerier, s Set, selectExpr string) (T, error) {
	var zero T
	sql, args, err := s.Render(selectExpr)
	if err != nil {
		return zero, err
	}
	v, err := store.Scalar[T](ctx, q, sql, args...)
	if err != nil {
		return zero, perr.FromPostgresf(err, "sqlset: %s over %s", selectExpr, s.From)
	}
	return v, nil
}

// CountOf returns a counting function for lint passes
func CountOf(q store.RowQuerier, expr string) func(context.Context, Set) (int64, error) {
	sel := fmt.Sprintf("COUNT(%s)", expr)
	return func(ctx context.Context, s Set) (int64, error) {
		return Scalar[int64](ctx, q, s, sel)
	}
}

// Count returns a COUNT(expr) aggregation operator
func Count(q store.RowQuerier, expr string) func(context.Context, Set) (any, error) {
	count := CountOf(q, expr)
	return func(ctx context.Context, s Set) (any, error) {
		return count(ctx, s)
	}
}

// Sum returns a SUM(expr) aggregation operator; an empty set sums to zero
func Sum(q store.RowQuerier, expr string) func(context.Context, Set) (any, error) {
	sel := fmt.Sprintf("COALESCE(SUM(%s), 0)::float8", expr)
	return func(ctx context.Context, s Set) (any, error) {
		return Scalar[float64](ctx, q, s, sel)
	}
}
