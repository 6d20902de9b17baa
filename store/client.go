package store

import (
	"context"
)

// Row is a single record in the remote datastore's wire shape: snake_case
// column keys, scalar values, json columns carried as serialized text.
// Translation to the aggregate shape happens in the loaders, not here.
type Row map[string]any

type FilterOp string

const (
	OpEq FilterOp = "eq"
	OpIn FilterOp = "in"
)

type Filter struct {
	Column string
	Op     FilterOp
	Value  any
	Values []any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

func In(column string, values []any) Filter {
	return Filter{Column: column, Op: OpIn, Values: values}
}

func InStrings(column string, values []string) Filter {
	anys := make([]any, 0, len(values))
	for _, v := range values {
		anys = append(anys, v)
	}
	return In(column, anys)
}

// Query is an explicit query specification interpreted by one evaluator per
// backend. It replaces the chained select().eq().order() style of the remote
// client library.
type Query struct {
	Table      string
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Client is the seam between the state provider and a backend. Both the
// relational evaluator and the mock engine satisfy it with identical
// observable behavior.
type Client interface {
	// Select returns all rows matching the query.
	Select(ctx context.Context, q Query) ([]Row, error)

	// SelectOne returns the first matching row, or (nil, nil) if none match.
	// Zero rows is not an error.
	SelectOne(ctx context.Context, q Query) (Row, error)

	// Insert writes the given rows and returns them as persisted, with ids
	// assigned where the caller supplied none.
	Insert(ctx context.Context, table string, rows []Row) ([]Row, error)

	Update(ctx context.Context, table string, changes Row, filters ...Filter) error

	Delete(ctx context.Context, table string, filters ...Filter) error

	Auth() AuthClient
}
