// Package repokit provides shared types for repository implementations
package repokit

import "github.com/openimis/openimis-be-dhis2-py/internal/platform/store"

// Queryer is the read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row
)
