package tx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// contextKey type for storing transaction in context
type contextKey string

const txContextKey contextKey = "database_transaction"

// WithTransaction returns a context carrying the transaction. Repositories
// downstream pick it up through GetTransactional, which is how a session-end
// (history insert + live delete) commits as one unit without the
// repositories knowing about transactions.
func WithTransaction(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey, tx)
}

// TransactionFromContext extracts a transaction from the context
func TransactionFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey).(*sqlx.Tx)
	return tx, ok
}

// Transactional is the query surface shared by *sqlx.DB and *sqlx.Tx, which
// is all the repositories ever need
type Transactional interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// GetTransactional returns the context's transaction when one is in flight,
// otherwise the plain connection. Every repository routes its queries through
// this so the same repository call works inside and outside a transaction.
func GetTransactional(ctx context.Context, db *sqlx.DB) Transactional {
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx
	}
	return db
}
