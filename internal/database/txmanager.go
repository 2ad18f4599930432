// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"sync"
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// localTxKey carries the in-memory unit of work, which also marks the lock as held.
type localTxKey struct{}

// Querier represents a database query executor (either *sql.DB or *sql.Tx).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages database transactions.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// sqlTxManager implements TxManager for SQL databases.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx executes the function within a database transaction.
// A nested call joins the transaction already present in ctx.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// GetTx retrieves a transaction from context, or returns the DB connection.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// localTx is the undo log of one in-memory unit of work.
type localTx struct {
	undo []func()
}

func (tx *localTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// OnRollback registers undo to run if the in-memory unit of work in ctx fails.
// Memory stores call it after each write. Outside such a unit of work it does
// nothing, so SQL-backed code paths never see it.
func OnRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(localTxKey{}).(*localTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// localTxManager serializes units of work for the in-memory stores. When fn
// fails or panics, the undo actions registered through OnRollback run in
// reverse order before the lock is released.
type localTxManager struct {
	mu sync.Mutex
}

// NewLocalTxManager creates a TxManager for the "memory" driver.
func NewLocalTxManager() TxManager {
	return &localTxManager{}
}

// WithTx runs fn while holding the process-wide lock. Nested calls join the
// unit of work already in ctx.
func (m *localTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(localTxKey{}).(*localTx); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &localTx{}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, localTxKey{}, tx)); err != nil {
		return err
	}
	committed = true
	return nil
}
