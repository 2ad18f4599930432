package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		tx := ctx.Value(txKey{})
		assert.NotNil(t, tx)
		assert.IsType(t, &sql.Tx{}, tx)
		assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedJoinsOuterTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		outer := GetTx(ctx, db)
		return txManager.WithTx(ctx, func(inner context.Context) error {
			assert.Same(t, outer, GetTx(inner, db))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_ReturnsDBOutsideTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, db, GetTx(context.Background(), db))
}

func TestLocalTxManager(t *testing.T) {
	t.Run("serializes concurrent units of work", func(t *testing.T) {
		txManager := NewLocalTxManager()
		counter := 0

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = txManager.WithTx(context.Background(), func(ctx context.Context) error {
					current := counter
					counter = current + 1
					return nil
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})

	t.Run("nested call does not deadlock", func(t *testing.T) {
		txManager := NewLocalTxManager()
		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return txManager.WithTx(ctx, func(ctx context.Context) error {
				return nil
			})
		})
		assert.NoError(t, err)
	})

	t.Run("propagates errors", func(t *testing.T) {
		txManager := NewLocalTxManager()
		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
	})

	t.Run("failure replays undo log in reverse", func(t *testing.T) {
		txManager := NewLocalTxManager()
		var undone []string

		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			OnRollback(ctx, func() { undone = append(undone, "first") })
			return txManager.WithTx(ctx, func(ctx context.Context) error {
				OnRollback(ctx, func() { undone = append(undone, "nested") })
				return errors.New("audit append failed")
			})
		})
		assert.EqualError(t, err, "audit append failed")
		assert.Equal(t, []string{"nested", "first"}, undone)
	})

	t.Run("commit discards undo log", func(t *testing.T) {
		txManager := NewLocalTxManager()
		undone := 0

		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			OnRollback(ctx, func() { undone++ })
			return nil
		})
		assert.NoError(t, err)
		assert.Zero(t, undone)
	})

	t.Run("panic rolls back and releases the lock", func(t *testing.T) {
		txManager := NewLocalTxManager()
		undone := 0

		assert.Panics(t, func() {
			_ = txManager.WithTx(context.Background(), func(ctx context.Context) error {
				OnRollback(ctx, func() { undone++ })
				panic("boom")
			})
		})
		assert.Equal(t, 1, undone)
		assert.NoError(t, txManager.WithTx(context.Background(), func(context.Context) error { return nil }))
	})

	t.Run("outside a unit of work OnRollback is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { OnRollback(context.Background(), func() { t.Fatal("must not run") }) })
	})
}
