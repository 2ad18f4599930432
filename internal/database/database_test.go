package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "sqlite3", ConnectionString: ":memory:"})
		assert.Nil(t, db)
		assert.ErrorContains(t, err, `unsupported database driver "sqlite3"`)
	})

	t.Run("unreachable server fails the ping", func(t *testing.T) {
		db, err := Connect(Config{
			Driver:             "postgres",
			ConnectionString:   "postgres://u:p@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
			MaxOpenConnections: 1,
			MaxIdleConnections: 1,
			ConnMaxLifetime:    time.Minute,
		})
		assert.Nil(t, db)
		assert.ErrorContains(t, err, "failed to ping database")
	})
}
