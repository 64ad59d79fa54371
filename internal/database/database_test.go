package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		db, err := Connect(ctx, Config{Driver: "invalid", ConnectionString: "invalid"})
		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "sql: unknown driver")
	})

	t.Run("ping succeeds", func(t *testing.T) {
		mockDB, mock, err := sqlmock.NewWithDSN("compvault_connect_ok", sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = mockDB.Close() }()
		mock.ExpectPing()

		db, err := Connect(ctx, Config{
			Driver:             "sqlmock",
			ConnectionString:   "compvault_connect_ok",
			MaxOpenConnections: 4,
			MaxIdleConnections: 1,
			ConnMaxLifetime:    time.Minute,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, db.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		mockDB, mock, err := sqlmock.NewWithDSN("compvault_connect_fail", sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = mockDB.Close() }()
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		db, err := Connect(ctx, Config{Driver: "sqlmock", ConnectionString: "compvault_connect_fail"})
		assert.Nil(t, db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ping database")
	})
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db, time.Second))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = Ping(context.Background(), db, 0)
	require.Error(t, err)
	assert.Equal(t, "failed to ping database: connection refused", err.Error())

	assert.NoError(t, mock.ExpectationsWereMet())
}
