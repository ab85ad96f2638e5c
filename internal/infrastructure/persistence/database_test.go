package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		mdb := testutil.NewMockDBWithPings(t)
		defer mdb.Close()
		db := &Database{DB: mdb.DB}

		mdb.Mock.ExpectPing()

		require.NoError(t, db.Ping(context.Background()))
		mdb.ExpectationsWereMet(t)
	})

	t.Run("failed ping", func(t *testing.T) {
		mdb := testutil.NewMockDBWithPings(t)
		defer mdb.Close()
		db := &Database{DB: mdb.DB}

		mdb.Mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.EqualError(t, db.Ping(context.Background()), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	defer mdb.Close()
	db := &Database{DB: mdb.DB}

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestDatabase_Close(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	db := &Database{DB: mdb.DB}

	mdb.Mock.ExpectClose()

	require.NoError(t, db.Close())
	mdb.ExpectationsWereMet(t)
}
