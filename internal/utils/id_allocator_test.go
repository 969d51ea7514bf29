package utils

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateID(t *testing.T) {
	t.Run("FirstDrawFree", func(t *testing.T) {
		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		id, err := AllocateID(context.Background(), poolMock, UserIDExistsQuery)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, id, defaultMinID)
		assert.LessOrEqual(t, id, defaultMaxID)

		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("RetriesOnCollision", func(t *testing.T) {
		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		id, err := AllocateID(context.Background(), poolMock, TaskIDExistsQuery)
		require.NoError(t, err)
		assert.NotZero(t, id)

		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("SaturatedSpace", func(t *testing.T) {
		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		for i := 0; i < maxIDAttempts; i++ {
			poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		}

		_, err = AllocateID(context.Background(), poolMock, CategoryIDExistsQuery)
		assert.ErrorIs(t, err, ErrIDSpaceExhausted)

		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("RangeOverride", func(t *testing.T) {
		t.Setenv("MIN_ID", "10")
		t.Setenv("MAX_ID", "10")

		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		id, err := AllocateID(context.Background(), poolMock, UserIDExistsQuery)
		require.NoError(t, err)
		assert.Equal(t, int64(10), id)

		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}
