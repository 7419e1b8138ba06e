package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localMarketplace/internal/models"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Фиксация при успехе", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO listings").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectCommit()

		listing := &models.Listing{SellerID: 1, Title: "Lamp"}
		err := WithTx(ctx, db, func(repo *Repository) error {
			return repo.Listing.Create(ctx, listing)
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), listing.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Откат при ошибке", func(t *testing.T) {
		db, mock := setupMockDB(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO listings").WillReturnError(boom)
		mock.ExpectRollback()

		err := WithTx(ctx, db, func(repo *Repository) error {
			return repo.Listing.Create(ctx, &models.Listing{SellerID: 1, Title: "Lamp"})
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Транзакция не открылась", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("no connections"))

		called := false
		err := WithTx(ctx, db, func(repo *Repository) error {
			called = true
			return nil
		})

		require.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
