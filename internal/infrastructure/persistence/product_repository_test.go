package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func productRows(products ...*catalog.Product) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "code", "name", "description", "price", "created_at", "updated_at"})
	for _, p := range products {
		rows.AddRow(p.ID, p.Code, p.Name, p.Description, p.Price, time.Now(), time.Now())
	}
	return rows
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		price := decimal.NewFromInt(2500)
		product, err := catalog.NewProduct(productID, "GRVL1000", "Gravel Bike", "", price)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(productRows(product))

		found, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, productID, found.ID)
		assert.Equal(t, "GRVL1000", found.Code)
		assert.True(t, found.Price.Equal(price))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByID(context.Background(), productID)

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByCode(t *testing.T) {
	t.Run("finds product by code", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product, err := catalog.NewProduct(uuid.New(), "EBIKE2000", "City E-Bike", "", decimal.NewFromInt(3200))
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("EBIKE2000", 1).
			WillReturnRows(productRows(product))

		found, err := repo.FindByCode(context.Background(), "EBIKE2000")

		assert.NoError(t, err)
		assert.Equal(t, "EBIKE2000", found.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	t.Run("returns all products ordered by name", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p1, _ := catalog.NewProduct(uuid.New(), "GRVL1000", "Gravel Bike", "", decimal.NewFromInt(2500))
		p2, _ := catalog.NewProduct(uuid.New(), "MTB3000", "Mountain Bike", "", decimal.NewFromInt(1800))

		mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY name asc`).
			WillReturnRows(productRows(p1, p2))

		products, err := repo.FindAll(context.Background())

		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_ReplaceAll(t *testing.T) {
	t.Run("upserts batch and sweeps stale rows in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product, err := catalog.NewProduct(uuid.New(), "GRVL1000", "Gravel Bike", "", decimal.NewFromInt(2500))
		require.NoError(t, err)
		keep := map[uuid.UUID]struct{}{product.ID: {}}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT \("id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "products" WHERE id NOT IN \(\$1\)`).
			WithArgs(product.ID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		deleted, err := repo.ReplaceAll(context.Background(), []*catalog.Product{product}, keep)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when an upsert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product, err := catalog.NewProduct(uuid.New(), "GRVL1000", "Gravel Bike", "", decimal.NewFromInt(2500))
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "products"`).
			WillReturnError(gorm.ErrInvalidData)
		mock.ExpectRollback()

		_, err = repo.ReplaceAll(context.Background(), []*catalog.Product{product}, map[uuid.UUID]struct{}{product.ID: {}})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
