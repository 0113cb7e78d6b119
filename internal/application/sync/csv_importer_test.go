package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

func csvSource(body string) *stubSource {
	return &stubSource{fetchProductCSV: func(context.Context) ([]byte, error) {
		return []byte(body), nil
	}}
}

func TestCSVImporter_Import(t *testing.T) {
	t.Run("updates mirrored prices by product code", func(t *testing.T) {
		product := existingProduct(t, uuid.New(), "GRVL1000", "Gravel Bike", 2500)

		repo := new(MockProductRepository)
		repo.On("FindByCode", mock.Anything, "GRVL1000").Return(&product, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
			return p.Code == "GRVL1000" && p.Price.String() == "2600"
		})).Return(nil)

		feed := "productID,name,price\nGRVL1000,Gravel Bike,2600 EUR\n"
		importer := NewCSVImporter(csvSource(feed), repo, t.TempDir(), nil)

		report, err := importer.Import(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.Rows)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Skipped)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a malformed header before any write", func(t *testing.T) {
		repo := new(MockProductRepository)

		feed := "id,title,cost\nGRVL1000,Gravel Bike,2600\n"
		importer := NewCSVImporter(csvSource(feed), repo, t.TempDir(), nil)

		report, err := importer.Import(context.Background())

		assert.Error(t, err)
		assert.Nil(t, report)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	})

	t.Run("skips rows with an empty name", func(t *testing.T) {
		repo := new(MockProductRepository)

		feed := "productID,name,price\nGRVL1000,,2600\n"
		importer := NewCSVImporter(csvSource(feed), repo, t.TempDir(), nil)

		report, err := importer.Import(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.Rows)
		assert.Equal(t, 0, report.Updated)
		assert.Equal(t, 1, report.Skipped)
		repo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("tolerates extra columns and reads the description", func(t *testing.T) {
		product := existingProduct(t, uuid.New(), "GRVL1000", "Gravel Bike", 2500)

		repo := new(MockProductRepository)
		repo.On("FindByCode", mock.Anything, "GRVL1000").Return(&product, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
			return p.Price.String() == "2600" && p.Description == "Carbon frame"
		})).Return(nil)

		feed := "productID,name,price,description\nGRVL1000,Gravel Bike,2600 EUR,Carbon frame\n"
		importer := NewCSVImporter(csvSource(feed), repo, t.TempDir(), nil)

		report, err := importer.Import(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Skipped)
		repo.AssertExpectations(t)
	})

	t.Run("skips rows with unusable prices and unknown codes", func(t *testing.T) {
		product := existingProduct(t, uuid.New(), "GRVL1000", "Gravel Bike", 2500)

		repo := new(MockProductRepository)
		repo.On("FindByCode", mock.Anything, "GRVL1000").Return(&product, nil)
		repo.On("FindByCode", mock.Anything, "GHOST9000").Return(nil, shared.ErrNotFound)

		feed := "productID,name,price\n" +
			"GRVL1000,Gravel Bike,null\n" +
			"GHOST9000,Ghost Bike,100\n"
		importer := NewCSVImporter(csvSource(feed), repo, t.TempDir(), nil)

		report, err := importer.Import(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, report.Rows)
		assert.Equal(t, 0, report.Updated)
		assert.Equal(t, 2, report.Skipped)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("archives the raw feed with a timestamped name", func(t *testing.T) {
		product := existingProduct(t, uuid.New(), "GRVL1000", "Gravel Bike", 2600)

		repo := new(MockProductRepository)
		repo.On("FindByCode", mock.Anything, "GRVL1000").Return(&product, nil)

		dir := t.TempDir()
		feed := "productID,name,price\nGRVL1000,Gravel Bike,2600\n"
		importer := NewCSVImporter(csvSource(feed), repo, dir, nil)

		report, err := importer.Import(context.Background())

		require.NoError(t, err)
		require.NotEmpty(t, report.ArchivedTo)
		assert.Equal(t, dir, filepath.Dir(report.ArchivedTo))
		assert.FileExists(t, report.ArchivedTo)
		assert.Equal(t, 1, report.Unchanged)
	})
}
