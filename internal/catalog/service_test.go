package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/apperr"
	"storefront/internal/db"
	"storefront/internal/models"
	"storefront/internal/storage"
)

type fakeBackend struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeBackend) Put(_ context.Context, _ io.Reader, name string) (storage.UploadedFile, error) {
	return storage.UploadedFile{Location: "https://cdn.test/" + name}, nil
}

func (f *fakeBackend) Delete(_ context.Context, locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, locator)
	return nil
}

func (f *fakeBackend) deletedLocators() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func uploaded(names ...string) []storage.UploadedFile {
	files := make([]storage.UploadedFile, 0, len(names))
	for _, n := range names {
		files = append(files, storage.UploadedFile{Location: "https://cdn.test/" + n})
	}
	return files
}

func mustCategory(t *testing.T, conn *gorm.DB, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name}
	require.NoError(t, conn.Create(&cat).Error)
	return cat
}

func TestCreateCompleteProductAssignsOrders(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Chairs")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:       "Club Chair",
		Price:      120,
		CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg"))
	require.NoError(t, err)

	require.Len(t, product.Assets, 2)
	assert.Equal(t, 1, product.Assets[0].Order)
	assert.Equal(t, 2, product.Assets[1].Order)
	assert.Equal(t, "https://cdn.test/a.jpg", product.Assets[0].URL)
	assert.Equal(t, DefaultAssetAlt, product.Assets[0].Alt)
	assert.Equal(t, models.AssetImage, product.Assets[0].Type)
	assert.Equal(t, models.StatusDraft, product.Status)
	assert.Empty(t, files.deletedLocators())
}

func TestCreateCompleteProductUnknownCategoryRollsBack(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)

	_, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:       "Orphan",
		Price:      10,
		CategoryID: uuid.NewString(),
	}, uploaded("a.jpg", "b.jpg"))
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusOf(err))

	var products, assets int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, conn.Model(&models.Asset{}).Count(&assets).Error)
	assert.Zero(t, products)
	assert.Zero(t, assets)
	assert.ElementsMatch(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, files.deletedLocators())
}

func TestCreateCompleteProductReusesCategoryCaseInsensitive(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Tables")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:         "Dining Table",
		Price:        300,
		CategoryName: "tAbLeS",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, product.CategoryID)

	var count int64
	require.NoError(t, conn.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateCompleteProductCreatesMissingCategory(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:         "Lamp",
		Price:        45,
		CategoryName: "Lighting",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Lighting", product.Category.Name)
}

func TestCreateCompleteProductRequiresCategoryReference(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})

	_, err := svc.CreateCompleteProduct(context.Background(), ProductInput{Name: "X", Price: 1}, nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.StatusOf(err))
}

func TestUpdateProductAppendsFromMaxOrder(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Sofas")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:       "Loveseat",
		Price:      500,
		CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), product.ID, ProductInput{
		Name:       "Loveseat XL",
		Price:      550,
		CategoryID: cat.ID.String(),
		Status:     models.StatusActive,
	}, uploaded("d.jpg"))
	require.NoError(t, err)

	assert.Equal(t, "Loveseat XL", updated.Name)
	assert.Equal(t, models.StatusActive, updated.Status)
	require.Len(t, updated.Assets, 4)
	assert.Equal(t, 4, updated.Assets[3].Order)
	assert.Equal(t, "https://cdn.test/d.jpg", updated.Assets[3].URL)
}

func TestDeleteAssetRenumbersRemaining(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Desks")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name:       "Desk",
		Price:      200,
		CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg", "c.jpg", "d.jpg"))
	require.NoError(t, err)

	deleted, err := svc.DeleteAsset(context.Background(), product.ID, product.Assets[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted.Order)
	assert.Contains(t, files.deletedLocators(), "https://cdn.test/b.jpg")

	after, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, after.Assets, 3)
	for i, a := range after.Assets {
		assert.Equal(t, i+1, a.Order)
	}
	assert.Equal(t, "https://cdn.test/a.jpg", after.Assets[0].URL)
	assert.Equal(t, "https://cdn.test/c.jpg", after.Assets[1].URL)
	assert.Equal(t, "https://cdn.test/d.jpg", after.Assets[2].URL)
}

func TestDeleteAssetWrongProduct(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Beds")

	p1, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Bed A", Price: 1, CategoryID: cat.ID.String(),
	}, uploaded("a.jpg"))
	require.NoError(t, err)
	p2, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Bed B", Price: 1, CategoryID: cat.ID.String(),
	}, uploaded("b.jpg"))
	require.NoError(t, err)

	_, err = svc.DeleteAsset(context.Background(), p2.ID, p1.Assets[0].ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusOf(err))

	after, err := svc.GetProduct(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Len(t, after.Assets, 1)
}

func TestReplaceMainImageKeepsCountAndDeletesOldFile(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Rugs")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Rug", Price: 80, CategoryID: cat.ID.String(),
	}, uploaded("old.jpg", "side.jpg"))
	require.NoError(t, err)

	after, err := svc.ReplaceMainImage(context.Background(), product.ID, uploaded("new.jpg")[0])
	require.NoError(t, err)

	require.Len(t, after.Assets, 2)
	assert.Equal(t, 1, after.Assets[0].Order)
	assert.Equal(t, "https://cdn.test/new.jpg", after.Assets[0].URL)
	assert.Equal(t, "https://cdn.test/side.jpg", after.Assets[1].URL)
	assert.Contains(t, files.deletedLocators(), "https://cdn.test/old.jpg")
}

func TestReplaceAssetByOrderFillsEmptySlot(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Shelves")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Shelf", Price: 60, CategoryID: cat.ID.String(),
	}, nil)
	require.NoError(t, err)

	after, err := svc.ReplaceMainImage(context.Background(), product.ID, uploaded("main.jpg")[0])
	require.NoError(t, err)
	require.Len(t, after.Assets, 1)
	assert.Equal(t, 1, after.Assets[0].Order)
	assert.Empty(t, files.deletedLocators())
}

func TestReplaceMainImageUnknownProductCleansUpUpload(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)

	_, err := svc.ReplaceMainImage(context.Background(), uuid.New(), uploaded("new.jpg")[0])
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusOf(err))
	assert.Equal(t, []string{"https://cdn.test/new.jpg"}, files.deletedLocators())
}

func TestReplaceAssetByIDPreservesOrder(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Mirrors")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Mirror", Price: 40, CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)

	target := product.Assets[1]
	after, err := svc.ReplaceAssetByID(context.Background(), product.ID, target.ID, uploaded("swap.jpg")[0])
	require.NoError(t, err)

	require.Len(t, after.Assets, 3)
	assert.Equal(t, 2, after.Assets[1].Order)
	assert.Equal(t, target.ID, after.Assets[1].ID)
	assert.Equal(t, "https://cdn.test/swap.jpg", after.Assets[1].URL)
	assert.Contains(t, files.deletedLocators(), "https://cdn.test/b.jpg")
}

func TestReorderAssets(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Stools")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Stool", Price: 25, CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)

	after, err := svc.ReorderAssets(context.Background(), product.ID, []AssetOrder{
		{AssetID: product.Assets[0].ID, NewOrder: 3},
		{AssetID: product.Assets[1].ID, NewOrder: 1},
		{AssetID: product.Assets[2].ID, NewOrder: 2},
	})
	require.NoError(t, err)

	require.Len(t, after.Assets, 3)
	assert.Equal(t, "https://cdn.test/b.jpg", after.Assets[0].URL)
	assert.Equal(t, "https://cdn.test/c.jpg", after.Assets[1].URL)
	assert.Equal(t, "https://cdn.test/a.jpg", after.Assets[2].URL)
}

func TestReorderAssetsRejectsForeignAsset(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Vases")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Vase", Price: 15, CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg"))
	require.NoError(t, err)

	stray := uuid.New()
	_, err = svc.ReorderAssets(context.Background(), product.ID, []AssetOrder{
		{AssetID: product.Assets[0].ID, NewOrder: 2},
		{AssetID: stray, NewOrder: 1},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusOf(err))
	assert.Contains(t, err.Error(), stray.String())

	after, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Assets[0].Order)
	assert.Equal(t, 2, after.Assets[1].Order)
}

func TestDeleteProductRemovesRowsAndFiles(t *testing.T) {
	conn := testDB(t)
	files := &fakeBackend{}
	svc := NewProductService(conn, files)
	cat := mustCategory(t, conn, "Clocks")

	product, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Clock", Price: 30, CategoryID: cat.ID.String(),
	}, uploaded("a.jpg", "b.jpg"))
	require.NoError(t, err)

	snapshot, err := svc.DeleteProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, snapshot.ID)
	assert.Len(t, snapshot.Assets, 2)

	var products, assets int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, conn.Model(&models.Asset{}).Count(&assets).Error)
	assert.Zero(t, products)
	assert.Zero(t, assets)
	assert.ElementsMatch(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, files.deletedLocators())
}

func TestActiveProductsFilters(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	chairs := mustCategory(t, conn, "Chairs")
	tables := mustCategory(t, conn, "Tables")

	for i, tc := range []struct {
		name     string
		price    float64
		category uuid.UUID
		status   models.ProductStatus
	}{
		{"Cheap Chair", 50, chairs.ID, models.StatusActive},
		{"Pricey Chair", 500, chairs.ID, models.StatusActive},
		{"Hidden Table", 100, tables.ID, models.StatusDraft},
	} {
		_, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
			Name:       fmt.Sprintf("%s-%d", tc.name, i),
			Price:      tc.price,
			CategoryID: tc.category.String(),
			Status:     tc.status,
		}, nil)
		require.NoError(t, err)
	}

	all, err := svc.ActiveProducts(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	max := 100.0
	cheap, err := svc.ActiveProducts(context.Background(), Filter{PriceMax: &max})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Contains(t, cheap[0].Name, "Cheap Chair")

	cats, err := svc.ActiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Chairs", cats[0].Name)
}

func TestSetFeaturedReplacesSelection(t *testing.T) {
	conn := testDB(t)
	svc := NewProductService(conn, &fakeBackend{})
	cat := mustCategory(t, conn, "Lamps")

	first, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Lamp A", Price: 10, CategoryID: cat.ID.String(), Featured: true, Status: models.StatusActive,
	}, nil)
	require.NoError(t, err)
	second, err := svc.CreateCompleteProduct(context.Background(), ProductInput{
		Name: "Lamp B", Price: 12, CategoryID: cat.ID.String(), Status: models.StatusActive,
	}, nil)
	require.NoError(t, err)

	featured, err := svc.SetFeatured(context.Background(), []uuid.UUID{second.ID})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, second.ID, featured[0].ID)

	reloaded, err := svc.GetProduct(context.Background(), first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Featured)
}
