// Package catalog implements the product/category write path: transactional
// product creation with asset bulk-append, the ordered asset gallery
// (delete-with-renumbering, positional and by-id replace, reorder) and the
// category resolver.
package catalog

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/storage"
)

// DefaultAssetAlt is the placeholder alt text stamped on every uploaded asset.
const DefaultAssetAlt = "Alt-Image-Produk.png"

// ProductService owns products and their asset galleries.
type ProductService struct {
	db    *gorm.DB
	files storage.Backend
}

func NewProductService(db *gorm.DB, files storage.Backend) *ProductService {
	return &ProductService{db: db, files: files}
}

// ProductInput carries the writable product fields. Exactly one of
// CategoryID / CategoryName must be set.
type ProductInput struct {
	Name          string
	Price         float64
	Description   string
	Specification string
	CategoryID    string
	CategoryName  string
	Discount      float64
	Featured      bool
	Status        models.ProductStatus
}

// Filter narrows the public catalog listing.
type Filter struct {
	CategoryID *uuid.UUID
	PriceMin   *float64
	PriceMax   *float64
	Featured   *bool
}

// AssetOrder is one entry of a reorder request.
type AssetOrder struct {
	AssetID  uuid.UUID `json:"assetId"`
	NewOrder int       `json:"newOrder"`
}

func preloadAssets(db *gorm.DB) *gorm.DB {
	return db.Order(`"order" ASC`)
}

// resolveCategory validates a supplied category id, or finds-or-creates a
// category by name (case-insensitive match, original casing kept on create).
func (s *ProductService) resolveCategory(tx *gorm.DB, in ProductInput) (uuid.UUID, error) {
	if in.CategoryID != "" {
		id, err := uuid.Parse(in.CategoryID)
		if err != nil {
			return uuid.Nil, apperr.NotFound("category with id %q not found", in.CategoryID)
		}
		var cat models.Category
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apperr.NotFound("category with id %q not found", in.CategoryID)
			}
			return uuid.Nil, err
		}
		return cat.ID, nil
	}
	if in.CategoryName != "" {
		var cat models.Category
		err := tx.Where("LOWER(name) = LOWER(?)", in.CategoryName).First(&cat).Error
		switch {
		case err == nil:
			return cat.ID, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return uuid.Nil, err
		}
		cat = models.Category{Name: in.CategoryName}
		if err := tx.Create(&cat).Error; err != nil {
			return uuid.Nil, err
		}
		return cat.ID, nil
	}
	return uuid.Nil, apperr.Invalid("either category_name or category_id is required")
}

// appendAssets bulk-creates one asset row per uploaded file, continuing the
// order sequence from startOrder.
func appendAssets(tx *gorm.DB, productID uuid.UUID, files []storage.UploadedFile, startOrder int) error {
	if len(files) == 0 {
		return nil
	}
	assets := make([]models.Asset, 0, len(files))
	for i, f := range files {
		assets = append(assets, models.Asset{
			ProductID: productID,
			URL:       f.Locator(),
			Alt:       DefaultAssetAlt,
			Type:      models.AssetImage,
			Order:     startOrder + i + 1,
		})
	}
	return tx.Create(&assets).Error
}

// cleanupUploads removes files that made it to the backend before the
// transaction failed. Never fatal; orphan cleanup failures are logged only.
func (s *ProductService) cleanupUploads(ctx context.Context, files ...storage.UploadedFile) {
	for _, f := range files {
		if err := s.files.Delete(ctx, f.Locator()); err != nil {
			log.Printf("cleanup upload %s: %v", f.Locator(), err)
		}
	}
}

// deleteRemote removes a stored file after a committed mutation. Best-effort.
func (s *ProductService) deleteRemote(ctx context.Context, locator string) {
	if locator == "" {
		return
	}
	if err := s.files.Delete(ctx, locator); err != nil {
		log.Printf("delete file %s: %v", locator, err)
	}
}

// CreateCompleteProduct resolves the category, creates the product row and
// bulk-appends assets for the uploaded files inside one transaction. On any
// failure the transaction rolls back and every uploaded file is deleted.
func (s *ProductService) CreateCompleteProduct(ctx context.Context, in ProductInput, files []storage.UploadedFile) (*models.Product, error) {
	var productID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := s.resolveCategory(tx, in)
		if err != nil {
			return err
		}
		product := models.Product{
			Name:          in.Name,
			Price:         in.Price,
			Description:   in.Description,
			Specification: in.Specification,
			CategoryID:    categoryID,
			Discount:      in.Discount,
			Featured:      in.Featured,
			Status:        statusOrDraft(in.Status),
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		productID = product.ID
		return appendAssets(tx, product.ID, files, 0)
	})
	if err != nil {
		s.cleanupUploads(ctx, files...)
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

// UpdateProduct updates the product fields and appends new assets continuing
// from the current max order. Same rollback/cleanup contract as create.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, files []storage.UploadedFile) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product with id %q not found", id)
			}
			return err
		}
		categoryID, err := s.resolveCategory(tx, in)
		if err != nil {
			return err
		}
		updates := map[string]any{
			"name":          in.Name,
			"price":         in.Price,
			"description":   in.Description,
			"specification": in.Specification,
			"category_id":   categoryID,
			"discount":      in.Discount,
			"featured":      in.Featured,
			"status":        statusOrDraft(in.Status),
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		var maxOrder int
		if err := tx.Model(&models.Asset{}).
			Where("product_id = ?", id).
			Select(`COALESCE(MAX("order"), 0)`).
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		return appendAssets(tx, id, files, maxOrder)
	})
	if err != nil {
		s.cleanupUploads(ctx, files...)
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product and its assets; stored files are deleted
// first (best-effort), then the rows. Returns a snapshot of the deleted
// product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range product.Assets {
		s.deleteRemote(ctx, a.URL)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Asset{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteAsset removes one asset and closes the gap: every asset of the same
// product with a higher order is decremented by 1 in the same transaction.
// The stored file is deleted only after commit.
func (s *ProductService) DeleteAsset(ctx context.Context, productID, assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND product_id = ?", assetID, productID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("asset with id %q not found for product %q", assetID, productID)
			}
			return err
		}
		if err := tx.Delete(&asset).Error; err != nil {
			return err
		}
		return tx.Model(&models.Asset{}).
			Where(`product_id = ? AND "order" > ?`, productID, asset.Order).
			UpdateColumn("order", gorm.Expr(`"order" - 1`)).Error
	})
	if err != nil {
		return nil, err
	}
	s.deleteRemote(ctx, asset.URL)
	return &asset, nil
}

// ReplaceMainImage replaces the asset at order 1.
func (s *ProductService) ReplaceMainImage(ctx context.Context, productID uuid.UUID, file storage.UploadedFile) (*models.Product, error) {
	return s.ReplaceAssetByOrder(ctx, productID, 1, file)
}

// ReplaceAssetByOrder ensures the given order slot holds the new file: the
// existing asset at that order (if any) is deleted and a fresh one created in
// its place. The old file is deleted after commit; on failure the new upload
// is cleaned up instead.
func (s *ProductService) ReplaceAssetByOrder(ctx context.Context, productID uuid.UUID, order int, file storage.UploadedFile) (*models.Product, error) {
	var oldURL string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Product{}, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product with id %q not found", productID)
			}
			return err
		}
		var existing models.Asset
		err := tx.Where(`product_id = ? AND "order" = ?`, productID, order).First(&existing).Error
		switch {
		case err == nil:
			oldURL = existing.URL
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		replacement := models.Asset{
			ProductID: productID,
			URL:       file.Locator(),
			Alt:       DefaultAssetAlt,
			Type:      models.AssetImage,
			Order:     order,
		}
		return tx.Create(&replacement).Error
	})
	if err != nil {
		s.cleanupUploads(ctx, file)
		return nil, err
	}
	s.deleteRemote(ctx, oldURL)
	return s.GetProduct(ctx, productID)
}

// ReplaceAssetByID swaps the file of an existing asset in place, keeping its
// order. Same cleanup contract as ReplaceAssetByOrder.
func (s *ProductService) ReplaceAssetByID(ctx context.Context, productID, assetID uuid.UUID, file storage.UploadedFile) (*models.Product, error) {
	var oldURL string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ? AND product_id = ?", assetID, productID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("asset with id %q not found for product %q", assetID, productID)
			}
			return err
		}
		oldURL = asset.URL
		return tx.Model(&asset).Updates(map[string]any{
			"url": file.Locator(),
			"alt": DefaultAssetAlt,
		}).Error
	})
	if err != nil {
		s.cleanupUploads(ctx, file)
		return nil, err
	}
	s.deleteRemote(ctx, oldURL)
	return s.GetProduct(ctx, productID)
}

// ReorderAssets applies the caller-supplied {asset id -> order} mapping after
// verifying every referenced asset belongs to the product. The caller owns
// keeping the resulting sequence contiguous.
func (s *ProductService) ReorderAssets(ctx context.Context, productID uuid.UUID, orders []AssetOrder) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.Asset{}).Where("product_id = ?", productID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		owned := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			owned[id] = true
		}
		for _, o := range orders {
			if !owned[o.AssetID] {
				return apperr.NotFound("asset with id %q not found for product %q", o.AssetID, productID)
			}
		}
		for _, o := range orders {
			if err := tx.Model(&models.Asset{}).
				Where("id = ? AND product_id = ?", o.AssetID, productID).
				UpdateColumn("order", o.NewOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

// GetProduct returns one product with its ordered assets and category.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Assets", preloadAssets).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with id %q not found", id)
		}
		return nil, err
	}
	return &product, nil
}

// ListProducts returns every product with ordered assets and category.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Assets", preloadAssets).
		Preload("Category").
		Find(&products).Error
	return products, err
}

// FeaturedProducts returns active products flagged as featured.
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("featured = ? AND status = ?", true, models.StatusActive).
		Preload("Assets", preloadAssets).
		Preload("Category").
		Find(&products).Error
	return products, err
}

// ActiveProducts returns the public catalog with optional filters.
func (s *ProductService) ActiveProducts(ctx context.Context, f Filter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	var products []models.Product
	err := q.Preload("Assets", preloadAssets).
		Preload("Category").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// ActiveCategories returns the categories that have at least one active
// product, ordered by name.
func (s *ProductService) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ?", models.StatusActive).
		Distinct("category_id").
		Pluck("category_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	var categories []models.Category
	err = s.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&categories).Error
	return categories, err
}

// SetFeatured marks exactly the given products as featured and clears the
// flag everywhere else.
func (s *ProductService) SetFeatured(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("featured = ?", true).
			UpdateColumn("featured", false).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.Product{}).
			Where("id IN ?", ids).
			UpdateColumn("featured", true).Error
	})
	if err != nil {
		return nil, err
	}
	var featured []models.Product
	err = s.db.WithContext(ctx).
		Where("featured = ?", true).
		Preload("Assets", preloadAssets).
		Preload("Category").
		Find(&featured).Error
	return featured, err
}

func statusOrDraft(st models.ProductStatus) models.ProductStatus {
	if st == models.StatusActive {
		return models.StatusActive
	}
	return models.StatusDraft
}
