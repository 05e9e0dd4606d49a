package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// CategoryService owns category CRUD and the deletion guard.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryWithCount is the admin listing shape.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"productCount"`
}

// List returns all categories ordered by name, each with the number of
// products referencing it.
func (s *CategoryService) List(ctx context.Context) ([]CategoryWithCount, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	out := make([]CategoryWithCount, 0, len(categories))
	for _, cat := range categories {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Product{}).
			Where("category_id = ?", cat.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, CategoryWithCount{Category: cat, ProductCount: count})
	}
	return out, nil
}

// All returns every category ordered by name, without product counts.
func (s *CategoryService) All(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// Get returns one category by id.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category with id %q not found", id)
		}
		return nil, err
	}
	return &cat, nil
}

// Create adds a category; the name must not collide exactly with an
// existing one.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("category %q already exists", name)
	}
	cat := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// Update renames a category, rejecting duplicates of other rows.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("category %q already exists", name)
	}
	if err := s.db.WithContext(ctx).Model(cat).Update("name", name).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete removes a category only when no product references it; otherwise it
// fails with a conflict reporting the count.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("cannot delete category: %d product(s) are using this category", count)
	}
	return s.db.WithContext(ctx).Delete(cat).Error
}

// ProductsByCategory returns every product of one category, newest first.
func (s *CategoryService) ProductsByCategory(ctx context.Context, id uuid.UUID) ([]models.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("category_id = ?", id).
		Preload("Assets", preloadAssets).
		Preload("Category").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}
