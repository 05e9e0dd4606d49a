// Package content manages editable pages and their ordered sections:
// homepage/about updates with banner images, and the contact-info section.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/storage"
)

type Service struct {
	db    *gorm.DB
	files storage.Backend
}

func NewService(db *gorm.DB, files storage.Backend) *Service {
	return &Service{db: db, files: files}
}

// SectionInput is one section of a page update. A zero ID means "create".
type SectionInput struct {
	ID      uuid.UUID      `json:"id"`
	Type    string         `json:"type"`
	Data    datatypes.JSON `json:"data"`
	Order   int            `json:"order"`
	Visible bool           `json:"visible"`
}

// PageInput carries a page update.
type PageInput struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Published   bool           `json:"published"`
	Sections    []SectionInput `json:"sections"`
}

// GetBySlug returns a page with its sections in display order.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" ASC`) }).
		Where("slug = ?", slug).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("page with slug %q not found", slug)
		}
		return nil, err
	}
	return &page, nil
}

// UpdateHomepage updates the homepage fields and upserts its sections. When
// a banner file is supplied, every banner of each banner_carousel section in
// the update gets the new image.
func (s *Service) UpdateHomepage(ctx context.Context, in PageInput, banner *storage.UploadedFile) (*models.Page, error) {
	page, err := s.GetBySlug(ctx, "homepage")
	if err != nil {
		return nil, err
	}
	if banner != nil {
		for i, sec := range in.Sections {
			if sec.Type == models.SectionBannerCarousel {
				in.Sections[i].Data = stampBannerImage(sec.Data, banner.PublicURL())
			}
		}
	}
	if err := s.applyPageUpdate(ctx, page, in); err != nil {
		return nil, err
	}
	return s.GetBySlug(ctx, "homepage")
}

// UpdateAboutPage updates a page addressed by id and upserts its sections.
func (s *Service) UpdateAboutPage(ctx context.Context, in PageInput) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).
		Preload("Sections").
		First(&page, "id = ?", in.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("page with id %q not found", in.ID)
		}
		return nil, err
	}
	if err := s.applyPageUpdate(ctx, &page, in); err != nil {
		return nil, err
	}
	return s.GetBySlug(ctx, page.Slug)
}

func (s *Service) applyPageUpdate(ctx context.Context, page *models.Page, in PageInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"title":       in.Title,
			"description": in.Description,
			"published":   in.Published,
		}
		if err := tx.Model(page).Updates(updates).Error; err != nil {
			return err
		}
		existing := make(map[uuid.UUID]*models.Section, len(page.Sections))
		for i := range page.Sections {
			existing[page.Sections[i].ID] = &page.Sections[i]
		}
		for _, sec := range in.Sections {
			if cur, ok := existing[sec.ID]; ok {
				err := tx.Model(cur).Updates(map[string]any{
					"data":    sec.Data,
					"order":   sec.Order,
					"visible": sec.Visible,
				}).Error
				if err != nil {
					return err
				}
				continue
			}
			created := models.Section{
				PageID:  page.ID,
				Type:    sec.Type,
				Data:    sec.Data,
				Order:   sec.Order,
				Visible: sec.Visible,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BannerInput updates one banner of a carousel; nil fields are left alone.
type BannerInput struct {
	Title      *string `json:"title"`
	Subtitle   *string `json:"subtitle"`
	ButtonText *string `json:"buttonText"`
	ButtonLink *string `json:"buttonLink"`
}

// UpdateBanner edits one banner of a carousel section by index. A new image
// replaces the old one; the old file is deleted best-effort.
func (s *Service) UpdateBanner(ctx context.Context, sectionID uuid.UUID, index int, in BannerInput, file *storage.UploadedFile) (*models.Section, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).First(&section, "id = ?", sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("section with id %q not found", sectionID)
		}
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(section.Data, &data); err != nil {
		return nil, apperr.Invalid("section data is not valid JSON")
	}
	banners, _ := data["banners"].([]any)
	if index < 0 || index >= len(banners) {
		return nil, apperr.NotFound("banner not found at index %d", index)
	}
	banner, ok := banners[index].(map[string]any)
	if !ok {
		return nil, apperr.Invalid("banner at index %d has unexpected shape", index)
	}
	if in.Title != nil {
		banner["title"] = *in.Title
	}
	if in.Subtitle != nil {
		banner["subtitle"] = *in.Subtitle
	}
	if in.ButtonText != nil {
		banner["buttonText"] = *in.ButtonText
	}
	if in.ButtonLink != nil {
		banner["buttonLink"] = *in.ButtonLink
	}
	if file != nil {
		if old, _ := banner["image"].(string); old != "" {
			if err := s.files.Delete(ctx, old); err != nil {
				log.Printf("delete banner image %s: %v", old, err)
			}
		}
		banner["image"] = file.PublicURL()
	}
	banners[index] = banner
	data["banners"] = banners
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&section).Update("data", datatypes.JSON(raw)).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// GetContact returns the contact-info section (type ADDRESS).
func (s *Service) GetContact(ctx context.Context) (*models.Section, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).Where("type = ?", models.SectionAddress).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contact info not found")
		}
		return nil, err
	}
	return &section, nil
}

// UpdateContact replaces the contact-info section payload.
func (s *Service) UpdateContact(ctx context.Context, data datatypes.JSON) (*models.Section, error) {
	section, err := s.GetContact(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(section).Update("data", data).Error; err != nil {
		return nil, err
	}
	return section, nil
}

// stampBannerImage rewrites the image of every banner in a carousel payload.
func stampBannerImage(raw datatypes.JSON, imageURL string) datatypes.JSON {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return raw
	}
	banners, ok := data["banners"].([]any)
	if !ok {
		return raw
	}
	for i, b := range banners {
		if m, ok := b.(map[string]any); ok {
			m["image"] = imageURL
			banners[i] = m
		}
	}
	data["banners"] = banners
	out, err := json.Marshal(data)
	if err != nil {
		return raw
	}
	return datatypes.JSON(out)
}
