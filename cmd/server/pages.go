package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"storefront/internal/apperr"
	"storefront/internal/content"
	"storefront/internal/storage"
)

func getPage(pages *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := pages.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, page, "")
	}
}

// pageBody decodes a page update either from a JSON body or from the "data"
// field of a multipart form carrying a banner image.
func pageBody(c *gin.Context) (content.PageInput, error) {
	var in content.PageInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		raw := c.PostForm("data")
		if raw == "" {
			return in, apperr.Invalid("data field is required")
		}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return in, apperr.Invalid("malformed data field: %v", err)
		}
		return in, nil
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		return in, apperr.Invalid("malformed request body")
	}
	return in, nil
}

func updateHomepage(pages *content.Service, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := pageBody(c)
		if err != nil {
			fail(c, err)
			return
		}
		if in.Title == "" || len(in.Sections) == 0 {
			fail(c, apperr.Invalid("title and sections are required"))
			return
		}
		var banner *storage.UploadedFile
		if fh, err := c.FormFile("banner"); err == nil {
			file, err := putImage(c, files, fh)
			if err != nil {
				fail(c, err)
				return
			}
			banner = &file
		}
		page, err := pages.UpdateHomepage(c.Request.Context(), in, banner)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, page, "homepage updated")
	}
}

func updateAboutPage(pages *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := pageBody(c)
		if err != nil {
			fail(c, err)
			return
		}
		if in.ID == uuid.Nil || in.Title == "" {
			fail(c, apperr.Invalid("id and title are required"))
			return
		}
		page, err := pages.UpdateAboutPage(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, page, "page updated")
	}
}

func updateBanner(pages *content.Service, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		sectionID, ok := pathID(c, "id")
		if !ok {
			return
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			fail(c, apperr.Invalid("invalid banner index"))
			return
		}
		var in content.BannerInput
		if v, ok := c.GetPostForm("title"); ok {
			in.Title = &v
		}
		if v, ok := c.GetPostForm("subtitle"); ok {
			in.Subtitle = &v
		}
		if v, ok := c.GetPostForm("buttonText"); ok {
			in.ButtonText = &v
		}
		if v, ok := c.GetPostForm("buttonLink"); ok {
			in.ButtonLink = &v
		}
		var file *storage.UploadedFile
		if fh, err := c.FormFile("image"); err == nil {
			uf, err := putImage(c, files, fh)
			if err != nil {
				fail(c, err)
				return
			}
			file = &uf
		}
		section, err := pages.UpdateBanner(c.Request.Context(), sectionID, index, in, file)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, section, "banner updated")
	}
}

func getContact(pages *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		section, err := pages.GetContact(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, section, "")
	}
}

func updateContact(pages *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Data datatypes.JSON `json:"data"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Data) == 0 {
			fail(c, apperr.Invalid("data is required"))
			return
		}
		section, err := pages.UpdateContact(c.Request.Context(), body.Data)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, section, "contact updated")
	}
}
