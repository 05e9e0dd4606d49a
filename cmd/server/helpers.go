package main

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/apperr"
	"storefront/internal/storage"
)

func fail(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{"message": err.Error()})
}

func respond(c *gin.Context, status int, data any, message string) {
	body := gin.H{"data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, apperr.Invalid("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func checkImage(fh *multipart.FileHeader) error {
	if fh.Size > storage.MaxFileSize {
		return apperr.Invalid("file %s exceeds the %d byte limit", fh.Filename, storage.MaxFileSize)
	}
	if !storage.AllowedImageType(fh.Header.Get("Content-Type")) {
		return apperr.Invalid("only image files are allowed")
	}
	return nil
}

// putImage validates and stores one multipart file.
func putImage(c *gin.Context, backend storage.Backend, fh *multipart.FileHeader) (storage.UploadedFile, error) {
	if err := checkImage(fh); err != nil {
		return storage.UploadedFile{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return storage.UploadedFile{}, err
	}
	defer f.Close()
	return backend.Put(c.Request.Context(), f, fh.Filename)
}

// uploadImages validates every file of the "images" field up front, then
// stores them in order. A failed put rolls back the files stored so far.
func uploadImages(c *gin.Context, backend storage.Backend, max int) ([]storage.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		return nil, apperr.Invalid("parse multipart: %v", err)
	}
	if form == nil {
		return nil, nil
	}
	headers := form.File["images"]
	if len(headers) > max {
		return nil, apperr.Invalid("at most %d images are allowed", max)
	}
	for _, fh := range headers {
		if err := checkImage(fh); err != nil {
			return nil, err
		}
	}
	stored := make([]storage.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		uf, err := putImage(c, backend, fh)
		if err != nil {
			for _, prev := range stored {
				_ = backend.Delete(c.Request.Context(), prev.Locator())
			}
			return nil, err
		}
		stored = append(stored, uf)
	}
	return stored, nil
}

// singleImage requires exactly one uploaded file in the given field.
func singleImage(c *gin.Context, backend storage.Backend, field string) (storage.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return storage.UploadedFile{}, apperr.Invalid("no image file provided")
	}
	return putImage(c, backend, fh)
}
