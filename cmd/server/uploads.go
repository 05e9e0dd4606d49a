package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/storage"
)

func uploadImage(files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := singleImage(c, files, "image")
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"imageUrl": file.PublicURL()})
	}
}
