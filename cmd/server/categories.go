package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
)

type categoryBody struct {
	Name string `json:"name"`
}

func (b categoryBody) validate() error {
	name := strings.TrimSpace(b.Name)
	if len(name) < 2 || len(name) > 50 {
		return apperr.Invalid("category name must be between 2 and 50 characters")
	}
	return nil
}

func listCategories(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := categories.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

func createCategory(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body categoryBody
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, apperr.Invalid("name is required"))
			return
		}
		if err := body.validate(); err != nil {
			fail(c, err)
			return
		}
		cat, err := categories.Create(c.Request.Context(), body.Name)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, cat, "category created")
	}
}

func updateCategory(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var body categoryBody
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, apperr.Invalid("name is required"))
			return
		}
		if err := body.validate(); err != nil {
			fail(c, err)
			return
		}
		cat, err := categories.Update(c.Request.Context(), id, body.Name)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, cat, "category updated")
	}
}

func deleteCategory(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := categories.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, nil, "category deleted")
	}
}

func productsByCategory(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		items, err := categories.ProductsByCategory(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}
