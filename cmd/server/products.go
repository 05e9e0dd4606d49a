package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/storage"
)

// productForm reads the writable product fields out of a multipart form.
func productForm(c *gin.Context) (catalog.ProductInput, error) {
	var in catalog.ProductInput
	in.Name = c.PostForm("name")
	if in.Name == "" {
		return in, apperr.Invalid("name is required")
	}
	rawPrice := c.PostForm("price")
	if rawPrice == "" {
		return in, apperr.Invalid("price is required")
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return in, apperr.Invalid("price must be a number")
	}
	in.Price = price
	in.Description = c.PostForm("description")
	in.Specification = c.PostForm("specification")
	in.CategoryID = c.PostForm("categoryId")
	in.CategoryName = c.PostForm("categoryName")
	if in.CategoryID == "" && in.CategoryName == "" {
		return in, apperr.Invalid("categoryId or categoryName is required")
	}
	if raw := c.PostForm("discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, apperr.Invalid("discount must be a number")
		}
		in.Discount = discount
	}
	if raw := c.PostForm("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return in, apperr.Invalid("featured must be a boolean")
		}
		in.Featured = featured
	}
	in.Status = models.ProductStatus(c.PostForm("status"))
	return in, nil
}

func listProducts(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := products.ListProducts(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

// catalogProducts serves the public listing with optional filters.
func catalogProducts(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f catalog.Filter
		if raw := c.Query("categoryId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				fail(c, apperr.Invalid("invalid categoryId"))
				return
			}
			f.CategoryID = &id
		}
		if raw := c.Query("priceMin"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fail(c, apperr.Invalid("priceMin must be a number"))
				return
			}
			f.PriceMin = &v
		}
		if raw := c.Query("priceMax"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fail(c, apperr.Invalid("priceMax must be a number"))
				return
			}
			f.PriceMax = &v
		}
		if raw := c.Query("featured"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				fail(c, apperr.Invalid("featured must be a boolean"))
				return
			}
			f.Featured = &v
		}
		items, err := products.ActiveProducts(c.Request.Context(), f)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

func featuredProducts(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := products.FeaturedProducts(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

func activeCategories(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := products.ActiveCategories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

func allCategories(categories *catalog.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := categories.All(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "")
	}
}

func getProduct(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		product, err := products.GetProduct(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "")
	}
}

func createProduct(products *catalog.ProductService, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := productForm(c)
		if err != nil {
			fail(c, err)
			return
		}
		uploads, err := uploadImages(c, files, storage.MaxProductImages)
		if err != nil {
			fail(c, err)
			return
		}
		product, err := products.CreateCompleteProduct(c.Request.Context(), in, uploads)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, product, "product created")
	}
}

func updateProduct(products *catalog.ProductService, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		in, err := productForm(c)
		if err != nil {
			fail(c, err)
			return
		}
		uploads, err := uploadImages(c, files, storage.MaxProductImages)
		if err != nil {
			fail(c, err)
			return
		}
		product, err := products.UpdateProduct(c.Request.Context(), id, in, uploads)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "product updated")
	}
}

func deleteProduct(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		product, err := products.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "product deleted")
	}
}

func deleteAsset(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		assetID, ok := pathID(c, "assetId")
		if !ok {
			return
		}
		asset, err := products.DeleteAsset(c.Request.Context(), id, assetID)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, asset, "asset deleted")
	}
}

func replaceMainImage(products *catalog.ProductService, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		file, err := singleImage(c, files, "image")
		if err != nil {
			fail(c, err)
			return
		}
		product, err := products.ReplaceMainImage(c.Request.Context(), id, file)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "main image replaced")
	}
}

func replaceAsset(products *catalog.ProductService, files storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		assetID, ok := pathID(c, "assetId")
		if !ok {
			return
		}
		file, err := singleImage(c, files, "image")
		if err != nil {
			fail(c, err)
			return
		}
		product, err := products.ReplaceAssetByID(c.Request.Context(), id, assetID, file)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "asset replaced")
	}
}

func reorderAssets(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var body struct {
			AssetOrderMap []catalog.AssetOrder `json:"assetOrderMap"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || len(body.AssetOrderMap) == 0 {
			fail(c, apperr.Invalid("assetOrderMap is required"))
			return
		}
		product, err := products.ReorderAssets(c.Request.Context(), id, body.AssetOrderMap)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, product, "assets reordered")
	}
}

func setFeatured(products *catalog.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProductIDs []uuid.UUID `json:"productIds"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, apperr.Invalid("productIds is required"))
			return
		}
		items, err := products.SetFeatured(c.Request.Context(), body.ProductIDs)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, items, "featured products updated")
	}
}
