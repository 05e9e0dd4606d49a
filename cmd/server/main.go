package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"storefront/internal/analytics"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/content"
	mydb "storefront/internal/db"
	"storefront/internal/storage"
)

// mustBackend picks the file backend from the environment. With no
// CLOUDINARY_URL uploads land on local disk under ./uploads.
func mustBackend() storage.Backend {
	if url := os.Getenv("CLOUDINARY_URL"); url != "" {
		backend, err := storage.NewCloudinary(url)
		if err != nil {
			log.Fatal(err)
		}
		return backend
	}
	backend, err := storage.NewLocal("uploads")
	if err != nil {
		log.Fatal(err)
	}
	log.Println("CLOUDINARY_URL empty; storing uploads on local disk")
	return backend
}

func main() {
	// грузим .env из нескольких мест: текущая папка, родительская, корень репо
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	db := mydb.MustOpen()
	if err := mydb.Migrate(db); err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if err := auth.SeedAdmin(db, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatal(err)
	}

	files := mustBackend()
	products := catalog.NewProductService(db, files)
	categories := catalog.NewCategoryService(db)
	pages := content.NewService(db, files)
	traffic := analytics.NewService(db)
	sessions := auth.NewService(db)

	r := gin.Default()
	r.Static("/uploads", "./uploads")

	if origin := os.Getenv("FRONTEND_URL"); origin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{origin},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/api/health", func(c *gin.Context) {
		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	authRequired := sessions.Middleware()

	a := api.Group("/authentication")
	a.POST("/login", login(sessions))
	a.POST("/logout", logout(sessions))
	a.POST("/verify-session", verify(sessions))

	p := api.Group("/products")
	p.GET("", listProducts(products))
	p.GET("/catalog", catalogProducts(products))
	p.GET("/categories", activeCategories(products))
	p.GET("/all-categories", allCategories(categories))
	p.GET("/featured", featuredProducts(products))
	p.PUT("/featured", authRequired, setFeatured(products))
	p.GET("/:id", getProduct(products))
	p.POST("", authRequired, createProduct(products, files))
	p.PUT("/:id", authRequired, updateProduct(products, files))
	p.DELETE("/:id", authRequired, deleteProduct(products))
	p.PUT("/:id/main-image", authRequired, replaceMainImage(products, files))
	p.PUT("/:id/assets/:assetId", authRequired, replaceAsset(products, files))
	p.DELETE("/:id/assets/:assetId", authRequired, deleteAsset(products))
	p.PATCH("/:id/assets/reorder", authRequired, reorderAssets(products))

	cat := api.Group("/categories")
	cat.GET("", listCategories(categories))
	cat.GET("/:id/products", productsByCategory(categories))
	cat.POST("", authRequired, createCategory(categories))
	cat.PUT("/:id", authRequired, updateCategory(categories))
	cat.DELETE("/:id", authRequired, deleteCategory(categories))

	pg := api.Group("/pages")
	pg.GET("/:slug", getPage(pages))
	pg.PUT("/homepage", authRequired, updateHomepage(pages, files))
	pg.PUT("/about", authRequired, updateAboutPage(pages))
	pg.PUT("/sections/:id/banners/:index", authRequired, updateBanner(pages, files))

	contactGroup := api.Group("/contact")
	contactGroup.GET("", getContact(pages))
	contactGroup.PUT("", authRequired, updateContact(pages))

	an := api.Group("/analytics")
	an.POST("", recordAnalytic(traffic))
	an.GET("", trafficReport(traffic))

	api.POST("/uploads", authRequired, uploadImage(files))

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5000"
	}
	log.Println("Server listening on :" + port)
	log.Fatal(r.Run(":" + port))
}
