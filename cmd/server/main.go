package main

import (
	"context"
	"log"
	"time"

	"stock-app/config"
	"stock-app/internal/cache"
	"stock-app/internal/handler"
	"stock-app/internal/middleware"
	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Configuration
	config.LoadConfig()

	// 2. Connect to Database
	database.Connect()

	// 3. Auto-Migrate Models
	log.Println("Running migrations...")

	err := database.DB.AutoMigrate(
		&models.Stock{},
		&models.User{},
		&models.Product{},
		&models.Barcode{},
		&models.Client{},
		&models.Fournisseur{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.ReturnTransaction{},
		&models.ReturnItem{},
		&models.StockMovement{},
		&models.StockMovementItem{},
		&models.Invoice{},
		&models.InvoiceFile{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	// 3a. Seed Data
	database.SeedStocksAndAdmin()

	// 3b. Stats cache (optional Redis)
	var statsCache cache.StatsCache = cache.NoopStatsCache{}
	if addr := config.AppConfig.Redis.Addr; addr != "" {
		redisCache := cache.NewRedisStatsCache(addr, config.AppConfig.Redis.Password, config.AppConfig.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("Redis unreachable, stats cache disabled: %v", err)
		} else {
			statsCache = redisCache
		}
		cancel()
	}

	// 4. Initialize Router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Best-effort per-IP limiter on the whole surface
	limiter := middleware.NewRateLimiter(300, time.Minute)
	r.Use(limiter.Middleware())

	// 5. Setup Routes
	authHandler := &handler.AuthHandler{}
	r.POST("/auth/login", authHandler.Login)

	salesHandler := &handler.SalesHandler{}
	returnsHandler := &handler.ReturnsHandler{}
	movementsHandler := &handler.MovementsHandler{}
	productsHandler := &handler.ProductsHandler{}
	duplicatesHandler := &handler.DuplicatesHandler{}
	clientsHandler := &handler.ClientsHandler{}
	fournisseursHandler := &handler.FournisseursHandler{}
	purchasesHandler := &handler.PurchasesHandler{}
	invoicesHandler := &handler.InvoicesHandler{}
	usersHandler := &handler.UsersHandler{}
	statsHandler := handler.NewStatsHandler(statsCache)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/sales", salesHandler.CreateSale)
		api.GET("/sales", salesHandler.ListSales)
		api.GET("/sales/:id", salesHandler.GetSale)
		api.PUT("/sales/:id", salesHandler.UpdateSale)
		api.DELETE("/sales/:id", salesHandler.DeleteSale)
		api.PUT("/sales/:id/barcode", salesHandler.GenerateSaleBarcode)
		api.GET("/sales/:id/barcode", salesHandler.GetSaleBarcode)

		api.POST("/returns/create-from-sale", returnsHandler.CreateFromSale)
		api.GET("/returns", returnsHandler.ListReturns)
		api.GET("/returns/:id", returnsHandler.GetReturn)
		api.PUT("/returns/:id", returnsHandler.UpdateReturn)
		api.DELETE("/returns/:id", returnsHandler.DeleteReturn)

		api.GET("/stock-movements", movementsHandler.ListMovements)
		api.POST("/stock-movements", movementsHandler.CreateMovement)
		api.PUT("/stock-movements/:id", movementsHandler.TransitionMovement)

		api.GET("/products", productsHandler.ListProducts)
		api.POST("/products", productsHandler.CreateProduct)
		api.GET("/products/duplicates",
			middleware.AuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin), duplicatesHandler.GetDuplicates)
		api.POST("/products/duplicates",
			middleware.AuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin), duplicatesHandler.CleanupDuplicates)
		api.GET("/products/barcode/:code", productsHandler.GetByBarcode)
		api.GET("/products/:id", productsHandler.GetProduct)
		api.PUT("/products/:id", productsHandler.UpdateProduct)
		api.DELETE("/products/:id", productsHandler.DeleteProduct)
		api.POST("/products/:id/barcodes", productsHandler.AddBarcode)

		api.GET("/clients", clientsHandler.ListClients)
		api.POST("/clients", clientsHandler.CreateClient)
		api.GET("/clients/:id", clientsHandler.GetClient)
		api.PUT("/clients/:id", clientsHandler.UpdateClient)
		api.DELETE("/clients/:id", clientsHandler.DeleteClient)

		api.GET("/fournisseurs", fournisseursHandler.ListFournisseurs)
		api.POST("/fournisseurs", fournisseursHandler.CreateFournisseur)
		api.GET("/fournisseurs/:id", fournisseursHandler.GetFournisseur)
		api.PUT("/fournisseurs/:id", fournisseursHandler.UpdateFournisseur)
		api.DELETE("/fournisseurs/:id", fournisseursHandler.DeleteFournisseur)

		api.GET("/purchases", purchasesHandler.ListPurchases)
		api.POST("/purchases", purchasesHandler.CreatePurchase)
		api.GET("/purchases/:id", purchasesHandler.GetPurchase)
		api.DELETE("/purchases/:id", purchasesHandler.DeletePurchase)

		api.GET("/invoices", invoicesHandler.ListInvoices)
		api.POST("/invoices", invoicesHandler.CreateInvoice)
		api.GET("/invoices/download", invoicesHandler.DownloadInvoiceFile)
		api.POST("/invoices/upload", invoicesHandler.UploadInvoiceFile)
		api.GET("/invoices/:id", invoicesHandler.GetInvoice)

		api.GET("/stats/dashboard", statsHandler.GetDashboard)
		api.GET("/stats/sales", statsHandler.GetSalesReport)
	}

	adminRoutes := r.Group("/api/admin")
	adminRoutes.Use(middleware.AuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		adminRoutes.GET("/users", usersHandler.ListUsers)
		adminRoutes.POST("/users", usersHandler.CreateUser)
		adminRoutes.PUT("/users/:id/status", usersHandler.UpdateUserStatus)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 6. Start Server
	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
