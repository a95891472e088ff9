package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"stock-app/config"
	"stock-app/internal/middleware"
	"stock-app/internal/models"
	"stock-app/internal/utils"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		Server: config.ServerConfig{
			JWTSecret:          "test-secret",
			JWTExpirationHours: 1,
		},
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Stock{}, &models.User{}, &models.Product{}, &models.Barcode{},
		&models.Client{}, &models.Fournisseur{},
		&models.Sale{}, &models.SaleItem{},
		&models.Purchase{}, &models.PurchaseItem{},
		&models.ReturnTransaction{}, &models.ReturnItem{},
		&models.StockMovement{}, &models.StockMovementItem{},
		&models.Invoice{}, &models.InvoiceFile{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, s := range models.KnownStocks {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed stock %s: %v", s.Slug, err)
		}
	}

	database.DB = db
	return db
}

// newTestRouter wires the full route table, auth middleware included, so
// tests exercise the same path production requests take.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authHandler := &AuthHandler{}
	r.POST("/auth/login", authHandler.Login)

	salesHandler := &SalesHandler{}
	returnsHandler := &ReturnsHandler{}
	movementsHandler := &MovementsHandler{}
	productsHandler := &ProductsHandler{}
	duplicatesHandler := &DuplicatesHandler{}
	clientsHandler := &ClientsHandler{}
	fournisseursHandler := &FournisseursHandler{}
	purchasesHandler := &PurchasesHandler{}
	invoicesHandler := &InvoicesHandler{}
	usersHandler := &UsersHandler{}
	statsHandler := NewStatsHandler(nil)

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

		api.GET("/clients", clientsHandler.ListClients)
		api.POST("/clients", clientsHandler.CreateClient)
		api.PUT("/clients/:id", clientsHandler.UpdateClient)
		api.DELETE("/clients/:id", clientsHandler.DeleteClient)

		api.GET("/fournisseurs", fournisseursHandler.ListFournisseurs)
		api.POST("/fournisseurs", fournisseursHandler.CreateFournisseur)
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

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.GET("/users", usersHandler.ListUsers)
		admin.POST("/users", usersHandler.CreateUser)
		admin.PUT("/users/:id/status", usersHandler.UpdateUserStatus)
	}

	return r
}

func seedUser(t *testing.T, db *gorm.DB, role string, stockID *uint) models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	user := models.User{
		Username:     "Test " + role,
		Email:        fmt.Sprintf("%s-%d@test.local", role, time.Now().UnixNano()),
		PasswordHash: hash,
		Role:         role,
		StockID:      stockID,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Role, user.StockID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, quantity int, stockID *uint) models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		Quantity: quantity,
		StockID:  stockID,
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (body: %s)", err, rec.Body.String())
	}
	return body
}

func productQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return product.Quantity
}

func uintPtr(v uint) *uint { return &v }
