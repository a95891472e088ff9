package handler

import (
	"errors"
	"net/http"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductsHandler struct{}

func (h *ProductsHandler) ListProducts(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Product{}).Where("is_active = ?", true)

	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		// Global products (no stock) are visible from every location.
		query = query.Where("stock_id = ? OR stock_id IS NULL", stockID)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ? OR reference LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListProducts", "count", err)
		return
	}

	var products []models.Product
	if err := query.Preload("Barcodes").Order("name asc").
		Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		respondDBError(c, "ListProducts", "select", err)
		return
	}

	respondPage(c, products, NewPagination(page, limit, total))
}

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity"`
	StockID     *string         `json:"stock_id"` // slug or id; empty = global
	Barcodes    []string        `json:"barcodes"`
}

func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: name, price")
		return
	}

	var stockID *uint
	if req.StockID != nil && *req.StockID != "" {
		id, err := models.ResolveStockID(*req.StockID)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		stockID = &id
	}
	if req.Quantity < 0 {
		respondError(c, http.StatusBadRequest, "La quantité ne peut pas être négative")
		return
	}

	product := models.Product{
		Name:        req.Name,
		Reference:   req.Reference,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		StockID:     stockID,
		IsActive:    true,
	}

	tx := database.DB.Begin()

	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreateProduct", "insert product", err)
		return
	}

	for _, code := range req.Barcodes {
		if code == "" {
			continue
		}
		barcode := models.Barcode{ProductID: product.ID, Code: code}
		if err := tx.Create(&barcode).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusBadRequest, "Code-barres déjà utilisé: "+code)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreateProduct", "commit", err)
		return
	}

	respondData(c, http.StatusCreated, product)
}

func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := database.DB.Preload("Barcodes").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Produit introuvable")
			return
		}
		respondDBError(c, "GetProduct", "select", err)
		return
	}

	respondData(c, http.StatusOK, product)
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Reference   *string          `json:"reference"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Produit introuvable")
			return
		}
		respondDBError(c, "UpdateProduct", "select", err)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Reference != nil {
		updates["reference"] = *req.Reference
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			respondError(c, http.StatusBadRequest, "La quantité ne peut pas être négative")
			return
		}
		updates["quantity"] = *req.Quantity
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Aucun champ à mettre à jour")
		return
	}

	if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
		respondDBError(c, "UpdateProduct", "update", err)
		return
	}

	respondMessage(c, http.StatusOK, "Produit mis à jour", nil)
}

// DeleteProduct is a soft delete; sales history keeps referencing the row.
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		respondDBError(c, "DeleteProduct", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Produit introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Produit désactivé", nil)
}

func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "Code-barres requis")
		return
	}

	var barcode models.Barcode
	if err := database.DB.Where("code = ?", code).First(&barcode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Code-barres inconnu")
			return
		}
		respondDBError(c, "GetByBarcode", "select barcode", err)
		return
	}

	var product models.Product
	if err := database.DB.Preload("Barcodes").First(&product, barcode.ProductID).Error; err != nil {
		respondDBError(c, "GetByBarcode", "select product", err)
		return
	}

	respondData(c, http.StatusOK, product)
}

type AddBarcodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *ProductsHandler) AddBarcode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req AddBarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Code-barres requis")
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Produit introuvable")
			return
		}
		respondDBError(c, "AddBarcode", "select product", err)
		return
	}

	barcode := models.Barcode{ProductID: product.ID, Code: req.Code}
	if err := database.DB.Create(&barcode).Error; err != nil {
		respondError(c, http.StatusBadRequest, "Code-barres déjà utilisé")
		return
	}

	respondData(c, http.StatusCreated, barcode)
}
