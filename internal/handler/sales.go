package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesHandler struct{}

// totalTolerance is the accepted drift between a caller-supplied total and
// the server-side recomputation.
var totalTolerance = decimal.NewFromFloat(0.01)

// resolveStockField accepts the stock as a JSON number (id) or string (slug).
func resolveStockField(v any) (uint, error) {
	switch val := v.(type) {
	case float64:
		s, err := models.StockByID(uint(val))
		if err != nil {
			return 0, err
		}
		return s.ID, nil
	case string:
		return models.ResolveStockID(val)
	case nil:
		return 0, fmt.Errorf("stock_id is required")
	}
	return 0, fmt.Errorf("stock_id must be an id or a slug")
}

type SaleItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreateSaleRequest struct {
	UserID        uint              `json:"user_id" binding:"required"`
	StockID       any               `json:"stock_id" binding:"required"`
	ClientID      *uint             `json:"client_id"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1"`
	Total         decimal.Decimal   `json:"total" binding:"required"`
	AmountPaid    *decimal.Decimal  `json:"amount_paid"`
	ChangeAmount  *decimal.Decimal  `json:"change_amount"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status"`
	Source        string            `json:"source"`
	Notes         string            `json:"notes"`
}

func sumItems(items []SaleItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("quantity must be positive for product %d", item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("unit price cannot be negative for product %d", item.ProductID)
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: user_id, stock_id, total, items")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	computed, err := sumItems(req.Items)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	// Never trust the caller's aggregate when line items are available.
	if req.Total.Sub(computed).Abs().GreaterThan(totalTolerance) {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("Le total (%s) ne correspond pas à la somme des articles (%s)", req.Total, computed))
		return
	}

	source := req.Source
	if source != models.SaleSourcePOS && source != models.SaleSourceManual {
		source = models.SaleSourcePOS
	}

	sale := models.Sale{
		UserID:        req.UserID,
		StockID:       stockID,
		ClientID:      req.ClientID,
		Total:         computed,
		AmountPaid:    req.AmountPaid,
		ChangeAmount:  req.ChangeAmount,
		PaymentMethod: models.NormalizePaymentMethod(req.PaymentMethod),
		PaymentStatus: models.NormalizePaymentStatus(req.PaymentStatus),
		Source:        source,
		Notes:         req.Notes,
	}

	tx := database.DB.Begin()

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreateSale", "insert sale header", err)
		return
	}

	for _, itemReq := range req.Items {
		item := models.SaleItem{
			SaleID:     sale.ID,
			ProductID:  itemReq.ProductID,
			Quantity:   itemReq.Quantity,
			UnitPrice:  itemReq.UnitPrice,
			TotalPrice: itemReq.UnitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			respondDBError(c, "CreateSale", "insert sale item", err)
			return
		}

		if err := models.AdjustProductQuantity(tx, itemReq.ProductID, stockID, -itemReq.Quantity); err != nil {
			tx.Rollback()
			switch {
			case errors.Is(err, models.ErrProductNotFound):
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Produit %d introuvable", itemReq.ProductID))
			case errors.Is(err, models.ErrInsufficientStock):
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Stock insuffisant pour le produit %d", itemReq.ProductID))
			default:
				respondDBError(c, "CreateSale", "debit stock", err)
			}
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreateSale", "commit", err)
		return
	}

	respondMessage(c, http.StatusCreated, "Vente enregistrée", gin.H{"id": sale.ID, "total": sale.Total})
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Sale{})

	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if start := c.Query("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if end := c.Query("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			query = query.Where("created_at < ?", t.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListSales", "count", err)
		return
	}

	var sales []models.Sale
	if err := query.Preload("Items").Preload("Client").
		Order("created_at desc").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		respondDBError(c, "ListSales", "select", err)
		return
	}

	respondPage(c, sales, NewPagination(page, limit, total))
}

func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var sale models.Sale
	if err := database.DB.Preload("Items").Preload("Items.Product").Preload("Client").
		First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "GetSale", "select", err)
		return
	}

	respondData(c, http.StatusOK, sale)
}

type UpdateSaleRequest struct {
	ClientID      *uint            `json:"client_id"`
	AmountPaid    *decimal.Decimal `json:"amount_paid"`
	ChangeAmount  *decimal.Decimal `json:"change_amount"`
	PaymentMethod *string          `json:"payment_method"`
	PaymentStatus *string          `json:"payment_status"`
	Notes         *string          `json:"notes"`
}

func (h *SalesHandler) UpdateSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	var sale models.Sale
	if err := database.DB.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "UpdateSale", "select", err)
		return
	}

	updates := map[string]any{}
	if req.ClientID != nil {
		updates["client_id"] = *req.ClientID
	}
	if req.AmountPaid != nil {
		updates["amount_paid"] = *req.AmountPaid
	}
	if req.ChangeAmount != nil {
		updates["change_amount"] = *req.ChangeAmount
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = models.NormalizePaymentMethod(*req.PaymentMethod)
	}
	if req.PaymentStatus != nil {
		updates["payment_status"] = models.NormalizePaymentStatus(*req.PaymentStatus)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Aucun champ à mettre à jour")
		return
	}

	if err := database.DB.Model(&sale).Updates(updates).Error; err != nil {
		respondDBError(c, "UpdateSale", "update", err)
		return
	}

	respondMessage(c, http.StatusOK, "Vente mise à jour", nil)
}

// DeleteSale removes a sale and restores the stock its items consumed,
// all in one transaction.
func (h *SalesHandler) DeleteSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var sale models.Sale
	if err := database.DB.Preload("Items").First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "DeleteSale", "select", err)
		return
	}

	tx := database.DB.Begin()

	// Delete the header first and check it actually removed a row, so a
	// concurrent delete of the same sale cannot restore the stock twice.
	res := tx.Delete(&models.Sale{}, sale.ID)
	if res.Error != nil {
		tx.Rollback()
		respondDBError(c, "DeleteSale", "delete header", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Vente introuvable")
		return
	}

	for _, item := range sale.Items {
		if err := models.AdjustProductQuantity(tx, item.ProductID, sale.StockID, item.Quantity); err != nil {
			if errors.Is(err, models.ErrProductNotFound) {
				continue // product consolidated away since the sale; nothing to credit
			}
			tx.Rollback()
			respondDBError(c, "DeleteSale", "restore stock", err)
			return
		}
	}

	if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "DeleteSale", "delete items", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "DeleteSale", "commit", err)
		return
	}

	respondMessage(c, http.StatusOK, "Vente supprimée", nil)
}

func (h *SalesHandler) GenerateSaleBarcode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var sale models.Sale
	if err := database.DB.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "GenerateSaleBarcode", "select", err)
		return
	}

	if sale.Barcode == "" {
		sale.Barcode = models.SaleBarcode(sale.CreatedAt, sale.ID)
		if err := database.DB.Model(&sale).Update("barcode", sale.Barcode).Error; err != nil {
			respondDBError(c, "GenerateSaleBarcode", "update", err)
			return
		}
	}

	respondData(c, http.StatusOK, gin.H{"id": sale.ID, "barcode": sale.Barcode})
}

func (h *SalesHandler) GetSaleBarcode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var sale models.Sale
	if err := database.DB.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "GetSaleBarcode", "select", err)
		return
	}

	if sale.Barcode == "" {
		respondError(c, http.StatusNotFound, "Aucun code-barres pour cette vente")
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": sale.ID, "barcode": sale.Barcode})
}
