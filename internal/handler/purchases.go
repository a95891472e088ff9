package handler

import (
	"errors"
	"fmt"
	"net/http"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchasesHandler struct{}

type PurchaseItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreatePurchaseRequest struct {
	UserID        uint                  `json:"user_id" binding:"required"`
	StockID       any                   `json:"stock_id" binding:"required"`
	FournisseurID *uint                 `json:"fournisseur_id"`
	Items         []PurchaseItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	Notes         string                `json:"notes"`
}

// CreatePurchase records a supplier purchase and credits received stock,
// header + items + increments in one transaction.
func (h *PurchasesHandler) CreatePurchase(c *gin.Context) {
	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: user_id, stock_id, items")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	total := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Quantité invalide pour le produit %d", item.ProductID))
			return
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	purchase := models.Purchase{
		UserID:        req.UserID,
		StockID:       stockID,
		FournisseurID: req.FournisseurID,
		Total:         total,
		PaymentMethod: models.NormalizePaymentMethod(req.PaymentMethod),
		PaymentStatus: models.NormalizePaymentStatus(req.PaymentStatus),
		Notes:         req.Notes,
	}

	tx := database.DB.Begin()

	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreatePurchase", "insert header", err)
		return
	}

	for _, itemReq := range req.Items {
		item := models.PurchaseItem{
			PurchaseID: purchase.ID,
			ProductID:  itemReq.ProductID,
			Quantity:   itemReq.Quantity,
			UnitPrice:  itemReq.UnitPrice,
			TotalPrice: itemReq.UnitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			respondDBError(c, "CreatePurchase", "insert item", err)
			return
		}

		if err := models.AdjustProductQuantity(tx, itemReq.ProductID, stockID, itemReq.Quantity); err != nil {
			tx.Rollback()
			if errors.Is(err, models.ErrProductNotFound) {
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Produit %d introuvable", itemReq.ProductID))
				return
			}
			respondDBError(c, "CreatePurchase", "credit stock", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreatePurchase", "commit", err)
		return
	}

	respondMessage(c, http.StatusCreated, "Achat enregistré", gin.H{"id": purchase.ID, "total": purchase.Total})
}

func (h *PurchasesHandler) ListPurchases(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Purchase{})
	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListPurchases", "count", err)
		return
	}

	var purchases []models.Purchase
	if err := query.Preload("Items").Preload("Fournisseur").Order("created_at desc").
		Limit(limit).Offset(offset).Find(&purchases).Error; err != nil {
		respondDBError(c, "ListPurchases", "select", err)
		return
	}

	respondPage(c, purchases, NewPagination(page, limit, total))
}

func (h *PurchasesHandler) GetPurchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var purchase models.Purchase
	if err := database.DB.Preload("Items").Preload("Items.Product").Preload("Fournisseur").
		First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Achat introuvable")
			return
		}
		respondDBError(c, "GetPurchase", "select", err)
		return
	}

	respondData(c, http.StatusOK, purchase)
}

// DeletePurchase reverses the stock the purchase credited, then removes it,
// all in one transaction.
func (h *PurchasesHandler) DeletePurchase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var purchase models.Purchase
	if err := database.DB.Preload("Items").First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Achat introuvable")
			return
		}
		respondDBError(c, "DeletePurchase", "select", err)
		return
	}

	tx := database.DB.Begin()

	// Header first, with a row-count check, so two concurrent deletes cannot
	// both reverse the credited stock.
	res := tx.Delete(&models.Purchase{}, purchase.ID)
	if res.Error != nil {
		tx.Rollback()
		respondDBError(c, "DeletePurchase", "delete header", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Achat introuvable")
		return
	}

	for _, item := range purchase.Items {
		if err := models.AdjustProductQuantity(tx, item.ProductID, purchase.StockID, -item.Quantity); err != nil {
			if errors.Is(err, models.ErrProductNotFound) {
				continue // product consolidated away since the purchase
			}
			tx.Rollback()
			if errors.Is(err, models.ErrInsufficientStock) {
				respondError(c, http.StatusBadRequest,
					fmt.Sprintf("Annulation impossible: le stock du produit %d est déjà consommé", item.ProductID))
				return
			}
			respondDBError(c, "DeletePurchase", "reverse stock", err)
			return
		}
	}

	if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&models.PurchaseItem{}).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "DeletePurchase", "delete items", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "DeletePurchase", "commit", err)
		return
	}

	respondMessage(c, http.StatusOK, "Achat supprimé", nil)
}
