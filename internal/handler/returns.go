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

type ReturnsHandler struct{}

type ReturnItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreateReturnRequest struct {
	OriginalSaleID uint                `json:"original_sale_id" binding:"required"`
	StockID        any                 `json:"stock_id" binding:"required"`
	UserID         uint                `json:"user_id" binding:"required"`
	ClientID       *uint               `json:"client_id"`
	ReturnType     string              `json:"return_type" binding:"required"`
	ReturnItems    []ReturnItemRequest `json:"return_items"`
	ExchangeItems  []ReturnItemRequest `json:"exchange_items"`
	PaymentMethod  string              `json:"payment_method"`
	Notes          string              `json:"notes"`
}

func sumReturnItems(items []ReturnItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("quantity must be positive for product %d", item.ProductID)
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// CreateFromSale records a return/exchange against an existing sale. The
// header, every line item and every stock adjustment commit or roll back as
// one unit.
func (h *ReturnsHandler) CreateFromSale(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: original_sale_id, stock_id, user_id, return_type")
		return
	}

	if req.ReturnType != models.ReturnTypeReturn && req.ReturnType != models.ReturnTypeExchange && req.ReturnType != models.ReturnTypeRefund {
		respondError(c, http.StatusBadRequest, "Type de retour invalide")
		return
	}
	if len(req.ReturnItems) == 0 && len(req.ExchangeItems) == 0 {
		respondError(c, http.StatusBadRequest, "Aucun article de retour ou d'échange")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var sale models.Sale
	if err := database.DB.Where("id = ? AND stock_id = ?", req.OriginalSaleID, stockID).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente originale introuvable pour ce stock")
			return
		}
		respondDBError(c, "CreateFromSale", "select sale", err)
		return
	}

	// Totals are always recomputed from the line items; caller-supplied
	// aggregates are ignored.
	refundTotal, err := sumReturnItems(req.ReturnItems)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	exchangeTotal, err := sumReturnItems(req.ExchangeItems)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ret := models.ReturnTransaction{
		OriginalSaleID:      sale.ID,
		StockID:             stockID,
		ClientID:            req.ClientID,
		UserID:              req.UserID,
		ReturnType:          req.ReturnType,
		TotalAmount:         refundTotal.Sub(exchangeTotal),
		TotalRefundAmount:   refundTotal,
		TotalExchangeAmount: exchangeTotal,
		Status:              models.ReturnStatusPending,
		PaymentMethod:       models.NormalizePaymentMethod(req.PaymentMethod),
		Notes:               req.Notes,
	}

	tx := database.DB.Begin()

	if err := tx.Create(&ret).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreateFromSale", "insert header", err)
		return
	}

	apply := func(reqs []ReturnItemRequest, action string) bool {
		for _, itemReq := range reqs {
			item := models.ReturnItem{
				ReturnTransactionID: ret.ID,
				ProductID:           itemReq.ProductID,
				Quantity:            itemReq.Quantity,
				UnitPrice:           itemReq.UnitPrice,
				ActionType:          action,
			}
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				respondDBError(c, "CreateFromSale", "insert item", err)
				return false
			}
			if err := models.AdjustProductQuantity(tx, item.ProductID, stockID, item.StockDelta()); err != nil {
				tx.Rollback()
				switch {
				case errors.Is(err, models.ErrProductNotFound):
					respondError(c, http.StatusBadRequest, fmt.Sprintf("Produit %d introuvable", item.ProductID))
				case errors.Is(err, models.ErrInsufficientStock):
					respondError(c, http.StatusBadRequest, fmt.Sprintf("Stock insuffisant pour le produit %d", item.ProductID))
				default:
					respondDBError(c, "CreateFromSale", "adjust stock", err)
				}
				return false
			}
		}
		return true
	}

	// In an exchange the returned goods come back in, the replacements go out.
	returnAction := models.ActionReturn
	if req.ReturnType == models.ReturnTypeExchange {
		returnAction = models.ActionExchangeIn
	}
	if !apply(req.ReturnItems, returnAction) {
		return
	}
	if !apply(req.ExchangeItems, models.ActionExchangeOut) {
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreateFromSale", "commit", err)
		return
	}

	respondMessage(c, http.StatusCreated, "Retour enregistré", gin.H{
		"id":                    ret.ID,
		"total_refund_amount":   ret.TotalRefundAmount,
		"total_exchange_amount": ret.TotalExchangeAmount,
	})
}

func (h *ReturnsHandler) ListReturns(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.ReturnTransaction{})
	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListReturns", "count", err)
		return
	}

	var returns []models.ReturnTransaction
	if err := query.Preload("Items").Order("created_at desc").
		Limit(limit).Offset(offset).Find(&returns).Error; err != nil {
		respondDBError(c, "ListReturns", "select", err)
		return
	}

	respondPage(c, returns, NewPagination(page, limit, total))
}

func (h *ReturnsHandler) GetReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var ret models.ReturnTransaction
	if err := database.DB.Preload("Items").Preload("Items.Product").
		First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Retour introuvable")
			return
		}
		respondDBError(c, "GetReturn", "select", err)
		return
	}

	respondData(c, http.StatusOK, ret)
}

type UpdateReturnRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReturn moves a pending return to completed or cancelled.
func (h *ReturnsHandler) UpdateReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Statut requis")
		return
	}
	if req.Status != models.ReturnStatusCompleted && req.Status != models.ReturnStatusCancelled {
		respondError(c, http.StatusBadRequest, "Statut invalide")
		return
	}

	var ret models.ReturnTransaction
	if err := database.DB.First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Retour introuvable")
			return
		}
		respondDBError(c, "UpdateReturn", "select", err)
		return
	}

	if ret.Status != models.ReturnStatusPending {
		respondError(c, http.StatusBadRequest, "Seuls les retours en attente peuvent changer de statut")
		return
	}

	updates := map[string]any{"status": req.Status}
	if req.Status == models.ReturnStatusCompleted {
		now := time.Now()
		updates["processed_at"] = &now
	}

	// Guard on pending in the WHERE clause so two racing transitions cannot
	// both succeed.
	res := database.DB.Model(&models.ReturnTransaction{}).
		Where("id = ? AND status = ?", ret.ID, models.ReturnStatusPending).
		Updates(updates)
	if res.Error != nil {
		respondDBError(c, "UpdateReturn", "update", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusBadRequest, "Seuls les retours en attente peuvent changer de statut")
		return
	}

	respondMessage(c, http.StatusOK, "Statut du retour mis à jour", nil)
}

// DeleteReturn is only allowed while pending; it removes the rows and
// reverses every item's stock effect in one transaction.
func (h *ReturnsHandler) DeleteReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var ret models.ReturnTransaction
	if err := database.DB.Preload("Items").First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Retour introuvable")
			return
		}
		respondDBError(c, "DeleteReturn", "select", err)
		return
	}

	if ret.Status != models.ReturnStatusPending {
		respondError(c, http.StatusBadRequest, "Seuls les retours en attente peuvent être supprimés")
		return
	}

	tx := database.DB.Begin()

	// Delete the header first, guarded on pending. Of two concurrent deletes
	// only one affects a row; the other rolls back with nothing reversed.
	res := tx.Where("id = ? AND status = ?", ret.ID, models.ReturnStatusPending).
		Delete(&models.ReturnTransaction{})
	if res.Error != nil {
		tx.Rollback()
		respondDBError(c, "DeleteReturn", "delete header", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		respondError(c, http.StatusBadRequest, "Seuls les retours en attente peuvent être supprimés")
		return
	}

	for _, item := range ret.Items {
		if err := models.AdjustProductQuantity(tx, item.ProductID, ret.StockID, -item.StockDelta()); err != nil {
			tx.Rollback()
			switch {
			case errors.Is(err, models.ErrInsufficientStock):
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Annulation impossible: stock insuffisant pour le produit %d", item.ProductID))
			case errors.Is(err, models.ErrProductNotFound):
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Produit %d introuvable", item.ProductID))
			default:
				respondDBError(c, "DeleteReturn", "reverse stock", err)
			}
			return
		}
	}

	if err := tx.Where("return_transaction_id = ?", ret.ID).Delete(&models.ReturnItem{}).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "DeleteReturn", "delete items", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "DeleteReturn", "commit", err)
		return
	}

	respondMessage(c, http.StatusOK, "Retour supprimé", nil)
}
