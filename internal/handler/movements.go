package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stock-app/internal/middleware"
	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementsHandler struct{}

type MovementItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateMovementRequest struct {
	FromStockID   any                   `json:"from_stock_id" binding:"required"`
	ToStockID     any                   `json:"to_stock_id" binding:"required"`
	UserID        uint                  `json:"user_id" binding:"required"`
	RecipientName string                `json:"recipient_name"`
	Items         []MovementItemRequest `json:"items" binding:"required,min=1"`
	Notes         string                `json:"notes"`
}

// CreateMovement records a pending transfer. No quantities move until the
// destination confirms.
func (h *MovementsHandler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: from_stock_id, to_stock_id, user_id, items")
		return
	}

	fromID, err := resolveStockField(req.FromStockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Stock source: "+err.Error())
		return
	}
	toID, err := resolveStockField(req.ToStockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Stock destination: "+err.Error())
		return
	}
	if fromID == toID {
		respondError(c, http.StatusBadRequest, "Le stock source et le stock destination doivent être différents")
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

	movement := models.StockMovement{
		FromStockID:    fromID,
		ToStockID:      toID,
		UserID:         req.UserID,
		MovementNumber: models.NewMovementNumber(time.Now()),
		RecipientName:  req.RecipientName,
		TotalAmount:    total,
		Status:         models.MovementStatusPending,
		Notes:          req.Notes,
	}

	tx := database.DB.Begin()

	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreateMovement", "insert header", err)
		return
	}

	for _, itemReq := range req.Items {
		item := models.StockMovementItem{
			StockMovementID: movement.ID,
			ProductID:       itemReq.ProductID,
			Quantity:        itemReq.Quantity,
			UnitPrice:       itemReq.UnitPrice,
			TotalPrice:      itemReq.UnitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			respondDBError(c, "CreateMovement", "insert item", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreateMovement", "commit", err)
		return
	}

	respondMessage(c, http.StatusCreated, "Mouvement de stock créé", gin.H{
		"id":              movement.ID,
		"movement_number": movement.MovementNumber,
	})
}

func (h *MovementsHandler) ListMovements(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.StockMovement{})
	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("from_stock_id = ? OR to_stock_id = ?", stockID, stockID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListMovements", "count", err)
		return
	}

	var movements []models.StockMovement
	if err := query.Preload("Items").Order("created_at desc").
		Limit(limit).Offset(offset).Find(&movements).Error; err != nil {
		respondDBError(c, "ListMovements", "select", err)
		return
	}

	respondPage(c, movements, NewPagination(page, limit, total))
}

type TransitionMovementRequest struct {
	Action  string `json:"action" binding:"required"` // confirm | claim
	Message string `json:"message"`
}

// TransitionMovement handles confirm and claim. Only the destination stock's
// users (or a super admin) may transition a movement.
func (h *MovementsHandler) TransitionMovement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TransitionMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Action requise (confirm ou claim)")
		return
	}

	var movement models.StockMovement
	if err := database.DB.Preload("Items").First(&movement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Mouvement introuvable")
			return
		}
		respondDBError(c, "TransitionMovement", "select", err)
		return
	}

	if c.GetString("role") != models.RoleSuperAdmin {
		callerStock, hasStock := middleware.CallerStockID(c)
		if !hasStock || callerStock != movement.ToStockID {
			respondError(c, http.StatusForbidden, "Seul le stock destinataire peut traiter ce mouvement")
			return
		}
	}

	switch req.Action {
	case "confirm":
		h.confirm(c, &movement)
	case "claim":
		h.claim(c, &movement, req.Message)
	default:
		respondError(c, http.StatusBadRequest, "Action invalide (confirm ou claim)")
	}
}

// confirm applies the transferred quantities at the destination and flips the
// status in the same transaction. The status flip happens first, guarded on
// still-pending, so concurrent confirms cannot both run the apply loop: the
// loser rolls back before touching any quantity.
func (h *MovementsHandler) confirm(c *gin.Context, movement *models.StockMovement) {
	if movement.Status != models.MovementStatusPending {
		respondError(c, http.StatusBadRequest, "Seuls les mouvements en attente peuvent être confirmés")
		return
	}

	tx := database.DB.Begin()

	if err := models.TransitionMovementStatus(tx, movement.ID,
		map[string]any{"status": models.MovementStatusConfirmed}); err != nil {
		tx.Rollback()
		if errors.Is(err, models.ErrMovementNotPending) {
			respondError(c, http.StatusBadRequest, "Seuls les mouvements en attente peuvent être confirmés")
			return
		}
		respondDBError(c, "confirm", "update status", err)
		return
	}

	for _, item := range movement.Items {
		var source models.Product
		if err := tx.First(&source, item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, fmt.Sprintf("Produit %d introuvable", item.ProductID))
				return
			}
			respondDBError(c, "confirm", "select source product", err)
			return
		}

		var dest models.Product
		err := tx.Where("name = ? AND stock_id = ?", source.Name, movement.ToStockID).First(&dest).Error
		switch {
		case err == nil:
			if aerr := models.AdjustProductQuantity(tx, dest.ID, movement.ToStockID, item.Quantity); aerr != nil {
				tx.Rollback()
				respondDBError(c, "confirm", "credit destination", aerr)
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			toStockID := movement.ToStockID
			created := models.Product{
				Name:        source.Name,
				Reference:   source.Reference,
				Description: source.Description,
				Price:       source.Price,
				Quantity:    item.Quantity,
				StockID:     &toStockID,
				IsActive:    true,
			}
			if cerr := tx.Create(&created).Error; cerr != nil {
				tx.Rollback()
				respondDBError(c, "confirm", "insert destination product", cerr)
				return
			}
		default:
			tx.Rollback()
			respondDBError(c, "confirm", "select destination product", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "confirm", "commit", err)
		return
	}

	respondMessage(c, http.StatusOK, "Mouvement confirmé", nil)
}

func (h *MovementsHandler) claim(c *gin.Context, movement *models.StockMovement, message string) {
	if movement.Status != models.MovementStatusPending {
		respondError(c, http.StatusBadRequest, "Seuls les mouvements en attente peuvent être réclamés")
		return
	}
	if message == "" {
		respondError(c, http.StatusBadRequest, "Un message de réclamation est requis")
		return
	}

	now := time.Now()
	updates := map[string]any{
		"status":        models.MovementStatusClaimed,
		"claim_message": message,
		"claim_date":    &now,
	}
	if err := models.TransitionMovementStatus(database.DB, movement.ID, updates); err != nil {
		if errors.Is(err, models.ErrMovementNotPending) {
			respondError(c, http.StatusBadRequest, "Seuls les mouvements en attente peuvent être réclamés")
			return
		}
		respondDBError(c, "claim", "update", err)
		return
	}

	respondMessage(c, http.StatusOK, "Réclamation enregistrée", nil)
}
