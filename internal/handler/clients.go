package handler

import (
	"errors"
	"net/http"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientsHandler struct{}

func (h *ClientsHandler) ListClients(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Client{}).Where("is_active = ?", true)

	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ? OR phone LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListClients", "count", err)
		return
	}

	var clients []models.Client
	if err := query.Order("name asc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		respondDBError(c, "ListClients", "select", err)
		return
	}

	respondPage(c, clients, NewPagination(page, limit, total))
}

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	StockID any    `json:"stock_id" binding:"required"`
}

func (h *ClientsHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: name, stock_id")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	client := models.Client{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		StockID:  stockID,
		IsActive: true,
	}

	if err := database.DB.Create(&client).Error; err != nil {
		respondDBError(c, "CreateClient", "insert", err)
		return
	}

	respondData(c, http.StatusCreated, client)
}

func (h *ClientsHandler) GetClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var client models.Client
	if err := database.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Client introuvable")
			return
		}
		respondDBError(c, "GetClient", "select", err)
		return
	}

	respondData(c, http.StatusOK, client)
}

type UpdatePartyRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

func partyUpdates(req UpdatePartyRequest) map[string]any {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	return updates
}

func (h *ClientsHandler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	updates := partyUpdates(req)
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Aucun champ à mettre à jour")
		return
	}

	result := database.DB.Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		respondDBError(c, "UpdateClient", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Client introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Client mis à jour", nil)
}

// DeleteClient flips is_active; client rows are never hard-deleted.
func (h *ClientsHandler) DeleteClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Client{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		respondDBError(c, "DeleteClient", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Client introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Client désactivé", nil)
}
