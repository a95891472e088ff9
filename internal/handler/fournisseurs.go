package handler

import (
	"errors"
	"net/http"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FournisseursHandler struct{}

func (h *FournisseursHandler) ListFournisseurs(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Fournisseur{}).Where("is_active = ?", true)

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
		respondDBError(c, "ListFournisseurs", "count", err)
		return
	}

	var fournisseurs []models.Fournisseur
	if err := query.Order("name asc").Limit(limit).Offset(offset).Find(&fournisseurs).Error; err != nil {
		respondDBError(c, "ListFournisseurs", "select", err)
		return
	}

	respondPage(c, fournisseurs, NewPagination(page, limit, total))
}

type CreateFournisseurRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	StockID any    `json:"stock_id" binding:"required"`
}

func (h *FournisseursHandler) CreateFournisseur(c *gin.Context) {
	var req CreateFournisseurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: name, stock_id")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	fournisseur := models.Fournisseur{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		StockID:  stockID,
		IsActive: true,
	}

	if err := database.DB.Create(&fournisseur).Error; err != nil {
		respondDBError(c, "CreateFournisseur", "insert", err)
		return
	}

	respondData(c, http.StatusCreated, fournisseur)
}

func (h *FournisseursHandler) GetFournisseur(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var fournisseur models.Fournisseur
	if err := database.DB.First(&fournisseur, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Fournisseur introuvable")
			return
		}
		respondDBError(c, "GetFournisseur", "select", err)
		return
	}

	respondData(c, http.StatusOK, fournisseur)
}

func (h *FournisseursHandler) UpdateFournisseur(c *gin.Context) {
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

	result := database.DB.Model(&models.Fournisseur{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		respondDBError(c, "UpdateFournisseur", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Fournisseur introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Fournisseur mis à jour", nil)
}

func (h *FournisseursHandler) DeleteFournisseur(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Fournisseur{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		respondDBError(c, "DeleteFournisseur", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Fournisseur introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Fournisseur désactivé", nil)
}
