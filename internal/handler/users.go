package handler

import (
	"net/http"
	"strings"

	"stock-app/internal/models"
	"stock-app/internal/utils"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
)

type UsersHandler struct{}

func (h *UsersHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id asc").Find(&users).Error; err != nil {
		respondDBError(c, "ListUsers", "select", err)
		return
	}
	respondData(c, http.StatusOK, users)
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	StockID  any    `json:"stock_id"`
}

func (h *UsersHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: username, email, password (8+), role")
		return
	}

	if req.Role != models.RoleAdmin && req.Role != models.RoleCaissier && req.Role != models.RoleSuperAdmin {
		respondError(c, http.StatusBadRequest, "Rôle invalide")
		return
	}

	var stockID *uint
	if req.StockID != nil {
		id, err := resolveStockField(req.StockID)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		stockID = &id
	}
	// Only super admins float across locations.
	if stockID == nil && req.Role != models.RoleSuperAdmin {
		respondError(c, http.StatusBadRequest, "Un stock est requis pour ce rôle")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondDBError(c, "CreateUser", "hash password", err)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		StockID:      stockID,
		IsActive:     true,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		respondError(c, http.StatusBadRequest, "Email déjà utilisé")
		return
	}

	respondData(c, http.StatusCreated, user)
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *UsersHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "is_active requis")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", *req.IsActive)
	if result.Error != nil {
		respondDBError(c, "UpdateUserStatus", "update", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Utilisateur introuvable")
		return
	}

	respondMessage(c, http.StatusOK, "Statut utilisateur mis à jour", nil)
}
