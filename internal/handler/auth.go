package handler

import (
	"net/http"
	"strings"

	"stock-app/internal/models"
	"stock-app/internal/utils"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email et mot de passe requis")
		return
	}

	var user models.User
	if err := database.DB.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(req.Email)), true).
		First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, user.StockID)
	if err != nil {
		respondDBError(c, "Login", "generate token", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"stock_id": user.StockID,
	})
}
