package handler

import (
	"net/http"
	"strconv"

	"stock-app/config"

	"github.com/gin-gonic/gin"
)

// Pagination is the single pagination shape used by every list endpoint.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondPage(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondDBError logs the driver error and returns a sanitized message;
// raw driver text never reaches the client.
func respondDBError(c *gin.Context, funcName string, context string, err error) {
	config.LogError(config.GetLogger(), "handler", funcName, context, nil, err)
	respondError(c, http.StatusInternalServerError, "Erreur interne du serveur")
}

func parsePagination(c *gin.Context) (page int, limit int, offset int) {
	page = 1
	limit = 20

	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit, (page - 1) * limit
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Identifiant invalide")
		return 0, false
	}
	return uint(id), true
}
