package handler

import (
	"fmt"
	"net/http"
	"time"

	"stock-app/internal/cache"
	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StatsHandler struct {
	Cache cache.StatsCache
}

const dashboardCacheTTL = 30 * time.Second

func NewStatsHandler(statsCache cache.StatsCache) *StatsHandler {
	if statsCache == nil {
		statsCache = cache.NoopStatsCache{}
	}
	return &StatsHandler{Cache: statsCache}
}

func sumSalesTotal(stockID uint, from, to time.Time) (decimal.Decimal, int64, error) {
	var sales []models.Sale
	err := database.DB.Where("stock_id = ? AND created_at >= ? AND created_at < ?", stockID, from, to).
		Find(&sales).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return total, int64(len(sales)), nil
}

func (h *StatsHandler) GetDashboard(c *gin.Context) {
	stockID, err := models.ResolveStockID(c.Query("stock"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("stats:dashboard:%d", stockID)
	if cached, hit, cerr := h.Cache.Get(c.Request.Context(), cacheKey); cerr == nil && hit {
		respondData(c, http.StatusOK, cached)
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	tomorrow := startOfDay.Add(24 * time.Hour)

	todayRevenue, todaySales, err := sumSalesTotal(stockID, startOfDay, tomorrow)
	if err != nil {
		respondDBError(c, "GetDashboard", "today aggregates", err)
		return
	}
	monthRevenue, monthSales, err := sumSalesTotal(stockID, startOfMonth, tomorrow)
	if err != nil {
		respondDBError(c, "GetDashboard", "month aggregates", err)
		return
	}

	var lowStock int64
	if err := database.DB.Model(&models.Product{}).
		Where("stock_id = ? AND is_active = ? AND quantity <= 5", stockID, true).
		Count(&lowStock).Error; err != nil {
		respondDBError(c, "GetDashboard", "low stock count", err)
		return
	}

	var pendingReturns int64
	if err := database.DB.Model(&models.ReturnTransaction{}).
		Where("stock_id = ? AND status = ?", stockID, models.ReturnStatusPending).
		Count(&pendingReturns).Error; err != nil {
		respondDBError(c, "GetDashboard", "pending returns", err)
		return
	}

	var recent []models.Sale
	if err := database.DB.Where("stock_id = ?", stockID).
		Order("created_at desc").Limit(5).Find(&recent).Error; err != nil {
		respondDBError(c, "GetDashboard", "recent sales", err)
		return
	}

	stats := &models.DashboardStats{
		StockID:        stockID,
		TodayRevenue:   todayRevenue,
		TodaySales:     todaySales,
		MonthRevenue:   monthRevenue,
		MonthSales:     monthSales,
		LowStockCount:  lowStock,
		PendingReturns: pendingReturns,
		RecentSales:    recent,
	}

	// Cache failures are non-fatal; the dashboard just stays uncached.
	_ = h.Cache.Set(c.Request.Context(), cacheKey, stats, dashboardCacheTTL)

	respondData(c, http.StatusOK, stats)
}

func (h *StatsHandler) GetSalesReport(c *gin.Context) {
	query := database.DB.Model(&models.Sale{}).Preload("Items")

	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
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

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		respondDBError(c, "GetSalesReport", "select", err)
		return
	}

	report := models.SalesReport{TotalRevenue: decimal.Zero}
	for _, sale := range sales {
		report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		report.TotalTransactions++
		for _, item := range sale.Items {
			report.ProductsSold += int64(item.Quantity)
		}
	}

	respondData(c, http.StatusOK, gin.H{"summary": report, "transactions": sales})
}
