package models

import (
	"github.com/shopspring/decimal"
)

// DashboardStats is the aggregate payload served to dashboards and cached
// briefly when Redis is configured.
type DashboardStats struct {
	StockID        uint            `json:"stock_id"`
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	TodaySales     int64           `json:"today_sales"`
	MonthRevenue   decimal.Decimal `json:"month_revenue"`
	MonthSales     int64           `json:"month_sales"`
	LowStockCount  int64           `json:"low_stock_count"`
	PendingReturns int64           `json:"pending_returns"`
	RecentSales    []Sale          `json:"recent_sales"`
}

// SalesReport summarizes a date range.
type SalesReport struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalTransactions int64           `json:"total_transactions"`
	ProductsSold      int64           `json:"products_sold"`
}
