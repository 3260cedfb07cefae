package domain

import "github.com/shopspring/decimal"

// SalesStats aggregates committed orders for the dashboard.
type SalesStats struct {
	TodaySales    decimal.Decimal `json:"today_sales"`
	TodayOrders   int             `json:"today_orders"`
	AllTimeSales  decimal.Decimal `json:"all_time_sales"`
	AllTimeOrders int             `json:"all_time_orders"`
}
