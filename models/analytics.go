package models

type AnalyticsData struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	TotalSales   int64   `json:"totalSales"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// SalesSummary is the result of aggregating all orders.
type SalesSummary struct {
	TotalSales   int64   `bson:"totalSales"`
	TotalRevenue float64 `bson:"totalRevenue"`
}

// DailySales is one point of the dashboard chart; Name is YYYY-MM-DD.
type DailySales struct {
	Name    string  `bson:"_id" json:"name"`
	Sales   int64   `bson:"sales" json:"sales"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type Dashboard struct {
	AnalyticsData  AnalyticsData `json:"analyticsData"`
	DailySalesData []DailySales  `json:"dailySalesData"`
}
