package services

import (
	"context"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/repository"

	"go.uber.org/zap"
)

const dashboardDays = 7

type AnalyticsService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	loc      *time.Location
	logger   *zap.Logger
}

func NewAnalyticsService(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, loc *time.Location, logger *zap.Logger) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{orders: orders, products: products, users: users, loc: loc, logger: logger}
}

// Dashboard returns store totals and one sales point per day for the last
// seven days, today included.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.Dashboard, *ServiceError) {
	users, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", zap.Error(err))
		return nil, internalError("Failed to load analytics")
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count products", zap.Error(err))
		return nil, internalError("Failed to load analytics")
	}

	summary, err := s.orders.SalesSummary(ctx)
	if err != nil {
		s.logger.Warn("sales summary unavailable, reporting zeros", zap.Error(err))
		summary = models.SalesSummary{}
	}

	end := timeNow().In(s.loc)
	start := startOfDay(end).AddDate(0, 0, -(dashboardDays - 1))

	rows, err := s.orders.DailySales(ctx, start, end, s.loc)
	if err != nil {
		s.logger.Error("failed to aggregate daily sales", zap.Error(err))
		return nil, internalError("Failed to load analytics")
	}

	return &models.Dashboard{
		AnalyticsData: models.AnalyticsData{
			Users:        users,
			Products:     products,
			TotalSales:   summary.TotalSales,
			TotalRevenue: summary.TotalRevenue,
		},
		DailySalesData: fillDays(start, dashboardDays, rows),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// fillDays returns n consecutive days from start, taking values from rows
// and zero for days that had no orders.
func fillDays(start time.Time, n int, rows []models.DailySales) []models.DailySales {
	byDay := make(map[string]models.DailySales, len(rows))
	for _, r := range rows {
		byDay[r.Name] = r
	}

	out := make([]models.DailySales, 0, n)
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		if r, ok := byDay[day]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, models.DailySales{Name: day})
	}
	return out
}
