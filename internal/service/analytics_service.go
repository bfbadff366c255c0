package service

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MonthlyRevenuePoint is one month of paid revenue.
type MonthlyRevenuePoint struct {
	Month string `json:"month"` // 2006-01
	Total string `json:"total"`
}

// AnalyticsReport aggregates trailing-year revenue and status distribution.
type AnalyticsReport struct {
	MonthlyRevenue []MonthlyRevenuePoint    `json:"monthly_revenue"`
	StatusTotals   []repository.StatusTotal `json:"status_totals"`
}

type AnalyticsService interface {
	GetReport(ctx context.Context, userID uuid.UUID) (AnalyticsReport, error)
}

type analyticsService struct {
	invoiceRepo repository.InvoiceRepository
	cache       AggregateStore
	clock       clock.Clock
	logger      *zap.Logger
}

func NewAnalyticsService(invoiceRepo repository.InvoiceRepository, cache AggregateStore, clk clock.Clock, logger *zap.Logger) AnalyticsService {
	return &analyticsService{invoiceRepo: invoiceRepo, cache: cache, clock: clk, logger: logger}
}

func (s *analyticsService) GetReport(ctx context.Context, userID uuid.UUID) (AnalyticsReport, error) {
	var cached AnalyticsReport
	hit, err := s.cache.Get(ctx, userID, &cached)
	if err != nil {
		s.logger.Warn("analytics cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	now := s.clock.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(-1, 0, 0)

	revenue, err := s.invoiceRepo.MonthlyPaidRevenue(ctx, userID, from)
	if err != nil {
		return AnalyticsReport{}, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	totals, err := s.invoiceRepo.StatusTotals(ctx, userID)
	if err != nil {
		return AnalyticsReport{}, fmt.Errorf("failed to aggregate statuses: %w", err)
	}

	report := AnalyticsReport{
		MonthlyRevenue: make([]MonthlyRevenuePoint, 0, len(revenue)),
		StatusTotals:   totals,
	}
	for _, row := range revenue {
		report.MonthlyRevenue = append(report.MonthlyRevenue, MonthlyRevenuePoint{
			Month: row.Month.Format("2006-01"),
			Total: row.Total.StringFixed(2),
		})
	}

	if err := s.cache.Set(ctx, userID, report); err != nil {
		s.logger.Warn("analytics cache write failed", zap.Error(err))
	}
	return report, nil
}
