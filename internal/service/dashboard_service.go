package service

import (
	"context"
	"fmt"

	"invoicer/internal/clock"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AggregateStore is the read/write side of an aggregate cache. The bulk
// components see only its Invalidate half (CacheInvalidator).
type AggregateStore interface {
	Get(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, value interface{}) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// DashboardSummary is the per-user snapshot shown on the dashboard.
type DashboardSummary struct {
	TotalInvoices    int64            `json:"total_invoices"`
	CountsByStatus   map[string]int64 `json:"counts_by_status"`
	OutstandingTotal string           `json:"outstanding_total"` // sent + overdue
	PaidTotal        string           `json:"paid_total"`
	OverdueCount     int64            `json:"overdue_count"` // unpaid invoices past due
}

type DashboardService interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (DashboardSummary, error)
}

type dashboardService struct {
	invoiceRepo repository.InvoiceRepository
	cache       AggregateStore
	clock       clock.Clock
	logger      *zap.Logger
}

func NewDashboardService(invoiceRepo repository.InvoiceRepository, cache AggregateStore, clk clock.Clock, logger *zap.Logger) DashboardService {
	return &dashboardService{invoiceRepo: invoiceRepo, cache: cache, clock: clk, logger: logger}
}

// GetSummary serves the cached snapshot when present, otherwise recomputes
// from the invoice store and refills the cache. Cache errors degrade to a
// recompute rather than failing the request.
func (s *dashboardService) GetSummary(ctx context.Context, userID uuid.UUID) (DashboardSummary, error) {
	var cached DashboardSummary
	hit, err := s.cache.Get(ctx, userID, &cached)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	totals, err := s.invoiceRepo.StatusTotals(ctx, userID)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to aggregate invoices: %w", err)
	}

	summary := DashboardSummary{
		CountsByStatus: map[string]int64{
			model.StatusDraft:   0,
			model.StatusSent:    0,
			model.StatusPaid:    0,
			model.StatusOverdue: 0,
		},
	}
	outstanding := decimal.Zero
	paid := decimal.Zero
	for _, row := range totals {
		summary.TotalInvoices += row.Count
		summary.CountsByStatus[row.Status] = row.Count
		switch row.Status {
		case model.StatusSent, model.StatusOverdue:
			outstanding = outstanding.Add(row.Total)
		case model.StatusPaid:
			paid = paid.Add(row.Total)
		}
	}
	summary.OutstandingTotal = outstanding.StringFixed(2)
	summary.PaidTotal = paid.StringFixed(2)

	overdueCount, err := s.invoiceRepo.CountOverdueBefore(ctx, userID, s.clock.Now())
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count overdue invoices: %w", err)
	}
	summary.OverdueCount = overdueCount

	if err := s.cache.Set(ctx, userID, summary); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}
