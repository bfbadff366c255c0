package repository

import (
	"context"
	"time"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows List results. Zero values mean "no filter".
type InvoiceListFilter struct {
	UserID uuid.UUID
	Status string
	Client string // partial match on client_name
	Page   int
	Limit  int
}

// StatusTotal is one row of the per-status aggregate used by the dashboard
// and analytics services.
type StatusTotal struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// MonthlyRevenue is one row of the paid-revenue-by-month aggregate.
type MonthlyRevenue struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	// UpdateStatusBatch sets status (and paid_at) on every invoice in ids
	// whose current status differs, returning the number of rows changed.
	// A nil paidAt clears the paid_at column.
	UpdateStatusBatch(ctx context.Context, ids []uuid.UUID, status string, paidAt *time.Time) (int64, error)
	// DeleteByIDs removes the given invoices in one statement and returns the
	// number of rows actually removed.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	StatusTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotal, error)
	MonthlyPaidRevenue(ctx context.Context, userID uuid.UUID, from time.Time) ([]MonthlyRevenue, error)
	CountOverdueBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", filter.UserID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Client != "" {
			q = q.Where("client_name ILIKE ?", "%"+filter.Client+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db).Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) UpdateStatusBatch(ctx context.Context, ids []uuid.UUID, status string, paidAt *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Where("id IN ? AND status <> ?", ids, status).
		Updates(map[string]interface{}{
			"status":  status,
			"paid_at": paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *invoiceRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Where("id IN ?", ids).Delete(&model.Invoice{})
	return res.RowsAffected, res.Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) StatusTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Select("status, count(*) as count, coalesce(sum(amount), 0) as total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *invoiceRepository) MonthlyPaidRevenue(ctx context.Context, userID uuid.UUID, from time.Time) ([]MonthlyRevenue, error) {
	var rows []MonthlyRevenue
	err := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Select("date_trunc('month', paid_at) as month, coalesce(sum(amount), 0) as total").
		Where("user_id = ? AND status = ? AND paid_at >= ?", userID, model.StatusPaid, from).
		Group("month").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *invoiceRepository) CountOverdueBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Where("user_id = ? AND status <> ? AND due_date < ?", userID, model.StatusPaid, cutoff).
		Count(&count).Error
	return count, err
}
