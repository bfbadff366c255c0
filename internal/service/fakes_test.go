package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
)

// fakeInvoiceRepo is an in-memory stand-in for the invoice store. Batched
// statements mirror the SQL semantics: no-op rows are excluded from counts
// and unknown ids match nothing.
type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newFakeInvoiceRepo(invoices ...*model.Invoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
	for _, inv := range invoices {
		r.invoices[inv.ID] = inv
	}
	return r
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInvoiceRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Invoice, error) {
	var result []model.Invoice
	for _, id := range ids {
		if inv, ok := r.invoices[id]; ok {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	var result []model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		result = append(result, *inv)
	}
	return result, int64(len(result)), nil
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	if _, ok := r.invoices[invoice.ID]; !ok {
		return fmt.Errorf("record not found")
	}
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return nil
}

func (r *fakeInvoiceRepo) UpdateStatusBatch(ctx context.Context, ids []uuid.UUID, status string, paidAt *time.Time) (int64, error) {
	var count int64
	for _, id := range ids {
		inv, ok := r.invoices[id]
		if !ok || inv.Status == status {
			continue
		}
		inv.Status = status
		inv.PaidAt = paidAt
		count++
	}
	return count, nil
}

func (r *fakeInvoiceRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := r.invoices[id]; ok {
			delete(r.invoices, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) StatusTotals(ctx context.Context, userID uuid.UUID) ([]repository.StatusTotal, error) {
	totals := make(map[string]*repository.StatusTotal)
	for _, inv := range r.invoices {
		if inv.UserID != userID {
			continue
		}
		row, ok := totals[inv.Status]
		if !ok {
			row = &repository.StatusTotal{Status: inv.Status}
			totals[inv.Status] = row
		}
		row.Count++
		row.Total = row.Total.Add(inv.Amount)
	}
	var result []repository.StatusTotal
	for _, row := range totals {
		result = append(result, *row)
	}
	return result, nil
}

func (r *fakeInvoiceRepo) MonthlyPaidRevenue(ctx context.Context, userID uuid.UUID, from time.Time) ([]repository.MonthlyRevenue, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) CountOverdueBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	var count int64
	for _, inv := range r.invoices {
		if inv.UserID == userID && inv.Status != model.StatusPaid && inv.DueDate.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// fakeReminderRepo records batch inserts.
type fakeReminderRepo struct {
	reminders []model.Reminder
}

func (r *fakeReminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	r.reminders = append(r.reminders, *reminder)
	return nil
}

func (r *fakeReminderRepo) CreateBatch(ctx context.Context, reminders []model.Reminder) error {
	r.reminders = append(r.reminders, reminders...)
	return nil
}

func (r *fakeReminderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	for i := range r.reminders {
		if r.reminders[i].ID == id {
			copied := r.reminders[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("record not found")
}

func (r *fakeReminderRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Reminder, error) {
	var result []model.Reminder
	for _, rem := range r.reminders {
		if rem.InvoiceID == invoiceID {
			result = append(result, rem)
		}
	}
	return result, nil
}

func (r *fakeReminderRepo) Update(ctx context.Context, reminder *model.Reminder) error {
	for i := range r.reminders {
		if r.reminders[i].ID == reminder.ID {
			r.reminders[i] = *reminder
			return nil
		}
	}
	return fmt.Errorf("record not found")
}

func (r *fakeReminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range r.reminders {
		if r.reminders[i].ID == id {
			r.reminders = append(r.reminders[:i], r.reminders[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeInvalidator counts cache invalidation signals per user.
type fakeInvalidator struct {
	calls []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, userID uuid.UUID) error {
	f.calls = append(f.calls, userID)
	return nil
}

// fakeFileStore records removed object names.
type fakeFileStore struct {
	uploaded []string
	removed  []string
}

func (f *fakeFileStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	f.uploaded = append(f.uploaded, objectName)
	return nil
}

func (f *fakeFileStore) Remove(ctx context.Context, objectName string) error {
	f.removed = append(f.removed, objectName)
	return nil
}

func (f *fakeFileStore) PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://files.example/" + objectName, nil
}

// fakeTxManager runs the function without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
