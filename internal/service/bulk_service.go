package service

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/metrics"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheInvalidator is the fire-and-forget signal telling an aggregate cache
// to recompute on its next read. Failures are logged, never propagated.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// FileRemover deletes a stored attachment by object key. Best effort: a
// failure does not roll back the invoice mutation that triggered it.
type FileRemover interface {
	Remove(ctx context.Context, objectName string) error
}

// BulkAction is the set of operations a caller may apply to a batch of
// invoices. Action names are decoded once at the HTTP edge so the dispatcher
// below is an exhaustive switch.
type BulkAction int

const (
	BulkActionUnknown BulkAction = iota
	BulkMarkAsSent
	BulkMarkAsPaid
	BulkMarkAsOverdue
	BulkCreateReminderUpcoming
	BulkCreateReminderOverdue
	BulkCreateReminderThankYou
	BulkDelete
)

var bulkActionNames = map[string]BulkAction{
	"mark_as_sent":              BulkMarkAsSent,
	"mark_as_paid":              BulkMarkAsPaid,
	"mark_as_overdue":           BulkMarkAsOverdue,
	"create_reminder_upcoming":  BulkCreateReminderUpcoming,
	"create_reminder_overdue":   BulkCreateReminderOverdue,
	"create_reminder_thank_you": BulkCreateReminderThankYou,
	"delete":                    BulkDelete,
}

// ParseBulkAction maps a wire-level action name to its BulkAction. Unknown
// names return BulkActionUnknown, which Execute turns into the fixed
// unsupported-action failure.
func ParseBulkAction(name string) BulkAction {
	if a, ok := bulkActionNames[name]; ok {
		return a
	}
	return BulkActionUnknown
}

// String returns the wire-level action name.
func (a BulkAction) String() string {
	for name, action := range bulkActionNames {
		if action == a {
			return name
		}
	}
	return "unknown"
}

// BulkResult is the uniform envelope every bulk action resolves to. Either
// Success with a count and message, or a failure with a human-readable error.
type BulkResult struct {
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkService applies status updates, reminder creation and deletion to
// caller-chosen sets of invoices.
type BulkService interface {
	UpdateStatus(ctx context.Context, ids []uuid.UUID, status string, userID uuid.UUID) (int64, error)
	CreateReminders(ctx context.Context, ids []uuid.UUID, reminderType string, userID uuid.UUID) (int64, error)
	DeleteInvoices(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (deleted int64, failed int64, err error)
	Execute(ctx context.Context, action BulkAction, ids []uuid.UUID, userID uuid.UUID) BulkResult
}

type bulkService struct {
	invoiceRepo    repository.InvoiceRepository
	reminderRepo   repository.ReminderRepository
	dashboardCache CacheInvalidator
	analyticsCache CacheInvalidator
	files          FileRemover
	clock          clock.Clock
	logger         *zap.Logger
}

func NewBulkService(
	invoiceRepo repository.InvoiceRepository,
	reminderRepo repository.ReminderRepository,
	dashboardCache CacheInvalidator,
	analyticsCache CacheInvalidator,
	files FileRemover,
	clk clock.Clock,
	logger *zap.Logger,
) BulkService {
	return &bulkService{
		invoiceRepo:    invoiceRepo,
		reminderRepo:   reminderRepo,
		dashboardCache: dashboardCache,
		analyticsCache: analyticsCache,
		files:          files,
		clock:          clk,
		logger:         logger,
	}
}

// UpdateStatus moves every invoice in ids whose status differs to the new
// status in one batched update. Marking paid stamps paid_at; any other status
// clears it. The aggregate caches are invalidated even when no row changed.
func (s *bulkService) UpdateStatus(ctx context.Context, ids []uuid.UUID, status string, userID uuid.UUID) (int64, error) {
	if !model.ValidStatus(status) {
		return 0, fmt.Errorf("invalid invoice status %q", status)
	}

	var paidAt *time.Time
	if status == model.StatusPaid {
		now := s.clock.Now()
		paidAt = &now
	}

	count, err := s.invoiceRepo.UpdateStatusBatch(ctx, ids, status, paidAt)
	if err != nil {
		return 0, fmt.Errorf("failed to update invoice statuses: %w", err)
	}

	s.invalidateCaches(ctx, userID)
	return count, nil
}

// CreateReminders evaluates the scheduling policy for every loaded invoice
// and inserts one reminder per eligible invoice in a single batch. "Now" is
// captured once so every staged row shares the same schedule. Ids that match
// no invoice are silently skipped.
func (s *bulkService) CreateReminders(ctx context.Context, ids []uuid.UUID, reminderType string, userID uuid.UUID) (int64, error) {
	if !model.ValidReminderType(reminderType) {
		return 0, fmt.Errorf("invalid reminder type %q", reminderType)
	}

	invoices, err := s.invoiceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load invoices: %w", err)
	}

	now := s.clock.Now()
	scheduledAt := now.Add(24 * time.Hour)

	var staged []model.Reminder
	for _, invoice := range invoices {
		if !ShouldCreateReminder(invoice, reminderType, now) {
			continue
		}
		staged = append(staged, model.Reminder{
			InvoiceID:   invoice.ID,
			Type:        reminderType,
			ScheduledAt: scheduledAt,
			Message:     model.DefaultReminderMessage(reminderType),
		})
	}

	if err := s.reminderRepo.CreateBatch(ctx, staged); err != nil {
		return 0, fmt.Errorf("failed to create reminders: %w", err)
	}

	count := int64(len(staged))
	if count > 0 {
		s.invalidateCaches(ctx, userID)
	}
	return count, nil
}

// DeleteInvoices removes every requested invoice that is not paid, together
// with its stored attachment. failed counts both paid invoices and ids that
// matched nothing; the two reasons are deliberately not distinguished.
func (s *bulkService) DeleteInvoices(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, int64, error) {
	invoices, err := s.invoiceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load invoices: %w", err)
	}

	var deletableIDs []uuid.UUID
	var attachments []string
	for _, invoice := range invoices {
		if invoice.Status == model.StatusPaid {
			continue
		}
		deletableIDs = append(deletableIDs, invoice.ID)
		if invoice.FilePath != nil && *invoice.FilePath != "" {
			attachments = append(attachments, *invoice.FilePath)
		}
	}

	failed := int64(len(ids) - len(deletableIDs))
	if len(deletableIDs) == 0 {
		return 0, failed, nil
	}

	for _, objectName := range attachments {
		if err := s.files.Remove(ctx, objectName); err != nil {
			s.logger.Warn("failed to remove invoice attachment",
				zap.String("object", objectName), zap.Error(err))
		}
	}

	deleted, err := s.invoiceRepo.DeleteByIDs(ctx, deletableIDs)
	if err != nil {
		return 0, failed, fmt.Errorf("failed to delete invoices: %w", err)
	}

	if deleted > 0 {
		s.invalidateCaches(ctx, userID)
	}
	return deleted, failed, nil
}

// Execute routes a decoded bulk action to its operation and shapes the
// outcome into the uniform result envelope.
func (s *bulkService) Execute(ctx context.Context, action BulkAction, ids []uuid.UUID, userID uuid.UUID) BulkResult {
	result := s.execute(ctx, action, ids, userID)
	metrics.ObserveBulkAction(action.String(), result.Success)
	return result
}

func (s *bulkService) execute(ctx context.Context, action BulkAction, ids []uuid.UUID, userID uuid.UUID) BulkResult {
	switch action {
	case BulkMarkAsSent:
		return s.executeStatusUpdate(ctx, ids, model.StatusSent, userID)
	case BulkMarkAsPaid:
		return s.executeStatusUpdate(ctx, ids, model.StatusPaid, userID)
	case BulkMarkAsOverdue:
		return s.executeStatusUpdate(ctx, ids, model.StatusOverdue, userID)
	case BulkCreateReminderUpcoming:
		return s.executeReminderCreation(ctx, ids, model.ReminderUpcoming, userID)
	case BulkCreateReminderOverdue:
		return s.executeReminderCreation(ctx, ids, model.ReminderOverdue, userID)
	case BulkCreateReminderThankYou:
		return s.executeReminderCreation(ctx, ids, model.ReminderThankYou, userID)
	case BulkDelete:
		return s.executeDeletion(ctx, ids, userID)
	default:
		return BulkResult{Success: false, Error: "Unsupported bulk action specified."}
	}
}

func (s *bulkService) executeStatusUpdate(ctx context.Context, ids []uuid.UUID, status string, userID uuid.UUID) BulkResult {
	count, err := s.UpdateStatus(ctx, ids, status, userID)
	if err != nil {
		s.logger.Error("bulk status update failed", zap.String("status", status), zap.Error(err))
		return BulkResult{Success: false, Error: "Failed to update invoice statuses."}
	}
	return BulkResult{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("Successfully updated %d invoice(s) to %s status.", count, status),
	}
}

func (s *bulkService) executeReminderCreation(ctx context.Context, ids []uuid.UUID, reminderType string, userID uuid.UUID) BulkResult {
	count, err := s.CreateReminders(ctx, ids, reminderType, userID)
	if err != nil {
		s.logger.Error("bulk reminder creation failed", zap.String("type", reminderType), zap.Error(err))
		return BulkResult{Success: false, Error: "Failed to create reminders."}
	}
	return BulkResult{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("Successfully created %d %s reminder(s).", count, reminderType),
	}
}

func (s *bulkService) executeDeletion(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) BulkResult {
	deleted, failed, err := s.DeleteInvoices(ctx, ids, userID)
	if err != nil {
		s.logger.Error("bulk deletion failed", zap.Error(err))
		return BulkResult{Success: false, Error: "Failed to delete invoices."}
	}

	if deleted == 0 && failed > 0 {
		return BulkResult{
			Success: false,
			Error:   "None of the selected invoices could be deleted, possibly because they were already paid.",
		}
	}

	message := fmt.Sprintf("%d invoice(s) deleted.", deleted)
	if failed > 0 {
		message += fmt.Sprintf(" (%d could not be deleted, possibly because they were already paid)", failed)
	}
	return BulkResult{Success: true, Count: deleted, Message: message}
}

// invalidateCaches signals both aggregate caches for the acting user.
// Best effort: failures are logged and swallowed.
func (s *bulkService) invalidateCaches(ctx context.Context, userID uuid.UUID) {
	if err := s.dashboardCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	if err := s.analyticsCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
