package service

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateReminderRequest struct {
	Type        string `json:"type" binding:"omitempty,oneof=upcoming overdue thank_you"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339; defaults to tomorrow
	Message     string `json:"message"`      // defaults to the type's template
}

type UpdateReminderRequest struct {
	ScheduledAt *string `json:"scheduled_at"`
	Message     *string `json:"message"`
}

type ReminderResponse struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	Type        string  `json:"type"`
	ScheduledAt string  `json:"scheduled_at"`
	SentAt      *string `json:"sent_at"`
	Message     string  `json:"message"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type ReminderService interface {
	ListByInvoice(ctx context.Context, invoiceID string, userID uuid.UUID) ([]ReminderResponse, error)
	CreateReminder(ctx context.Context, invoiceID string, userID uuid.UUID, req CreateReminderRequest) (ReminderResponse, error)
	UpdateReminder(ctx context.Context, id string, userID uuid.UUID, req UpdateReminderRequest) (ReminderResponse, error)
	DeleteReminder(ctx context.Context, id string, userID uuid.UUID) error
	MarkSent(ctx context.Context, id string, userID uuid.UUID) (ReminderResponse, error)
}

type reminderService struct {
	reminderRepo repository.ReminderRepository
	invoiceRepo  repository.InvoiceRepository
	txManager    repository.TransactionManager
	clock        clock.Clock
	logger       *zap.Logger
}

func NewReminderService(
	reminderRepo repository.ReminderRepository,
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	clk clock.Clock,
	logger *zap.Logger,
) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		invoiceRepo:  invoiceRepo,
		txManager:    txManager,
		clock:        clk,
		logger:       logger,
	}
}

// --- Implementation ---

func (s *reminderService) ListByInvoice(ctx context.Context, invoiceID string, userID uuid.UUID) ([]ReminderResponse, error) {
	invoice, err := s.ownedInvoice(ctx, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}

	result := make([]ReminderResponse, 0, len(reminders))
	for _, r := range reminders {
		result = append(result, toReminderResponse(r))
	}
	return result, nil
}

// CreateReminder creates a single reminder for one invoice. Omitted fields
// fall back to the invoice's state: the type follows the default scheduling
// policy, the schedule is tomorrow, the message is the type's template.
func (s *reminderService) CreateReminder(ctx context.Context, invoiceID string, userID uuid.UUID, req CreateReminderRequest) (ReminderResponse, error) {
	invoice, err := s.ownedInvoice(ctx, invoiceID, userID)
	if err != nil {
		return ReminderResponse{}, err
	}

	now := s.clock.Now()

	reminderType := req.Type
	if reminderType == "" {
		reminderType = DefaultReminderType(*invoice, now)
	}

	scheduledAt := now.Add(24 * time.Hour)
	if req.ScheduledAt != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ScheduledAt)
		if parseErr != nil {
			return ReminderResponse{}, fmt.Errorf("invalid scheduled_at: %w", parseErr)
		}
		scheduledAt = parsed
	}

	message := req.Message
	if message == "" {
		message = model.DefaultReminderMessage(reminderType)
	}

	reminder := model.Reminder{
		InvoiceID:   invoice.ID,
		Type:        reminderType,
		ScheduledAt: scheduledAt,
		Message:     message,
	}
	if err := s.reminderRepo.Create(ctx, &reminder); err != nil {
		return ReminderResponse{}, fmt.Errorf("failed to create reminder: %w", err)
	}

	return toReminderResponse(reminder), nil
}

func (s *reminderService) UpdateReminder(ctx context.Context, id string, userID uuid.UUID, req UpdateReminderRequest) (ReminderResponse, error) {
	var reminder *model.Reminder
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var loadErr error
		reminder, loadErr = s.ownedReminder(txCtx, id, userID)
		if loadErr != nil {
			return loadErr
		}

		if reminder.SentAt != nil {
			return fmt.Errorf("reminder has already been sent")
		}

		if req.ScheduledAt != nil {
			parsed, parseErr := time.Parse(time.RFC3339, *req.ScheduledAt)
			if parseErr != nil {
				return fmt.Errorf("invalid scheduled_at: %w", parseErr)
			}
			reminder.ScheduledAt = parsed
		}
		if req.Message != nil {
			reminder.Message = *req.Message
		}

		return s.reminderRepo.Update(txCtx, reminder)
	})
	if err != nil {
		return ReminderResponse{}, err
	}

	return toReminderResponse(*reminder), nil
}

func (s *reminderService) DeleteReminder(ctx context.Context, id string, userID uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		reminder, err := s.ownedReminder(txCtx, id, userID)
		if err != nil {
			return err
		}
		if reminder.SentAt != nil {
			return fmt.Errorf("reminder has already been sent")
		}
		return s.reminderRepo.Delete(txCtx, reminder.ID)
	})
}

func (s *reminderService) MarkSent(ctx context.Context, id string, userID uuid.UUID) (ReminderResponse, error) {
	var reminder *model.Reminder
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var loadErr error
		reminder, loadErr = s.ownedReminder(txCtx, id, userID)
		if loadErr != nil {
			return loadErr
		}
		if reminder.SentAt != nil {
			return fmt.Errorf("reminder has already been sent")
		}
		now := s.clock.Now()
		reminder.SentAt = &now
		return s.reminderRepo.Update(txCtx, reminder)
	})
	if err != nil {
		return ReminderResponse{}, err
	}

	return toReminderResponse(*reminder), nil
}

// --- Helpers ---

func (s *reminderService) ownedInvoice(ctx context.Context, id string, userID uuid.UUID) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.UserID != userID {
		return nil, fmt.Errorf("invoice not found")
	}
	return invoice, nil
}

func (s *reminderService) ownedReminder(ctx context.Context, id string, userID uuid.UUID) (*model.Reminder, error) {
	reminderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder id: %w", err)
	}
	reminder, err := s.reminderRepo.FindByID(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("reminder not found: %w", err)
	}
	if _, err := s.ownedInvoice(ctx, reminder.InvoiceID.String(), userID); err != nil {
		return nil, fmt.Errorf("reminder not found")
	}
	return reminder, nil
}

func toReminderResponse(r model.Reminder) ReminderResponse {
	resp := ReminderResponse{
		ID:          r.ID.String(),
		InvoiceID:   r.InvoiceID.String(),
		Type:        r.Type,
		ScheduledAt: r.ScheduledAt.Format(time.RFC3339),
		Message:     r.Message,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.SentAt != nil {
		s := r.SentAt.Format(time.RFC3339)
		resp.SentAt = &s
	}
	return resp
}
