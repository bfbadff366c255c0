package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FileStore is the object-storage collaborator for invoice attachments.
type FileStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectName string) error
	PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// --- DTOs ---

type CreateInvoiceRequest struct {
	ClientName    string `json:"client_name" binding:"required"`
	ClientEmail   string `json:"client_email" binding:"required,email"`
	ClientAddress string `json:"client_address"`
	Amount        string `json:"amount" binding:"required"`
	IssueDate     string `json:"issue_date" binding:"required"` // 2006-01-02
	DueDate       string `json:"due_date" binding:"required"`   // 2006-01-02
	Notes         string `json:"notes"`
	TeamID        string `json:"team_id"`
}

type UpdateInvoiceRequest struct {
	ClientName    *string `json:"client_name"`
	ClientEmail   *string `json:"client_email" binding:"omitempty,email"`
	ClientAddress *string `json:"client_address"`
	Amount        *string `json:"amount"`
	DueDate       *string `json:"due_date"`
	Status        *string `json:"status" binding:"omitempty,oneof=draft sent paid overdue"`
	Notes         *string `json:"notes"`
}

type InvoiceResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	TeamID        *string `json:"team_id"`
	ClientName    string  `json:"client_name"`
	ClientEmail   string  `json:"client_email"`
	ClientAddress string  `json:"client_address"`
	Amount        string  `json:"amount"`
	IssueDate     string  `json:"issue_date"`
	DueDate       string  `json:"due_date"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes"`
	FilePath      *string `json:"file_path"`
	PaidAt        *string `json:"paid_at"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string, userID uuid.UUID) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, id string, userID uuid.UUID, req UpdateInvoiceRequest) (InvoiceResponse, error)
	// DeleteInvoice removes a single invoice regardless of status, unlike the
	// bulk path which skips paid invoices.
	DeleteInvoice(ctx context.Context, id string, userID uuid.UUID) error
	AttachFile(ctx context.Context, id string, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (InvoiceResponse, error)
	AttachmentURL(ctx context.Context, id string, userID uuid.UUID) (string, error)
}

type invoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	txManager      repository.TransactionManager
	files          FileStore
	dashboardCache CacheInvalidator
	analyticsCache CacheInvalidator
	clock          clock.Clock
	logger         *zap.Logger
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	files FileStore,
	dashboardCache CacheInvalidator,
	analyticsCache CacheInvalidator,
	clk clock.Clock,
	logger *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:    invoiceRepo,
		txManager:      txManager,
		files:          files,
		dashboardCache: dashboardCache,
		analyticsCache: analyticsCache,
		clock:          clk,
		logger:         logger,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.Sign() <= 0 {
		return InvoiceResponse{}, fmt.Errorf("amount must be positive")
	}

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid issue_date: %w", err)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid due_date: %w", err)
	}
	if dueDate.Before(issueDate) {
		return InvoiceResponse{}, fmt.Errorf("due_date must not be before issue_date")
	}

	var teamID *uuid.UUID
	if req.TeamID != "" {
		parsed, parseErr := uuid.Parse(req.TeamID)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid team_id: %w", parseErr)
		}
		teamID = &parsed
	}

	invoice := model.Invoice{
		UserID:        userID,
		TeamID:        teamID,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientAddress: req.ClientAddress,
		Amount:        amount.Round(2),
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        model.StatusDraft,
		Notes:         req.Notes,
	}
	if err := s.invoiceRepo.Create(ctx, &invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.invalidateCaches(ctx, userID)
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string, userID uuid.UUID) (InvoiceResponse, error) {
	invoice, err := s.ownedInvoice(ctx, id, userID)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, userID uuid.UUID, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	var invoice *model.Invoice
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var loadErr error
		invoice, loadErr = s.ownedInvoice(txCtx, id, userID)
		if loadErr != nil {
			return loadErr
		}

		if req.ClientName != nil {
			invoice.ClientName = *req.ClientName
		}
		if req.ClientEmail != nil {
			invoice.ClientEmail = *req.ClientEmail
		}
		if req.ClientAddress != nil {
			invoice.ClientAddress = *req.ClientAddress
		}
		if req.Notes != nil {
			invoice.Notes = *req.Notes
		}
		if req.Amount != nil {
			amount, parseErr := decimal.NewFromString(*req.Amount)
			if parseErr != nil {
				return fmt.Errorf("invalid amount: %w", parseErr)
			}
			if amount.Sign() <= 0 {
				return fmt.Errorf("amount must be positive")
			}
			invoice.Amount = amount.Round(2)
		}
		if req.DueDate != nil {
			dueDate, parseErr := time.Parse("2006-01-02", *req.DueDate)
			if parseErr != nil {
				return fmt.Errorf("invalid due_date: %w", parseErr)
			}
			invoice.DueDate = dueDate
		}
		if req.Status != nil && *req.Status != invoice.Status {
			invoice.Status = *req.Status
			if *req.Status == model.StatusPaid {
				now := s.clock.Now()
				invoice.PaidAt = &now
			} else {
				invoice.PaidAt = nil
			}
		}

		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.invalidateCaches(ctx, userID)
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string, userID uuid.UUID) error {
	invoice, err := s.ownedInvoice(ctx, id, userID)
	if err != nil {
		return err
	}

	if invoice.FilePath != nil && *invoice.FilePath != "" {
		if removeErr := s.files.Remove(ctx, *invoice.FilePath); removeErr != nil {
			s.logger.Warn("failed to remove invoice attachment",
				zap.String("object", *invoice.FilePath), zap.Error(removeErr))
		}
	}

	if err := s.invoiceRepo.Delete(ctx, invoice.ID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.invalidateCaches(ctx, userID)
	return nil
}

func (s *invoiceService) AttachFile(ctx context.Context, id string, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (InvoiceResponse, error) {
	invoice, err := s.ownedInvoice(ctx, id, userID)
	if err != nil {
		return InvoiceResponse{}, err
	}

	objectName := fmt.Sprintf("invoices/%s/%s%s", invoice.ID, uuid.NewString(), path.Ext(filename))
	if err := s.files.Upload(ctx, objectName, reader, size, contentType); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	// Replacing an attachment drops the previous object, best effort.
	if invoice.FilePath != nil && *invoice.FilePath != "" {
		if removeErr := s.files.Remove(ctx, *invoice.FilePath); removeErr != nil {
			s.logger.Warn("failed to remove replaced attachment",
				zap.String("object", *invoice.FilePath), zap.Error(removeErr))
		}
	}

	invoice.FilePath = &objectName
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) AttachmentURL(ctx context.Context, id string, userID uuid.UUID) (string, error) {
	invoice, err := s.ownedInvoice(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if invoice.FilePath == nil || *invoice.FilePath == "" {
		return "", fmt.Errorf("invoice has no attachment")
	}
	url, err := s.files.PresignedGet(ctx, *invoice.FilePath, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}
	return url, nil
}

// --- Helpers ---

func (s *invoiceService) ownedInvoice(ctx context.Context, id string, userID uuid.UUID) (*model.Invoice, error) {
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

func (s *invoiceService) invalidateCaches(ctx context.Context, userID uuid.UUID) {
	if err := s.dashboardCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
	if err := s.analyticsCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		UserID:        inv.UserID.String(),
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
		Amount:        inv.Amount.StringFixed(2),
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		Status:        inv.Status,
		Notes:         inv.Notes,
		FilePath:      inv.FilePath,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.TeamID != nil {
		s := inv.TeamID.String()
		resp.TeamID = &s
	}
	if inv.PaidAt != nil {
		s := inv.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}
