package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	// CreateBatch inserts all reminders in one statement. An empty slice is a
	// no-op, not an error.
	CreateBatch(ctx context.Context, reminders []model.Reminder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Reminder, error)
	Update(ctx context.Context, reminder *model.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	return GetDB(ctx, r.db).Create(reminder).Error
}

func (r *reminderRepository) CreateBatch(ctx context.Context, reminders []model.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&reminders).Error
}

func (r *reminderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := GetDB(ctx, r.db).First(&reminder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := GetDB(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("scheduled_at asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	return GetDB(ctx, r.db).Save(reminder).Error
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Reminder{}, "id = ?", id).Error
}
