package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderType enum constants
const (
	ReminderUpcoming = "upcoming"
	ReminderOverdue  = "overdue"
	ReminderThankYou = "thank_you"
)

var reminderDefaultMessages = map[string]string{
	ReminderUpcoming: "Friendly reminder: your invoice is due soon. Please arrange payment before the due date.",
	ReminderOverdue:  "Your invoice is past due. Please arrange payment at your earliest convenience.",
	ReminderThankYou: "Thank you for your payment! We appreciate your business.",
}

// ValidReminderType reports whether t is one of the three reminder types.
func ValidReminderType(t string) bool {
	_, ok := reminderDefaultMessages[t]
	return ok
}

// DefaultReminderMessage returns the canned template for a reminder type,
// or "" for an unknown type.
func DefaultReminderMessage(t string) string {
	return reminderDefaultMessages[t]
}

// Reminder is a scheduled payment notification attached to an invoice.
// Once SentAt is set the reminder is immutable.
type Reminder struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice     *Invoice   `gorm:"foreignKey:InvoiceID" json:"-"`
	Type        string     `gorm:"type:varchar(20);not null" json:"type"`
	ScheduledAt time.Time  `gorm:"not null;index" json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}
