package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	StatusDraft   = "draft"
	StatusSent    = "sent"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// ValidStatus reports whether s is one of the four invoice statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice represents a billing document a user issues to a client.
// Paid invoices cannot be removed by bulk deletion; the single-invoice
// deletion path is unconditional.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
	TeamID        *uuid.UUID      `gorm:"type:uuid;index" json:"team_id"` // nullable: personal invoices have no team
	ClientName    string          `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientEmail   string          `gorm:"type:varchar(255);not null" json:"client_email"`
	ClientAddress string          `gorm:"type:text" json:"client_address"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null;index" json:"due_date"` // >= IssueDate, enforced at creation only
	Status        string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	FilePath      *string         `gorm:"type:varchar(512)" json:"file_path"` // object key in the attachment store
	PaidAt        *time.Time      `json:"paid_at"`
	Reminders     []Reminder      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"reminders,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUIDv7 primary key so ids sort by creation time.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		i.ID = id
	}
	return nil
}
