package service

import (
	"time"

	"invoicer/internal/model"
)

// ShouldCreateReminder decides whether a reminder of the given type makes
// sense for an invoice at evaluation time "now". Pure predicate, no side
// effects:
//
//   - thank_you: only for paid invoices
//   - upcoming:  only while the due date is strictly in the future
//   - overdue:   only once the due date is strictly in the past
//
// Any other type is rejected.
func ShouldCreateReminder(invoice model.Invoice, reminderType string, now time.Time) bool {
	switch reminderType {
	case model.ReminderThankYou:
		return invoice.Status == model.StatusPaid
	case model.ReminderUpcoming:
		return invoice.DueDate.After(now)
	case model.ReminderOverdue:
		return invoice.DueDate.Before(now)
	default:
		return false
	}
}

// DefaultReminderType picks the reminder type that fits an invoice's current
// state: thank_you once paid, overdue past the due date, upcoming otherwise.
func DefaultReminderType(invoice model.Invoice, now time.Time) string {
	if invoice.Status == model.StatusPaid {
		return model.ReminderThankYou
	}
	if invoice.DueDate.Before(now) {
		return model.ReminderOverdue
	}
	return model.ReminderUpcoming
}
