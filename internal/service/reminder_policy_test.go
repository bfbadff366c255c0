package service

import (
	"testing"
	"time"

	"invoicer/internal/model"

	"github.com/stretchr/testify/assert"
)

var policyNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func invoiceWith(status string, dueDate time.Time) model.Invoice {
	return model.Invoice{Status: status, DueDate: dueDate}
}

func TestShouldCreateReminder_ThankYou(t *testing.T) {
	due := policyNow.AddDate(0, 0, 7)

	assert.True(t, ShouldCreateReminder(invoiceWith(model.StatusPaid, due), model.ReminderThankYou, policyNow))

	for _, status := range []string{model.StatusDraft, model.StatusSent, model.StatusOverdue} {
		assert.False(t, ShouldCreateReminder(invoiceWith(status, due), model.ReminderThankYou, policyNow),
			"thank_you must be rejected for status %s", status)
	}
}

func TestShouldCreateReminder_Upcoming(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		want bool
	}{
		{"due in the future", policyNow.Add(time.Hour), true},
		{"due far in the future", policyNow.AddDate(0, 1, 0), true},
		{"due exactly now", policyNow, false},
		{"due in the past", policyNow.Add(-time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := invoiceWith(model.StatusSent, tc.due)
			assert.Equal(t, tc.want, ShouldCreateReminder(inv, model.ReminderUpcoming, policyNow))
		})
	}
}

func TestShouldCreateReminder_Overdue(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		want bool
	}{
		{"due in the past", policyNow.Add(-time.Hour), true},
		{"due far in the past", policyNow.AddDate(0, -1, 0), true},
		{"due exactly now", policyNow, false},
		{"due in the future", policyNow.Add(time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := invoiceWith(model.StatusSent, tc.due)
			assert.Equal(t, tc.want, ShouldCreateReminder(inv, model.ReminderOverdue, policyNow))
		})
	}
}

func TestShouldCreateReminder_UnknownType(t *testing.T) {
	inv := invoiceWith(model.StatusPaid, policyNow.Add(time.Hour))
	assert.False(t, ShouldCreateReminder(inv, "carrier_pigeon", policyNow))
	assert.False(t, ShouldCreateReminder(inv, "", policyNow))
}

func TestDefaultReminderType(t *testing.T) {
	future := policyNow.AddDate(0, 0, 7)
	past := policyNow.AddDate(0, 0, -7)

	assert.Equal(t, model.ReminderThankYou, DefaultReminderType(invoiceWith(model.StatusPaid, past), policyNow))
	assert.Equal(t, model.ReminderOverdue, DefaultReminderType(invoiceWith(model.StatusSent, past), policyNow))
	assert.Equal(t, model.ReminderUpcoming, DefaultReminderType(invoiceWith(model.StatusSent, future), policyNow))
	assert.Equal(t, model.ReminderUpcoming, DefaultReminderType(invoiceWith(model.StatusDraft, future), policyNow))
}

func TestDefaultReminderMessage(t *testing.T) {
	for _, typ := range []string{model.ReminderUpcoming, model.ReminderOverdue, model.ReminderThankYou} {
		assert.NotEmpty(t, model.DefaultReminderMessage(typ))
	}
	assert.Empty(t, model.DefaultReminderMessage("carrier_pigeon"))
}
