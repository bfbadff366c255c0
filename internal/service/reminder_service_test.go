package service

import (
	"context"
	"testing"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var reminderNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type reminderFixture struct {
	svc       ReminderService
	invoices  *fakeInvoiceRepo
	reminders *fakeReminderRepo
	userID    uuid.UUID
}

func newReminderFixture(t *testing.T, invoices ...*model.Invoice) *reminderFixture {
	t.Helper()
	f := &reminderFixture{
		invoices:  newFakeInvoiceRepo(invoices...),
		reminders: &fakeReminderRepo{},
		userID:    uuid.New(),
	}
	for _, inv := range invoices {
		inv.UserID = f.userID
		require.NoError(t, f.invoices.Update(context.Background(), inv))
	}
	f.svc = NewReminderService(f.reminders, f.invoices, fakeTxManager{}, clock.Fixed(reminderNow), zap.NewNop())
	return f
}

func TestCreateReminder_DefaultsFollowInvoiceState(t *testing.T) {
	paid := testInvoice(model.StatusPaid, reminderNow.AddDate(0, 0, -7))
	f := newReminderFixture(t, paid)

	resp, err := f.svc.CreateReminder(context.Background(), paid.ID.String(), f.userID, CreateReminderRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.ReminderThankYou, resp.Type)
	assert.Equal(t, model.DefaultReminderMessage(model.ReminderThankYou), resp.Message)
	assert.Equal(t, reminderNow.Add(24*time.Hour).Format(time.RFC3339), resp.ScheduledAt)
}

func TestCreateReminder_ExplicitFieldsWin(t *testing.T) {
	inv := testInvoice(model.StatusSent, reminderNow.AddDate(0, 0, 7))
	f := newReminderFixture(t, inv)

	scheduled := reminderNow.AddDate(0, 0, 3).Format(time.RFC3339)
	resp, err := f.svc.CreateReminder(context.Background(), inv.ID.String(), f.userID, CreateReminderRequest{
		Type:        model.ReminderOverdue,
		ScheduledAt: scheduled,
		Message:     "Final notice.",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReminderOverdue, resp.Type)
	assert.Equal(t, scheduled, resp.ScheduledAt)
	assert.Equal(t, "Final notice.", resp.Message)
}

func TestUpdateReminder_SentReminderIsImmutable(t *testing.T) {
	inv := testInvoice(model.StatusSent, reminderNow.AddDate(0, 0, 7))
	f := newReminderFixture(t, inv)

	created, err := f.svc.CreateReminder(context.Background(), inv.ID.String(), f.userID, CreateReminderRequest{})
	require.NoError(t, err)

	_, err = f.svc.MarkSent(context.Background(), created.ID, f.userID)
	require.NoError(t, err)

	message := "edited"
	_, err = f.svc.UpdateReminder(context.Background(), created.ID, f.userID, UpdateReminderRequest{Message: &message})
	assert.ErrorContains(t, err, "already been sent")

	err = f.svc.DeleteReminder(context.Background(), created.ID, f.userID)
	assert.ErrorContains(t, err, "already been sent")
}

func TestMarkSent_Twice(t *testing.T) {
	inv := testInvoice(model.StatusSent, reminderNow.AddDate(0, 0, 7))
	f := newReminderFixture(t, inv)

	created, err := f.svc.CreateReminder(context.Background(), inv.ID.String(), f.userID, CreateReminderRequest{})
	require.NoError(t, err)

	first, err := f.svc.MarkSent(context.Background(), created.ID, f.userID)
	require.NoError(t, err)
	require.NotNil(t, first.SentAt)

	_, err = f.svc.MarkSent(context.Background(), created.ID, f.userID)
	assert.ErrorContains(t, err, "already been sent")
}

func TestListReminders_ScopedToOwner(t *testing.T) {
	inv := testInvoice(model.StatusSent, reminderNow.AddDate(0, 0, 7))
	f := newReminderFixture(t, inv)

	_, err := f.svc.CreateReminder(context.Background(), inv.ID.String(), f.userID, CreateReminderRequest{})
	require.NoError(t, err)

	listed, err := f.svc.ListByInvoice(context.Background(), inv.ID.String(), f.userID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = f.svc.ListByInvoice(context.Background(), inv.ID.String(), uuid.New())
	assert.Error(t, err, "foreign invoices must look like missing ones")
}
