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

var invoiceNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type invoiceFixture struct {
	svc       InvoiceService
	invoices  *fakeInvoiceRepo
	files     *fakeFileStore
	dashboard *fakeInvalidator
	analytics *fakeInvalidator
	userID    uuid.UUID
}

func newInvoiceFixture(t *testing.T, invoices ...*model.Invoice) *invoiceFixture {
	t.Helper()
	f := &invoiceFixture{
		invoices:  newFakeInvoiceRepo(invoices...),
		files:     &fakeFileStore{},
		dashboard: &fakeInvalidator{},
		analytics: &fakeInvalidator{},
		userID:    uuid.New(),
	}
	f.svc = NewInvoiceService(f.invoices, fakeTxManager{}, f.files, f.dashboard, f.analytics, clock.Fixed(invoiceNow), zap.NewNop())
	return f
}

func validCreateRequest() CreateInvoiceRequest {
	return CreateInvoiceRequest{
		ClientName:  "Acme Ltd",
		ClientEmail: "billing@acme.test",
		Amount:      "149.90",
		IssueDate:   "2026-03-15",
		DueDate:     "2026-04-14",
	}
}

func TestCreateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	resp, err := f.svc.CreateInvoice(context.Background(), f.userID, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, resp.Status)
	assert.Equal(t, "149.90", resp.Amount)
	assert.Equal(t, f.userID.String(), resp.UserID)
	assert.Len(t, f.dashboard.calls, 1)
}

func TestCreateInvoice_DueBeforeIssueRejected(t *testing.T) {
	f := newInvoiceFixture(t)

	req := validCreateRequest()
	req.DueDate = "2026-03-01"
	_, err := f.svc.CreateInvoice(context.Background(), f.userID, req)
	assert.ErrorContains(t, err, "due_date")
}

func TestCreateInvoice_DueEqualsIssueAllowed(t *testing.T) {
	f := newInvoiceFixture(t)

	req := validCreateRequest()
	req.DueDate = req.IssueDate
	_, err := f.svc.CreateInvoice(context.Background(), f.userID, req)
	assert.NoError(t, err)
}

func TestCreateInvoice_NonPositiveAmountRejected(t *testing.T) {
	f := newInvoiceFixture(t)

	for _, amount := range []string{"0", "-10.00", "not-a-number"} {
		req := validCreateRequest()
		req.Amount = amount
		_, err := f.svc.CreateInvoice(context.Background(), f.userID, req)
		assert.Error(t, err, "amount %q must be rejected", amount)
	}
}

func TestUpdateInvoice_MarkPaidStampsPaidAt(t *testing.T) {
	inv := testInvoice(model.StatusSent, invoiceNow.AddDate(0, 0, 7))
	f := newInvoiceFixture(t, inv)
	inv.UserID = f.userID
	require.NoError(t, f.invoices.Update(context.Background(), inv))

	status := model.StatusPaid
	resp, err := f.svc.UpdateInvoice(context.Background(), inv.ID.String(), f.userID, UpdateInvoiceRequest{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, resp.PaidAt)
	assert.Equal(t, model.StatusPaid, resp.Status)
}

func TestDeleteInvoice_UnconditionalEvenWhenPaid(t *testing.T) {
	paid := testInvoice(model.StatusPaid, invoiceNow.AddDate(0, 0, -7))
	objectName := "invoices/xyz/receipt.pdf"
	paid.FilePath = &objectName
	f := newInvoiceFixture(t, paid)
	paid.UserID = f.userID
	require.NoError(t, f.invoices.Update(context.Background(), paid))

	err := f.svc.DeleteInvoice(context.Background(), paid.ID.String(), f.userID)
	require.NoError(t, err, "single-invoice deletion has no paid guard")

	_, err = f.invoices.FindByID(context.Background(), paid.ID)
	assert.Error(t, err)
	assert.Equal(t, []string{objectName}, f.files.removed)
}

func TestDeleteInvoice_OtherUsersInvoiceHidden(t *testing.T) {
	inv := testInvoice(model.StatusDraft, invoiceNow.AddDate(0, 0, 7))
	f := newInvoiceFixture(t, inv)

	err := f.svc.DeleteInvoice(context.Background(), inv.ID.String(), f.userID)
	assert.Error(t, err, "foreign invoices must look like missing ones")
}

func TestAttachFile_ReplacesPreviousObject(t *testing.T) {
	inv := testInvoice(model.StatusSent, invoiceNow.AddDate(0, 0, 7))
	old := "invoices/old/contract.pdf"
	inv.FilePath = &old
	f := newInvoiceFixture(t, inv)
	inv.UserID = f.userID
	require.NoError(t, f.invoices.Update(context.Background(), inv))

	resp, err := f.svc.AttachFile(context.Background(), inv.ID.String(), f.userID,
		"contract-v2.pdf", nil, 0, "application/pdf")
	require.NoError(t, err)
	require.NotNil(t, resp.FilePath)
	assert.NotEqual(t, old, *resp.FilePath)
	assert.Equal(t, []string{old}, f.files.removed)
	assert.Len(t, f.files.uploaded, 1)
}
