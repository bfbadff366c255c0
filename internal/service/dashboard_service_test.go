package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"invoicer/internal/clock"
	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAggregateStore keeps one JSON blob per user, like the redis-backed
// cache.
type fakeAggregateStore struct {
	entries map[uuid.UUID][]byte
	sets    int
}

func newFakeAggregateStore() *fakeAggregateStore {
	return &fakeAggregateStore{entries: make(map[uuid.UUID][]byte)}
}

func (f *fakeAggregateStore) Get(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error) {
	raw, ok := f.entries[userID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeAggregateStore) Set(ctx context.Context, userID uuid.UUID, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[userID] = raw
	f.sets++
	return nil
}

func (f *fakeAggregateStore) Invalidate(ctx context.Context, userID uuid.UUID) error {
	delete(f.entries, userID)
	return nil
}

var dashNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dashInvoice(userID uuid.UUID, status string, amount int64, dueDate time.Time) *model.Invoice {
	return &model.Invoice{
		ID:      uuid.New(),
		UserID:  userID,
		Amount:  decimal.NewFromInt(amount),
		DueDate: dueDate,
		Status:  status,
	}
}

func TestGetSummary_ComputesTotals(t *testing.T) {
	userID := uuid.New()
	repo := newFakeInvoiceRepo(
		dashInvoice(userID, model.StatusDraft, 50, dashNow.AddDate(0, 0, 10)),
		dashInvoice(userID, model.StatusSent, 100, dashNow.AddDate(0, 0, 5)),
		dashInvoice(userID, model.StatusOverdue, 200, dashNow.AddDate(0, 0, -5)),
		dashInvoice(userID, model.StatusPaid, 300, dashNow.AddDate(0, 0, -20)),
		// Another user's invoice must not leak into the summary.
		dashInvoice(uuid.New(), model.StatusSent, 999, dashNow.AddDate(0, 0, 5)),
	)
	store := newFakeAggregateStore()
	svc := NewDashboardService(repo, store, clock.Fixed(dashNow), zap.NewNop())

	summary, err := svc.GetSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalInvoices)
	assert.Equal(t, int64(1), summary.CountsByStatus[model.StatusOverdue])
	assert.Equal(t, "300.00", summary.OutstandingTotal, "sent + overdue amounts")
	assert.Equal(t, "300.00", summary.PaidTotal)
	assert.Equal(t, int64(1), summary.OverdueCount)
}

func TestGetSummary_ServedFromCacheUntilInvalidated(t *testing.T) {
	userID := uuid.New()
	repo := newFakeInvoiceRepo(
		dashInvoice(userID, model.StatusSent, 100, dashNow.AddDate(0, 0, 5)),
	)
	store := newFakeAggregateStore()
	svc := NewDashboardService(repo, store, clock.Fixed(dashNow), zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.sets)

	// Mutate the store behind the cache's back: the stale snapshot wins.
	require.NoError(t, repo.Create(ctx, dashInvoice(userID, model.StatusSent, 500, dashNow.AddDate(0, 0, 5))))
	cached, err := svc.GetSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalInvoices, cached.TotalInvoices)
	assert.Equal(t, 1, store.sets, "cache hit must not rewrite the entry")

	// Invalidation forces a recompute on the next read.
	require.NoError(t, store.Invalidate(ctx, userID))
	fresh, err := svc.GetSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalInvoices)
	assert.Equal(t, 2, store.sets)
}
