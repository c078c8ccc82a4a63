package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/dbtest"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestQueue(t *testing.T) Queue {
	t.Helper()
	client := dbtest.Open(t)
	clock := &stepClock{t: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)}
	q, err := NewQueue(context.Background(), NewRepository(client.DB()), WithClock(clock.now))
	require.NoError(t, err)
	return q
}

func newSale(total string) *models.Sale {
	amount := decimal.RequireFromString(total)
	return &models.Sale{
		CustomerName:  types.DefaultCustomerName,
		CashierName:   "Ana",
		SalesPoint:    "Main",
		PaymentMethod: enums.PaymentMethodCash,
		Subtotal:      amount,
		Total:         amount,
		Items: []types.SaleLineItem{{
			CartLine:  types.CartLine{ProductID: "1", Name: "LPG 11kg", UnitPrice: amount, Quantity: decimal.NewFromInt(1)},
			LineTotal: amount,
		}},
	}
}

func TestAppendAndListUnsyncedPreservesOrder(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	var invoices []string
	for _, total := range []string{"100", "200", "300"} {
		sale := newSale(total)
		require.NoError(t, q.Append(ctx, sale))
		invoices = append(invoices, sale.InvoiceNumber)
	}

	rows, err := q.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, invoices[i], row.InvoiceNumber)
		assert.False(t, row.Synced)
	}
	assert.True(t, rows[1].Total.Equal(decimal.NewFromInt(200)))
	require.Len(t, rows[0].Items, 1)
	assert.Equal(t, "LPG 11kg", rows[0].Items[0].Name)

	count, err := q.CountUnsynced(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestMarkSyncedFlipsOnlyTarget(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	first, second := newSale("10"), newSale("20")
	require.NoError(t, q.Append(ctx, first))
	require.NoError(t, q.Append(ctx, second))

	require.NoError(t, q.MarkSynced(ctx, first.InvoiceNumber))
	require.NoError(t, q.MarkSynced(ctx, "INV-does-not-exist"))

	rows, err := q.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.InvoiceNumber, rows[0].InvoiceNumber)

	found, err := q.FindByInvoiceNumber(ctx, first.InvoiceNumber)
	require.NoError(t, err)
	assert.True(t, found.Synced)
	require.NotNil(t, found.SyncedAt)
}

func TestFindByInvoiceNumberNotFound(t *testing.T) {
	q := newTestQueue(t)
	_, err := q.FindByInvoiceNumber(context.Background(), "INV-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = q.FindByInvoiceNumber(context.Background(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAppendDuplicateInvoiceIsConflict(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	sale := newSale("10")
	sale.InvoiceNumber = "INV-42"
	require.NoError(t, q.Append(ctx, sale))

	dup := newSale("10")
	dup.InvoiceNumber = "INV-42"
	err := q.Append(ctx, dup)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

type failingRepo struct {
	Repository
}

func (failingRepo) LatestInvoiceNumber(context.Context, string) (string, error) {
	return "", nil
}

func (failingRepo) Create(context.Context, *models.Sale) error {
	return errors.New("disk I/O error")
}

func TestInvoiceNumbersIncreaseAcrossRestartWithClockBehind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())
	start := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	first, err := NewQueue(ctx, repo, WithInvoicePrefix("till-1"), WithClock(func() time.Time { return start }))
	require.NoError(t, err)
	before := newSale("10")
	before.InvoiceNumber = first.NextInvoiceNumber()
	require.NoError(t, first.Append(ctx, before))

	other := newSale("10")
	other.InvoiceNumber = "till-10-9999999999999"
	require.NoError(t, first.Append(ctx, other))

	behind := start.Add(-time.Hour)
	restarted, err := NewQueue(ctx, repo, WithInvoicePrefix("till-1"), WithClock(func() time.Time { return behind }))
	require.NoError(t, err)
	after := newSale("10")
	after.InvoiceNumber = restarted.NextInvoiceNumber()
	require.NoError(t, restarted.Append(ctx, after), "restart must not reuse %s", before.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("till-1-%d", start.UnixMilli()+1), after.InvoiceNumber)
}

func TestAppendStorageFailureIsReported(t *testing.T) {
	q, err := NewQueue(context.Background(), failingRepo{})
	require.NoError(t, err)

	err = q.Append(context.Background(), newSale("10"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStorage))
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Append(ctx, newSale("1")))
	}
	rows, err := q.ListUnsynced(ctx)
	require.NoError(t, err)
	require.NoError(t, q.MarkSynced(ctx, rows[0].InvoiceNumber))

	page, err := q.List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, rows[4].InvoiceNumber, page.Items[0].InvoiceNumber)
	assert.NotEmpty(t, page.Cursor)

	next, err := q.List(ctx, ListParams{Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 2)
	assert.Equal(t, rows[2].InvoiceNumber, next.Items[0].InvoiceNumber)

	synced := true
	onlySynced, err := q.List(ctx, ListParams{Synced: &synced})
	require.NoError(t, err)
	require.Len(t, onlySynced.Items, 1)
	assert.Empty(t, onlySynced.Cursor)

	_, err = q.List(ctx, ListParams{Cursor: "garbage!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestInvoiceGeneratorIsMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	gen := NewInvoiceGenerator("", func() time.Time { return fixed })

	first, second := gen.Next(), gen.Next()
	assert.Equal(t, "INV-1700000000000", first)
	assert.Equal(t, "INV-1700000000001", second)

	prefixed := NewInvoiceGenerator("T2", func() time.Time { return fixed })
	assert.Equal(t, "T2-1700000000000", prefixed.Next())
}
