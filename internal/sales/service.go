package sales

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/gaspos-terminal/pkg/db"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/pagination"
)

// Queue is the durable local sale queue. Sales are never deleted; only the
// synced flag changes after insert.
type Queue interface {
	NextInvoiceNumber() string
	Append(ctx context.Context, sale *models.Sale) error
	ListUnsynced(ctx context.Context) ([]models.Sale, error)
	MarkSynced(ctx context.Context, invoiceNumber string) error
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Sale, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

// ListParams configures the recent-sales listing.
type ListParams struct {
	Limit  int
	Cursor string
	Synced *bool
}

// ListResult wraps returned sales and the cursor for the next page.
type ListResult struct {
	Items  []models.Sale `json:"items"`
	Cursor string        `json:"cursor"`
}

type queue struct {
	repo     Repository
	invoices *InvoiceGenerator
	prefix   string
	now      func() time.Time
}

// Option configures the queue.
type Option func(*queue)

// WithClock overrides the clock used for timestamps and invoice numbers.
func WithClock(now func() time.Time) Option {
	return func(q *queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithInvoicePrefix changes the "INV" prefix of generated invoice numbers.
func WithInvoicePrefix(prefix string) Option {
	return func(q *queue) {
		q.prefix = prefix
	}
}

// NewQueue wires the sale queue and seeds invoice numbering from the last
// recorded sale.
func NewQueue(ctx context.Context, repo Repository, opts ...Option) (Queue, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales repository required")
	}
	q := &queue{repo: repo, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	q.invoices = NewInvoiceGenerator(q.prefix, q.now)
	latest, err := repo.LatestInvoiceNumber(ctx, q.invoices.Prefix())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read last invoice number")
	}
	q.invoices.Seed(latest)
	return q, nil
}

func (q *queue) NextInvoiceNumber() string {
	return q.invoices.Next()
}

// Append stores sale as unsynced. A failed write means the sale was not recorded
// and the cashier has to retry; nothing is retried here.
func (q *queue) Append(ctx context.Context, sale *models.Sale) error {
	if sale == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale is required")
	}
	if sale.InvoiceNumber == "" {
		sale.InvoiceNumber = q.NextInvoiceNumber()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = q.now().UTC()
	}
	sale.Seq = 0
	sale.Synced = false
	sale.SyncedAt = nil

	if err := q.repo.Create(ctx, sale); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice number already recorded")
		}
		details := map[string]any{"invoice_number": sale.InvoiceNumber}
		if pkgerrors.IsStorageExhausted(err) {
			details["reason"] = "storage full"
		}
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "sale was not recorded").WithDetails(details)
	}
	return nil
}

func (q *queue) ListUnsynced(ctx context.Context) ([]models.Sale, error) {
	rows, err := q.repo.ListUnsynced(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list unsynced sales")
	}
	return rows, nil
}

// MarkSynced is a no-op for unknown or already synced invoices.
func (q *queue) MarkSynced(ctx context.Context, invoiceNumber string) error {
	if _, err := q.repo.MarkSynced(ctx, invoiceNumber, q.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "mark sale synced")
	}
	return nil
}

func (q *queue) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Sale, error) {
	if invoiceNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice number is required")
	}
	sale, err := q.repo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find sale")
	}
	return sale, nil
}

func (q *queue) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listParams{Limit: params.Limit, Synced: params.Synced}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := q.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (q *queue) CountUnsynced(ctx context.Context) (int64, error) {
	count, err := q.repo.CountUnsynced(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unsynced sales")
	}
	return count, nil
}
