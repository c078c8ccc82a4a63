package sales

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	"github.com/angelmondragon/gaspos-terminal/pkg/pagination"
)

// Repository persists sales in insertion order.
type Repository interface {
	Create(ctx context.Context, sale *models.Sale) error
	ListUnsynced(ctx context.Context) ([]models.Sale, error)
	MarkSynced(ctx context.Context, invoiceNumber string, at time.Time) (bool, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Sale, error)
	List(ctx context.Context, params listParams) ([]models.Sale, *pagination.Cursor, error)
	CountUnsynced(ctx context.Context) (int64, error)
	LatestInvoiceNumber(ctx context.Context, prefix string) (string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listParams struct {
	Limit  int
	Cursor *pagination.Cursor
	Synced *bool
}

func (r *repositoryImpl) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repositoryImpl) ListUnsynced(ctx context.Context) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Where("synced = ?", false).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

// MarkSynced only touches rows that are still unsynced so synced_at keeps the first acceptance.
func (r *repositoryImpl) MarkSynced(ctx context.Context, invoiceNumber string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("invoice_number = ? AND synced = ?", invoiceNumber, false).
		Updates(map[string]any{
			"synced":    true,
			"synced_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *repositoryImpl) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		Take(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listParams) ([]models.Sale, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if params.Synced != nil {
		query = query.Where("synced = ?", *params.Synced)
	}
	if params.Cursor != nil {
		query = query.Where("seq < ?", params.Cursor.Seq)
	}

	var rows []models.Sale
	if err := query.Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		rows = rows[:normalized]
		return rows, &pagination.Cursor{Seq: rows[len(rows)-1].Seq}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) CountUnsynced(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("synced = ?", false).
		Count(&count).Error
	return count, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LatestInvoiceNumber returns the most recently recorded invoice number issued
// under prefix, or "" when there is none.
func (r *repositoryImpl) LatestInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where(`invoice_number LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"-%").
		Order("seq DESC").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}
