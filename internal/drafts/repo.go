package drafts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
)

// Repository persists parked carts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, draft *models.PosDraft) error
	ListActive(ctx context.Context, terminalID string, nowMillis int64) ([]models.PosDraft, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PosDraft, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, terminalID string) (int64, error)
	DeleteExpired(ctx context.Context, nowMillis int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, draft *models.PosDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *repositoryImpl) ListActive(ctx context.Context, terminalID string, nowMillis int64) ([]models.PosDraft, error) {
	query := r.db.WithContext(ctx).Where("expires_at > ?", nowMillis)
	if terminalID != "" {
		query = query.Where("terminal_id = ?", terminalID)
	}
	var rows []models.PosDraft
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Find(ctx context.Context, id uuid.UUID) (*models.PosDraft, error) {
	var draft models.PosDraft
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PosDraft{})
	return result.RowsAffected > 0, result.Error
}

func (r *repositoryImpl) DeleteAll(ctx context.Context, terminalID string) (int64, error) {
	query := r.db.WithContext(ctx)
	if terminalID != "" {
		query = query.Where("terminal_id = ?", terminalID)
	} else {
		query = query.Where("1 = 1")
	}
	result := query.Delete(&models.PosDraft{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteExpired(ctx context.Context, nowMillis int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", nowMillis).Delete(&models.PosDraft{})
	return result.RowsAffected, result.Error
}
