package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
)

// Repository persists the last good body per read endpoint.
type Repository interface {
	Upsert(ctx context.Context, snapshot *models.CatalogSnapshot) error
	Find(ctx context.Context, resource string) (*models.CatalogSnapshot, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Upsert(ctx context.Context, snapshot *models.CatalogSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "fetched_at"}),
		}).
		Create(snapshot).Error
}

// Find returns nil, nil when the resource was never fetched.
func (r *repositoryImpl) Find(ctx context.Context, resource string) (*models.CatalogSnapshot, error) {
	var snapshot models.CatalogSnapshot
	err := r.db.WithContext(ctx).Where("resource = ?", resource).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
