package assets

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
)

// Repository stores cached responses keyed by cache name and url.
type Repository interface {
	ReplaceCache(ctx context.Context, cacheName string, entries []models.AssetCacheEntry) error
	Put(ctx context.Context, entry *models.AssetCacheEntry) error
	Find(ctx context.Context, cacheName, url string) (*models.AssetCacheEntry, error)
	Exists(ctx context.Context, cacheName, url string) (bool, error)
	FindLatest(ctx context.Context, url string) (*models.AssetCacheEntry, error)
	DeleteOtherCaches(ctx context.Context, keep string) (int64, error)
	CacheNames(ctx context.Context) ([]string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ReplaceCache swaps the whole content of cacheName in one transaction.
func (r *repositoryImpl) ReplaceCache(ctx context.Context, cacheName string, entries []models.AssetCacheEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cache_name = ?", cacheName).Delete(&models.AssetCacheEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *repositoryImpl) Put(ctx context.Context, entry *models.AssetCacheEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_name"}, {Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "content_type", "headers", "body", "stored_at"}),
		}).
		Create(entry).Error
}

// Find returns nil, nil when nothing is cached for url.
func (r *repositoryImpl) Find(ctx context.Context, cacheName, url string) (*models.AssetCacheEntry, error) {
	var entry models.AssetCacheEntry
	err := r.db.WithContext(ctx).
		Where("cache_name = ? AND url = ?", cacheName, url).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) Exists(ctx context.Context, cacheName, url string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssetCacheEntry{}).
		Where("cache_name = ? AND url = ?", cacheName, url).
		Count(&count).Error
	return count > 0, err
}

// FindLatest looks url up in any cache, newest copy first. nil, nil when absent.
func (r *repositoryImpl) FindLatest(ctx context.Context, url string) (*models.AssetCacheEntry, error) {
	var entry models.AssetCacheEntry
	err := r.db.WithContext(ctx).
		Where("url = ?", url).
		Order("stored_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) DeleteOtherCaches(ctx context.Context, keep string) (int64, error) {
	res := r.db.WithContext(ctx).Where("cache_name <> ?", keep).Delete(&models.AssetCacheEntry{})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) CacheNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.AssetCacheEntry{}).
		Distinct("cache_name").
		Order("cache_name").
		Pluck("cache_name", &names).Error
	return names, err
}
