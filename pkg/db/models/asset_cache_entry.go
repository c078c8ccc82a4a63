package models

import (
	"net/http"
	"time"
)

// AssetCacheEntry is one cached shell response inside a named cache version.
type AssetCacheEntry struct {
	CacheName   string      `gorm:"column:cache_name;primaryKey"`
	URL         string      `gorm:"column:url;primaryKey"`
	Status      int         `gorm:"column:status;not null"`
	ContentType string      `gorm:"column:content_type;not null"`
	Headers     http.Header `gorm:"column:headers;serializer:json"`
	Body        []byte      `gorm:"column:body;not null"`
	StoredAt    time.Time   `gorm:"column:stored_at;not null"`
}

func (AssetCacheEntry) TableName() string { return "asset_cache_entries" }
