package models

import "time"

// CatalogSnapshot keeps the last good body of a backend read endpoint.
type CatalogSnapshot struct {
	Resource  string    `gorm:"column:resource;primaryKey"`
	Body      []byte    `gorm:"column:body;not null"`
	FetchedAt time.Time `gorm:"column:fetched_at;not null"`
}

func (CatalogSnapshot) TableName() string { return "catalog_snapshots" }
