package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

// PosDraft is a parked cart. ExpiresAt is epoch milliseconds.
type PosDraft struct {
	ID         uuid.UUID          `gorm:"column:id;primaryKey" json:"id"`
	TerminalID string             `gorm:"column:terminal_id;not null" json:"terminal_id"`
	Label      string             `gorm:"column:label;not null" json:"label"`
	Snapshot   types.CartSnapshot `gorm:"column:snapshot;serializer:json;not null" json:"snapshot"`
	ItemCount  int                `gorm:"column:item_count;not null" json:"item_count"`
	Total      decimal.Decimal    `gorm:"column:total;not null" json:"total"`
	CreatedAt  time.Time          `gorm:"column:created_at;not null" json:"created_at"`
	ExpiresAt  int64              `gorm:"column:expires_at;not null" json:"expires_at"`
}

func (PosDraft) TableName() string { return "pos_drafts" }
