package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchOverride records a branch's deviation from one master item.
// FullyLocked implies both field locks and also blocks removal.
type BranchOverride struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	BranchSyncID         uint                `gorm:"not null;uniqueIndex:idx_override_branch_item" json:"branch_sync_id"`
	MasterItemID         uint                `gorm:"not null;uniqueIndex:idx_override_branch_item" json:"master_item_id"`
	PriceOverride        decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price_override"`
	AvailabilityOverride *bool               `json:"availability_override"`
	PriceLocked          bool                `gorm:"not null;default:false" json:"price_locked"`
	AvailabilityLocked   bool                `gorm:"not null;default:false" json:"availability_locked"`
	FullyLocked          bool                `gorm:"not null;default:false" json:"fully_locked"`
	UpdatedBy            *uint               `json:"updated_by,omitempty"`
	CreatedAt            time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"not null" json:"updated_at"`
}
