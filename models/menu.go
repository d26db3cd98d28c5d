package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Menu adalah item menu lokal milik satu cabang (location).
// Item yang dibuat sendiri oleh cabang tidak punya SourceMasterItemID dan tidak pernah disentuh sync.
type Menu struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	LocationID         uint            `gorm:"not null;index:idx_menu_location_source" json:"location_id"`
	CategoryID         uint            `gorm:"not null" json:"category_id"`
	Category           MenuCategory    `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name               string          `gorm:"type:varchar(255); not null" json:"name"`
	Price              decimal.Decimal `gorm:"type:decimal(10,2); not null" json:"price"`
	Stock              int             `json:"stock"`
	Description        string          `gorm:"type:text" json:"description"`
	ImageUrl           *string         `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	IsAvailable        bool            `gorm:"not null" json:"is_available"`
	SourceMasterItemID *uint           `gorm:"index:idx_menu_location_source" json:"source_master_item_id,omitempty"`
	LastSyncedVersion  int             `gorm:"not null;default:0" json:"last_synced_version"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null" json:"updated_at"`
}

// IsSyncManaged reports whether the item was materialized from the master menu.
func (m *Menu) IsSyncManaged() bool {
	return m.SourceMasterItemID != nil
}
