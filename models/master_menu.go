package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SyncPolicyAll is the wildcard entry of MasterMenu.SyncPolicy.
const SyncPolicyAll = "all"

// MasterMenu is the franchise level canonical menu. CurrentVersion is only
// advanced by the version ledger while the row is locked.
type MasterMenu struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"type:varchar(255);not null" json:"name"`
	CurrentVersion int                         `gorm:"not null;default:0" json:"current_version"`
	SyncPolicy     datatypes.JSONSlice[string] `json:"sync_policy"`
	CreatedAt      time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updated_at"`
}

// AutoSyncs reports whether versions of the given change type qualify for
// automatic propagation.
func (m *MasterMenu) AutoSyncs(changeType ChangeType) bool {
	for _, p := range m.SyncPolicy {
		if p == SyncPolicyAll || p == string(changeType) {
			return true
		}
	}
	return false
}

// MasterCategory and MasterMenuItem are maintained by the catalog service.
// The sync engine only reads them to build version snapshots.
type MasterCategory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MasterMenuID uint      `gorm:"not null;index" json:"master_menu_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

type MasterMenuItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MasterMenuID uint            `gorm:"not null;index" json:"master_menu_id"`
	CategoryID   uint            `gorm:"not null" json:"category_id"`
	Category     MasterCategory  `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `json:"stock"`
	ImageUrl     *string         `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	IsAvailable  bool            `gorm:"not null" json:"is_available"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}
