package models

import (
	"time"

	"gorm.io/datatypes"
)

// MenuVersion is one immutable entry of a master menu's version ledger.
type MenuVersion struct {
	ID            uint                             `gorm:"primaryKey" json:"id"`
	MasterMenuID  uint                             `gorm:"not null;uniqueIndex:idx_menu_version" json:"master_menu_id"`
	VersionNumber int                              `gorm:"not null;uniqueIndex:idx_menu_version" json:"version_number"`
	ChangeType    ChangeType                       `gorm:"type:varchar(32);not null" json:"change_type"`
	Changes       datatypes.JSONType[ChangeSet]    `json:"changes"`
	Snapshot      datatypes.JSONType[MenuSnapshot] `json:"snapshot"`
	CreatedBy     *uint                            `json:"created_by,omitempty"`
	CreatedAt     time.Time                        `gorm:"not null" json:"created_at"`
}
