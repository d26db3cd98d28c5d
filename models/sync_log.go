package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type SyncType string

const (
	SyncTypeManual   SyncType = "manual"
	SyncTypeAuto     SyncType = "auto"
	SyncTypeRollback SyncType = "rollback"
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
)

type ConflictType string

const (
	ConflictRemoveBlocked       ConflictType = "remove_blocked"
	ConflictUpdateBlocked       ConflictType = "update_blocked"
	ConflictPriceLocked         ConflictType = "price_locked"
	ConflictPriceOverrideExists ConflictType = "price_override_exists"
)

// SyncConflict is one change that sync refused to apply to a branch item.
type SyncConflict struct {
	Type         ConflictType     `json:"type"`
	MasterItemID uint             `json:"master_item_id"`
	MenuID       uint             `json:"menu_id,omitempty"`
	ItemName     string           `json:"item_name,omitempty"`
	MasterPrice  *decimal.Decimal `json:"master_price,omitempty"`
	BranchPrice  *decimal.Decimal `json:"branch_price,omitempty"`
	Fields       []string         `json:"fields,omitempty"`
	Message      string           `json:"message"`
}

// AppliedChange is one change that was written to a branch item.
type AppliedChange struct {
	Action       string   `json:"action"`
	MasterItemID uint     `json:"master_item_id"`
	MenuID       uint     `json:"menu_id,omitempty"`
	Fields       []string `json:"fields,omitempty"`
}

// SyncRunLog is the append-only audit row of one apply attempt.
type SyncRunLog struct {
	ID               uint                               `gorm:"primaryKey" json:"id"`
	RunID            uuid.UUID                          `gorm:"type:varchar(36);uniqueIndex" json:"run_id"`
	BranchSyncID     uint                               `gorm:"not null;index" json:"branch_sync_id"`
	FromVersion      int                                `gorm:"not null" json:"from_version"`
	ToVersion        int                                `gorm:"not null" json:"to_version"`
	SyncType         SyncType                           `gorm:"type:varchar(20);not null" json:"sync_type"`
	Status           SyncStatus                         `gorm:"type:varchar(20);not null" json:"status"`
	ItemsAdded       int                                `gorm:"not null;default:0" json:"items_added"`
	ItemsUpdated     int                                `gorm:"not null;default:0" json:"items_updated"`
	ItemsRemoved     int                                `gorm:"not null;default:0" json:"items_removed"`
	ConflictsSkipped int                                `gorm:"not null;default:0" json:"conflicts_skipped"`
	ConflictDetails  datatypes.JSONSlice[SyncConflict]  `json:"conflict_details"`
	AppliedChanges   datatypes.JSONSlice[AppliedChange] `json:"applied_changes"`
	InitiatedBy      *uint                              `json:"initiated_by,omitempty"`
	StartedAt        time.Time                          `gorm:"not null" json:"started_at"`
	CompletedAt      time.Time                          `gorm:"not null" json:"completed_at"`
}
