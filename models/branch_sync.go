package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

type SyncMode string

const (
	SyncModeAutomatic SyncMode = "automatic"
	SyncModeManual    SyncMode = "manual"
	SyncModeDisabled  SyncMode = "disabled"
)

func (m SyncMode) Valid() bool {
	switch m {
	case SyncModeAutomatic, SyncModeManual, SyncModeDisabled:
		return true
	}
	return false
}

// PendingChange is the advisory, display only summary of one unsynced version.
type PendingChange struct {
	Type     ChangeType `json:"type"`
	AutoSync bool       `json:"auto_sync"`
}

// PendingChanges is keyed by the version number in decimal form.
type PendingChanges map[string]PendingChange

// BranchSync tracks how far one location has incorporated a master menu.
type BranchSync struct {
	ID                uint                               `gorm:"primaryKey" json:"id"`
	MasterMenuID      uint                               `gorm:"not null;uniqueIndex:idx_branch_sync_menu_location" json:"master_menu_id"`
	MasterMenu        MasterMenu                         `gorm:"foreignKey:MasterMenuID;references:ID" json:"-"`
	LocationID        uint                               `gorm:"not null;uniqueIndex:idx_branch_sync_menu_location" json:"location_id"`
	Location          Location                           `gorm:"foreignKey:LocationID;references:ID" json:"-"`
	SyncedVersion     int                                `gorm:"not null;default:0" json:"synced_version"`
	SyncMode          SyncMode                           `gorm:"type:varchar(20);not null;default:'manual'" json:"sync_mode"`
	HasPendingUpdates bool                               `gorm:"not null;default:false" json:"has_pending_updates"`
	PendingChanges    datatypes.JSONType[PendingChanges] `json:"pending_changes"`
	LastSyncedAt      *time.Time                         `json:"last_synced_at,omitempty"`
	CreatedAt         time.Time                          `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time                          `gorm:"not null" json:"updated_at"`
}

// WithPending returns the advisory map extended with one version entry.
func (b *BranchSync) WithPending(version int, change PendingChange) PendingChanges {
	out := PendingChanges{}
	for k, v := range b.PendingChanges.Data() {
		out[k] = v
	}
	out[strconv.Itoa(version)] = change
	return out
}

// PendingAfter returns the advisory map without entries at or below version.
func (b *BranchSync) PendingAfter(version int) PendingChanges {
	out := PendingChanges{}
	for k, v := range b.PendingChanges.Data() {
		n, err := strconv.Atoi(k)
		if err != nil || n <= version {
			continue
		}
		out[k] = v
	}
	return out
}
