package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/franchise-menu-sync/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// SyncStatus is how far a branch is behind its master menu.
type SyncStatus struct {
	BranchSyncID      uint                  `json:"branch_sync_id"`
	MasterMenuID      uint                  `json:"master_menu_id"`
	LocationID        uint                  `json:"location_id"`
	SyncedVersion     int                   `json:"synced_version"`
	CurrentVersion    int                   `json:"current_version"`
	PendingVersions   []int                 `json:"pending_versions"`
	HasPendingUpdates bool                  `json:"has_pending_updates"`
	SyncMode          models.SyncMode       `json:"sync_mode"`
	PendingChanges    models.PendingChanges `json:"pending_changes"`
}

// BranchSyncService manages branch registration and read-only sync status.
type BranchSyncService struct {
	db         *gorm.DB
	aggregator *DiffAggregator
}

func NewBranchSyncService(db *gorm.DB, aggregator *DiffAggregator) *BranchSyncService {
	return &BranchSyncService{db: db, aggregator: aggregator}
}

// RegisterBranch starts tracking a location against a master menu at version
// 0. If the master already has versions the branch starts out pending.
func (s *BranchSyncService) RegisterBranch(ctx context.Context, masterMenuID, locationID uint, mode models.SyncMode) (*models.BranchSync, error) {
	if mode == "" {
		mode = models.SyncModeManual
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: sync mode %q", ErrInvalidInput, mode)
	}

	var branch models.BranchSync
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu models.MasterMenu
		if err := tx.First(&menu, masterMenuID).Error; err != nil {
			return notFound(err, "master menu %d", masterMenuID)
		}
		var location models.Location
		if err := tx.First(&location, locationID).Error; err != nil {
			return notFound(err, "location %d", locationID)
		}

		var count int64
		if err := tx.Model(&models.BranchSync{}).
			Where("master_menu_id = ? AND location_id = ?", masterMenuID, locationID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: location %d already syncs master menu %d", ErrAlreadyExists, locationID, masterMenuID)
		}

		branch = models.BranchSync{
			MasterMenuID:      masterMenuID,
			LocationID:        locationID,
			SyncMode:          mode,
			HasPendingUpdates: menu.CurrentVersion > 0,
		}
		pending, err := pendingBetween(tx, &branch, &menu, 0)
		if err != nil {
			return err
		}
		branch.PendingChanges = datatypes.NewJSONType(pending)
		return tx.Create(&branch).Error
	})
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// GetBranchSync loads a branch sync together with its master menu.
func (s *BranchSyncService) GetBranchSync(ctx context.Context, branchSyncID uint) (*models.BranchSync, error) {
	var branch models.BranchSync
	if err := s.db.WithContext(ctx).Preload("MasterMenu").First(&branch, branchSyncID).Error; err != nil {
		return nil, notFound(err, "branch sync %d", branchSyncID)
	}
	return &branch, nil
}

// SetSyncMode changes the mode and refreshes the auto_sync hints of pending entries.
func (s *BranchSyncService) SetSyncMode(ctx context.Context, branchSyncID uint, mode models.SyncMode) (*models.BranchSync, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: sync mode %q", ErrInvalidInput, mode)
	}

	var branch models.BranchSync
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("MasterMenu").First(&branch, branchSyncID).Error; err != nil {
			return notFound(err, "branch sync %d", branchSyncID)
		}
		branch.SyncMode = mode
		pending, err := pendingBetween(tx, &branch, &branch.MasterMenu, branch.SyncedVersion)
		if err != nil {
			return err
		}
		branch.PendingChanges = datatypes.NewJSONType(pending)
		return tx.Model(&models.BranchSync{}).Where("id = ?", branch.ID).Updates(map[string]interface{}{
			"sync_mode":       mode,
			"pending_changes": branch.PendingChanges,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// GetSyncStatus reports the sync position of a location for one master menu.
func (s *BranchSyncService) GetSyncStatus(ctx context.Context, locationID, masterMenuID uint) (*SyncStatus, error) {
	var branch models.BranchSync
	if err := s.db.WithContext(ctx).
		Preload("MasterMenu").
		Where("location_id = ? AND master_menu_id = ?", locationID, masterMenuID).
		First(&branch).Error; err != nil {
		return nil, notFound(err, "location %d is not registered for master menu %d", locationID, masterMenuID)
	}

	status := &SyncStatus{
		BranchSyncID:      branch.ID,
		MasterMenuID:      branch.MasterMenuID,
		LocationID:        branch.LocationID,
		SyncedVersion:     branch.SyncedVersion,
		CurrentVersion:    branch.MasterMenu.CurrentVersion,
		PendingVersions:   []int{},
		HasPendingUpdates: branch.HasPendingUpdates,
		SyncMode:          branch.SyncMode,
		PendingChanges:    branch.PendingChanges.Data(),
	}
	if status.PendingChanges == nil {
		status.PendingChanges = models.PendingChanges{}
	}
	for v := branch.SyncedVersion + 1; v <= status.CurrentVersion; v++ {
		status.PendingVersions = append(status.PendingVersions, v)
	}
	return status, nil
}

// PreviewPendingChanges shows what a sync to the current version would apply,
// before lock and override checks.
func (s *BranchSyncService) PreviewPendingChanges(ctx context.Context, branchSyncID uint) (*AggregatedDiff, error) {
	branch, err := s.GetBranchSync(ctx, branchSyncID)
	if err != nil {
		return nil, err
	}
	return s.aggregator.EffectiveChanges(ctx, branch.MasterMenuID, branch.SyncedVersion, branch.MasterMenu.CurrentVersion)
}

// ListSyncLogs returns the newest run logs of a branch first.
func (s *BranchSyncService) ListSyncLogs(ctx context.Context, branchSyncID uint, limit int) ([]models.SyncRunLog, error) {
	if _, err := s.GetBranchSync(ctx, branchSyncID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	var logs []models.SyncRunLog
	if err := s.db.WithContext(ctx).
		Where("branch_sync_id = ?", branchSyncID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
