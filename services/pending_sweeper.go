package services

import (
	"context"
	"strconv"
	"time"

	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// PendingSweeper periodically retries automatic branches that are still
// behind on auto-eligible versions, e.g. after a failed auto-sync run.
type PendingSweeper struct {
	DB       *gorm.DB
	Applier  *SyncApplier
	StopChan chan struct{}
	Interval time.Duration
}

func NewPendingSweeper(db *gorm.DB, applier *SyncApplier) *PendingSweeper {
	return &PendingSweeper{
		DB:       db,
		Applier:  applier,
		StopChan: make(chan struct{}),
		Interval: time.Minute,
	}
}

func (ps *PendingSweeper) Start() {
	go func() {
		ticker := time.NewTicker(ps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ps.Sweep(context.Background())
			case <-ps.StopChan:
				return
			}
		}
	}()
}

func (ps *PendingSweeper) Stop() {
	close(ps.StopChan)
}

// Sweep applies each eligible branch up to its newest auto-sync pending
// version and returns how many branches were synced.
func (ps *PendingSweeper) Sweep(ctx context.Context) int {
	var branches []models.BranchSync
	if err := ps.DB.WithContext(ctx).
		Where("sync_mode = ? AND has_pending_updates = ?", models.SyncModeAutomatic, true).
		Order("id").
		Find(&branches).Error; err != nil {
		utils.LogError("services", "PendingSweeper.Sweep", "Error fetching pending branches", nil, err)
		return 0
	}

	synced := 0
	for _, branch := range branches {
		target := autoSyncTarget(branch)
		if target <= branch.SyncedVersion {
			continue
		}

		utils.InfoLogger.Printf("Retrying auto-sync: branch_sync=%d, from=%d, to=%d", branch.ID, branch.SyncedVersion, target)
		if _, err := ps.Applier.Apply(ctx, branch.ID, target, models.SyncTypeAuto, nil); err != nil {
			utils.LogError("services", "PendingSweeper.Sweep", "Error retrying auto-sync", branch.ID, err)
			continue
		}
		synced++
	}

	if synced > 0 {
		utils.InfoLogger.Printf("Successfully re-synced %d branches", synced)
	}
	return synced
}

// autoSyncTarget is the highest pending version flagged for auto-sync.
func autoSyncTarget(branch models.BranchSync) int {
	target := 0
	for key, change := range branch.PendingChanges.Data() {
		version, err := strconv.Atoi(key)
		if err != nil || !change.AutoSync {
			continue
		}
		if version > target {
			target = version
		}
	}
	return target
}
