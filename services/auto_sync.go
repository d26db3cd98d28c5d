package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/franchise-menu-sync/events"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// AutoSyncTrigger applies a new master version to every branch in automatic
// mode when the menu's sync policy covers the change type. Other branches
// were already marked pending by the ledger.
type AutoSyncTrigger struct {
	db      *gorm.DB
	applier *SyncApplier
}

func NewAutoSyncTrigger(db *gorm.DB, applier *SyncApplier) *AutoSyncTrigger {
	return &AutoSyncTrigger{db: db, applier: applier}
}

// Subscribe registers the trigger on a bus.
func (t *AutoSyncTrigger) Subscribe(bus interface{ Subscribe(events.Handler) }) {
	bus.Subscribe(t.Handle)
}

// Handle runs one apply per eligible branch, one after another. A failing
// branch is logged and left pending; it never stops the remaining branches.
func (t *AutoSyncTrigger) Handle(ctx context.Context, evt events.VersionCreated) error {
	var menu models.MasterMenu
	if err := t.db.WithContext(ctx).First(&menu, evt.MasterMenuID).Error; err != nil {
		return notFound(err, "master menu %d", evt.MasterMenuID)
	}
	if !menu.AutoSyncs(evt.ChangeType) {
		return nil
	}

	var branches []models.BranchSync
	if err := t.db.WithContext(ctx).
		Where("master_menu_id = ? AND sync_mode = ? AND synced_version < ?", menu.ID, models.SyncModeAutomatic, evt.Version).
		Order("id").
		Find(&branches).Error; err != nil {
		return err
	}

	synced := 0
	for _, branch := range branches {
		if _, err := t.applier.Apply(ctx, branch.ID, evt.Version, models.SyncTypeAuto, nil); err != nil {
			utils.LogError("services", "AutoSyncTrigger.Handle", "Error auto-syncing branch", branch.ID, err)
			continue
		}
		synced++
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"master_menu_id": menu.ID,
		"version":        evt.Version,
		"eligible":       len(branches),
		"synced":         synced,
	}).Info("auto-sync finished")
	return nil
}
