package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/franchise-menu-sync/events"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultLockTimeout = 5 * time.Second

// VersionLedger owns the master menu version counter and the append-only
// history of versions.
type VersionLedger struct {
	db          *gorm.DB
	publisher   events.Publisher
	locker      AppendLocker
	lockTimeout time.Duration
}

func NewVersionLedger(db *gorm.DB, publisher events.Publisher) *VersionLedger {
	return &VersionLedger{
		db:          db,
		publisher:   publisher,
		lockTimeout: defaultLockTimeout,
	}
}

// WithLocker adds a cross-process lock taken before the row lock.
func (l *VersionLedger) WithLocker(locker AppendLocker) *VersionLedger {
	l.locker = locker
	return l
}

func (l *VersionLedger) WithLockTimeout(timeout time.Duration) *VersionLedger {
	l.lockTimeout = timeout
	return l
}

type appendRequest struct {
	MasterMenuID uint              `validate:"required"`
	ChangeType   models.ChangeType `validate:"required,oneof=item_added item_removed item_updated price_changed category_changed bulk_update"`
}

// AppendVersion records a new master menu version and returns its number.
// The counter read, snapshot, version row, counter advance and the pending
// marks on every branch happen in one transaction under the master menu row
// lock. Automatic propagation is triggered after commit through the publisher.
func (l *VersionLedger) AppendVersion(ctx context.Context, masterMenuID uint, changeType models.ChangeType, changes models.ChangeSet, actorID *uint) (int, error) {
	if err := validateStruct(appendRequest{MasterMenuID: masterMenuID, ChangeType: changeType}); err != nil {
		return 0, err
	}
	if changes.IsEmpty() {
		return 0, fmt.Errorf("%w: change set is empty", ErrInvalidChanges)
	}

	if l.locker != nil {
		release, err := l.locker.Obtain(ctx, masterMenuID)
		if err != nil {
			return 0, err
		}
		defer release()
	}

	var (
		menu       models.MasterMenu
		newVersion int
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restore, err := setLockTimeout(tx, l.lockTimeout)
		if err != nil {
			return err
		}
		defer restore()

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&menu, masterMenuID).Error; err != nil {
			return notFound(err, "master menu %d", masterMenuID)
		}
		newVersion = menu.CurrentVersion + 1

		snapshot, err := buildSnapshot(tx, &menu, newVersion)
		if err != nil {
			return err
		}
		for _, id := range changes.AddedItemIDs() {
			if _, ok := snapshot.Item(id); !ok {
				return fmt.Errorf("%w: added item %d is not in master menu %d", ErrInvalidChanges, id, menu.ID)
			}
		}

		version := models.MenuVersion{
			MasterMenuID:  menu.ID,
			VersionNumber: newVersion,
			ChangeType:    changeType,
			Changes:       datatypes.NewJSONType(changes),
			Snapshot:      datatypes.NewJSONType(snapshot),
			CreatedBy:     actorID,
			CreatedAt:     time.Now(),
		}
		// Upsert so that a retried append after a partial failure does not trip the unique key
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "master_menu_id"}, {Name: "version_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"change_type", "changes", "snapshot", "created_by", "created_at"}),
		}).Create(&version).Error; err != nil {
			return fmt.Errorf("failed to write version %d: %w", newVersion, err)
		}

		// Compare-and-increment keeps the sequence gapless on databases without row locks
		result := tx.Model(&models.MasterMenu{}).
			Where("id = ? AND current_version = ?", menu.ID, menu.CurrentVersion).
			Update("current_version", newVersion)
		if result.Error != nil {
			return fmt.Errorf("failed to advance version counter: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: master menu %d changed concurrently", ErrLockContention, menu.ID)
		}

		return markBranchesPending(tx, &menu, newVersion, changeType)
	})
	if err != nil {
		if isLockTimeout(err) {
			err = fmt.Errorf("%w: %v", ErrLockContention, err)
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidChanges) {
			utils.LogError("services", "VersionLedger.AppendVersion", "Error appending version", masterMenuID, err)
		}
		return 0, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"master_menu_id": menu.ID,
		"version":        newVersion,
		"change_type":    changeType,
	}).Info("master menu version created")

	if l.publisher != nil {
		evt := events.VersionCreated{
			MasterMenuID: menu.ID,
			Version:      newVersion,
			ChangeType:   changeType,
			CreatedBy:    actorID,
		}
		// The version is committed; propagation failures are per branch and only logged
		if err := l.publisher.Publish(ctx, evt); err != nil {
			utils.LogError("services", "VersionLedger.AppendVersion", "Error publishing version event", evt, err)
		}
	}

	return newVersion, nil
}

// GetVersion returns one ledger entry.
func (l *VersionLedger) GetVersion(ctx context.Context, masterMenuID uint, version int) (*models.MenuVersion, error) {
	var v models.MenuVersion
	if err := l.db.WithContext(ctx).
		Where("master_menu_id = ? AND version_number = ?", masterMenuID, version).
		First(&v).Error; err != nil {
		return nil, notFound(err, "version %d of master menu %d", version, masterMenuID)
	}
	return &v, nil
}

// ListVersions returns the ledger of a master menu, newest first, without snapshots.
func (l *VersionLedger) ListVersions(ctx context.Context, masterMenuID uint) ([]models.MenuVersion, error) {
	var menu models.MasterMenu
	if err := l.db.WithContext(ctx).First(&menu, masterMenuID).Error; err != nil {
		return nil, notFound(err, "master menu %d", masterMenuID)
	}

	var versions []models.MenuVersion
	if err := l.db.WithContext(ctx).
		Omit("snapshot").
		Where("master_menu_id = ?", masterMenuID).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func buildSnapshot(tx *gorm.DB, menu *models.MasterMenu, version int) (models.MenuSnapshot, error) {
	snapshot := models.MenuSnapshot{
		MasterMenuID: menu.ID,
		Version:      version,
		Name:         menu.Name,
		Categories:   []models.SnapshotCategory{},
		Items:        []models.SnapshotItem{},
	}

	var categories []models.MasterCategory
	if err := tx.Where("master_menu_id = ?", menu.ID).Order("id").Find(&categories).Error; err != nil {
		return snapshot, fmt.Errorf("failed to load master categories: %w", err)
	}
	categoryNames := make(map[uint]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
		snapshot.Categories = append(snapshot.Categories, models.SnapshotCategory{ID: c.ID, Name: c.Name})
	}

	var items []models.MasterMenuItem
	if err := tx.Where("master_menu_id = ?", menu.ID).Order("id").Find(&items).Error; err != nil {
		return snapshot, fmt.Errorf("failed to load master items: %w", err)
	}
	for _, it := range items {
		snapshot.Items = append(snapshot.Items, models.SnapshotItem{
			ID:           it.ID,
			CategoryID:   it.CategoryID,
			CategoryName: categoryNames[it.CategoryID],
			Name:         it.Name,
			Description:  it.Description,
			Price:        it.Price,
			Stock:        it.Stock,
			ImageUrl:     it.ImageUrl,
			IsAvailable:  it.IsAvailable,
		})
	}
	return snapshot, nil
}

// markBranchesPending flags every branch of the menu as behind the new version.
func markBranchesPending(tx *gorm.DB, menu *models.MasterMenu, version int, changeType models.ChangeType) error {
	var branches []models.BranchSync
	if err := tx.Where("master_menu_id = ? AND synced_version < ?", menu.ID, version).Find(&branches).Error; err != nil {
		return err
	}
	for i := range branches {
		b := &branches[i]
		pending := b.WithPending(version, models.PendingChange{
			Type:     changeType,
			AutoSync: b.SyncMode == models.SyncModeAutomatic && menu.AutoSyncs(changeType),
		})
		if err := tx.Model(b).Updates(map[string]interface{}{
			"has_pending_updates": true,
			"pending_changes":     datatypes.NewJSONType(pending),
		}).Error; err != nil {
			return fmt.Errorf("failed to mark branch %d pending: %w", b.ID, err)
		}
	}
	return nil
}
