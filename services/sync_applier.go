package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Field names used in conflict and applied change records.
const (
	fieldName         = "name"
	fieldDescription  = "description"
	fieldCategory     = "category"
	fieldImageURL     = "image_url"
	fieldAvailability = "is_available"
	fieldPrice        = "price"
)

const (
	actionAdded        = "added"
	actionRemoved      = "removed"
	actionUpdated      = "updated"
	actionPriceChanged = "price_changed"
)

// SyncResult is the outcome of one apply or rollback run.
type SyncResult struct {
	*models.SyncRunLog
	SyncedVersion     int  `json:"synced_version"`
	HasPendingUpdates bool `json:"has_pending_updates"`
}

// SyncApplier brings one branch's local menu to a target master version.
type SyncApplier struct {
	db          *gorm.DB
	aggregator  *DiffAggregator
	lockTimeout time.Duration
}

func NewSyncApplier(db *gorm.DB, aggregator *DiffAggregator) *SyncApplier {
	return &SyncApplier{db: db, aggregator: aggregator, lockTimeout: defaultLockTimeout}
}

func (a *SyncApplier) WithLockTimeout(timeout time.Duration) *SyncApplier {
	a.lockTimeout = timeout
	return a
}

// Apply folds the versions between the branch's synced version and target
// into one diff and applies it to the branch's items. Locked and overridden
// fields are skipped and reported as conflicts. Everything, including the
// run log, is written in one transaction.
func (a *SyncApplier) Apply(ctx context.Context, branchSyncID uint, targetVersion int, syncType models.SyncType, actorID *uint) (*SyncResult, error) {
	if syncType != models.SyncTypeManual && syncType != models.SyncTypeAuto {
		return nil, fmt.Errorf("%w: sync type %q", ErrInvalidInput, syncType)
	}

	var result *SyncResult
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restore, err := setLockTimeout(tx, a.lockTimeout)
		if err != nil {
			return err
		}
		defer restore()

		branch, menu, err := a.lockBranch(tx, branchSyncID)
		if err != nil {
			return err
		}
		if targetVersion < branch.SyncedVersion || targetVersion > menu.CurrentVersion {
			return fmt.Errorf("%w: target %d outside [%d, %d]", ErrInvalidRange, targetVersion, branch.SyncedVersion, menu.CurrentVersion)
		}

		diff, err := a.aggregator.effectiveChanges(tx, menu.ID, branch.SyncedVersion, targetVersion)
		if err != nil {
			return err
		}

		run, err := newSyncRun(tx, branch, menu, targetVersion, syncType, actorID)
		if err != nil {
			return err
		}

		for _, id := range diff.Added {
			if _, exists := run.local[id]; exists {
				continue
			}
			snapshot, err := run.snapshot(diff.AddedIn[id])
			if err != nil {
				return err
			}
			item, ok := snapshot.Item(id)
			if !ok {
				return fmt.Errorf("item %d is missing from the snapshot of version %d", id, diff.AddedIn[id])
			}
			if err := run.create(item); err != nil {
				return err
			}
		}

		removed := make(map[uint]bool, len(diff.Removed))
		for _, id := range diff.Removed {
			removed[id] = true
			if err := run.remove(id); err != nil {
				return err
			}
		}

		for _, id := range sortedKeys(diff.Updated) {
			if removed[id] {
				continue
			}
			if err := run.updateFields(id, diff.Updated[id]); err != nil {
				return err
			}
		}

		for _, id := range sortedKeys(diff.PriceChanges) {
			if removed[id] {
				continue
			}
			if err := run.updatePrice(id, diff.PriceChanges[id]); err != nil {
				return err
			}
		}

		hasPending := targetVersion < menu.CurrentVersion
		pending := models.PendingChanges{}
		if hasPending {
			pending = branch.PendingAfter(targetVersion)
		}
		result, err = run.finish(hasPending, pending)
		return err
	})
	if err != nil {
		return nil, a.failed("SyncApplier.Apply", branchSyncID, err)
	}

	logRun(result)
	return result, nil
}

// Rollback restores the branch's sync-managed items to the master snapshot
// stored at targetVersion, with the same lock and override rules as Apply.
// It is the only operation that lowers synced_version.
func (a *SyncApplier) Rollback(ctx context.Context, branchSyncID uint, targetVersion int, actorID *uint) (*SyncResult, error) {
	var result *SyncResult
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restore, err := setLockTimeout(tx, a.lockTimeout)
		if err != nil {
			return err
		}
		defer restore()

		branch, menu, err := a.lockBranch(tx, branchSyncID)
		if err != nil {
			return err
		}
		if targetVersion < 1 || targetVersion >= branch.SyncedVersion {
			return fmt.Errorf("%w: rollback target %d must be in [1, %d)", ErrInvalidRange, targetVersion, branch.SyncedVersion)
		}

		run, err := newSyncRun(tx, branch, menu, targetVersion, models.SyncTypeRollback, actorID)
		if err != nil {
			return err
		}
		snapshot, err := run.snapshot(targetVersion)
		if err != nil {
			return err
		}

		inSnapshot := make(map[uint]bool, len(snapshot.Items))
		for _, item := range snapshot.Items {
			inSnapshot[item.ID] = true
			local, ok := run.local[item.ID]
			if !ok {
				if err := run.create(item); err != nil {
					return err
				}
				continue
			}
			if err := run.updateFields(item.ID, fieldsToRestore(local, item)); err != nil {
				return err
			}
			if !local.Price.Equal(item.Price) {
				if err := run.updatePrice(item.ID, item.Price); err != nil {
					return err
				}
			}
		}

		for _, id := range sortedKeys(run.local) {
			if inSnapshot[id] {
				continue
			}
			if err := run.remove(id); err != nil {
				return err
			}
		}

		pending, err := pendingBetween(tx, branch, menu, targetVersion)
		if err != nil {
			return err
		}
		result, err = run.finish(targetVersion < menu.CurrentVersion, pending)
		return err
	})
	if err != nil {
		return nil, a.failed("SyncApplier.Rollback", branchSyncID, err)
	}

	logRun(result)
	return result, nil
}

func (a *SyncApplier) lockBranch(tx *gorm.DB, branchSyncID uint) (*models.BranchSync, *models.MasterMenu, error) {
	var branch models.BranchSync
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&branch, branchSyncID).Error; err != nil {
		return nil, nil, notFound(err, "branch sync %d", branchSyncID)
	}
	var menu models.MasterMenu
	if err := tx.First(&menu, branch.MasterMenuID).Error; err != nil {
		return nil, nil, notFound(err, "master menu %d", branch.MasterMenuID)
	}
	return &branch, &menu, nil
}

func (a *SyncApplier) failed(funcName string, branchSyncID uint, err error) error {
	if isLockTimeout(err) {
		err = fmt.Errorf("%w: %v", ErrLockContention, err)
	}
	if !errors.Is(err, ErrInvalidRange) && !errors.Is(err, ErrNotFound) {
		utils.LogError("services", funcName, "Error syncing branch", branchSyncID, err)
	}
	return err
}

func logRun(result *SyncResult) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"run_id":         result.RunID,
		"branch_sync_id": result.BranchSyncID,
		"from_version":   result.FromVersion,
		"to_version":     result.ToVersion,
		"sync_type":      result.SyncType,
		"status":         result.Status,
		"added":          result.ItemsAdded,
		"updated":        result.ItemsUpdated,
		"removed":        result.ItemsRemoved,
		"conflicts":      result.ConflictsSkipped,
	}).Info("branch sync run completed")
}

// pendingBetween rebuilds the advisory pending map for versions after target.
func pendingBetween(tx *gorm.DB, branch *models.BranchSync, menu *models.MasterMenu, target int) (models.PendingChanges, error) {
	var versions []models.MenuVersion
	if err := tx.Select("version_number", "change_type").
		Where("master_menu_id = ? AND version_number > ?", menu.ID, target).
		Order("version_number").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending versions: %w", err)
	}
	pending := models.PendingChanges{}
	for _, v := range versions {
		pending[strconv.Itoa(v.VersionNumber)] = models.PendingChange{
			Type:     v.ChangeType,
			AutoSync: branch.SyncMode == models.SyncModeAutomatic && menu.AutoSyncs(v.ChangeType),
		}
	}
	return pending, nil
}

// fieldsToRestore lists the non-price fields where the branch item differs
// from the snapshot.
func fieldsToRestore(local *models.Menu, item models.SnapshotItem) models.ItemFields {
	var fields models.ItemFields
	if local.Name != item.Name {
		fields.Name = &item.Name
	}
	if local.Description != item.Description {
		fields.Description = &item.Description
	}
	if local.Category.Name != item.CategoryName {
		fields.CategoryName = &item.CategoryName
	}
	if item.ImageUrl != nil && !sameString(local.ImageUrl, item.ImageUrl) {
		fields.ImageUrl = item.ImageUrl
	}
	if local.IsAvailable != item.IsAvailable {
		fields.IsAvailable = &item.IsAvailable
	}
	return fields
}

// syncRun holds the state of one transaction applying changes to a branch.
type syncRun struct {
	tx     *gorm.DB
	branch *models.BranchSync
	menu   *models.MasterMenu
	target int

	states     map[uint]LockState
	local      map[uint]*models.Menu
	categories map[string]models.MenuCategory
	snapshots  map[int]*models.MenuSnapshot
	created    map[uint]bool
	updated    map[uint]bool

	log *models.SyncRunLog
}

func newSyncRun(tx *gorm.DB, branch *models.BranchSync, menu *models.MasterMenu, target int, syncType models.SyncType, actorID *uint) (*syncRun, error) {
	states, err := lockStatesFor(tx, branch.ID)
	if err != nil {
		return nil, err
	}

	var items []models.Menu
	if err := tx.Preload("Category").
		Where("location_id = ? AND source_master_item_id IS NOT NULL", branch.LocationID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load branch items: %w", err)
	}
	local := make(map[uint]*models.Menu, len(items))
	for i := range items {
		id := *items[i].SourceMasterItemID
		if _, dup := local[id]; !dup {
			local[id] = &items[i]
		}
	}

	return &syncRun{
		tx:         tx,
		branch:     branch,
		menu:       menu,
		target:     target,
		states:     states,
		local:      local,
		categories: map[string]models.MenuCategory{},
		snapshots:  map[int]*models.MenuSnapshot{},
		created:    map[uint]bool{},
		updated:    map[uint]bool{},
		log: &models.SyncRunLog{
			RunID:           uuid.New(),
			BranchSyncID:    branch.ID,
			FromVersion:     branch.SyncedVersion,
			ToVersion:       target,
			SyncType:        syncType,
			ConflictDetails: datatypes.JSONSlice[models.SyncConflict]{},
			AppliedChanges:  datatypes.JSONSlice[models.AppliedChange]{},
			InitiatedBy:     actorID,
			StartedAt:       time.Now(),
		},
	}, nil
}

func (r *syncRun) snapshot(version int) (*models.MenuSnapshot, error) {
	if s, ok := r.snapshots[version]; ok {
		return s, nil
	}
	var v models.MenuVersion
	if err := r.tx.Where("master_menu_id = ? AND version_number = ?", r.menu.ID, version).First(&v).Error; err != nil {
		return nil, notFound(err, "version %d of master menu %d", version, r.menu.ID)
	}
	s := v.Snapshot.Data()
	r.snapshots[version] = &s
	return &s, nil
}

// resolveCategory finds the branch category matching a master category, first
// by source id, then by name, creating it when the branch has neither.
func (r *syncRun) resolveCategory(masterCategoryID uint, name string) (models.MenuCategory, error) {
	if c, ok := r.categories[name]; ok {
		return c, nil
	}

	var category models.MenuCategory
	err := gorm.ErrRecordNotFound
	if masterCategoryID != 0 {
		err = r.tx.Where("location_id = ? AND source_master_category_id = ?", r.branch.LocationID, masterCategoryID).
			First(&category).Error
		if err == nil && category.Name != name {
			err = r.followRename(&category, name)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.tx.Where("location_id = ? AND name = ?", r.branch.LocationID, name).First(&category).Error
		if err == nil && category.SourceMasterCategoryID == nil && masterCategoryID != 0 {
			err = r.adoptCategory(&category, masterCategoryID)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.MenuCategory{LocationID: r.branch.LocationID, Name: name}
		if masterCategoryID != 0 {
			category.SourceMasterCategoryID = &masterCategoryID
		}
		err = r.tx.Create(&category).Error
	}
	if err != nil {
		return category, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}

	r.categories[name] = category
	return category, nil
}

// followRename renames a tracked branch category after its master category.
// The row is shared by every item in it, so it is renamed in place only when
// sync owns all of them. Otherwise the row keeps its name, stops tracking the
// master category and gorm.ErrRecordNotFound sends the caller on to resolve
// the new name separately.
func (r *syncRun) followRename(category *models.MenuCategory, name string) error {
	var taken int64
	if err := r.tx.Model(&models.MenuCategory{}).
		Where("location_id = ? AND name = ?", r.branch.LocationID, name).
		Count(&taken).Error; err != nil {
		return err
	}
	owned, err := r.ownsCategory(category.ID)
	if err != nil {
		return err
	}
	if taken == 0 && owned {
		category.Name = name
		return r.tx.Model(category).Update("name", name).Error
	}

	if err := r.tx.Model(category).Update("source_master_category_id", nil).Error; err != nil {
		return err
	}
	category.SourceMasterCategoryID = nil
	return gorm.ErrRecordNotFound
}

// adoptCategory starts tracking a master category on a branch category found
// by name, unless the branch has items of its own in it or another category
// already tracks that master category.
func (r *syncRun) adoptCategory(category *models.MenuCategory, masterCategoryID uint) error {
	var tracked int64
	if err := r.tx.Model(&models.MenuCategory{}).
		Where("location_id = ? AND source_master_category_id = ?", r.branch.LocationID, masterCategoryID).
		Count(&tracked).Error; err != nil {
		return err
	}
	if tracked > 0 {
		return nil
	}
	owned, err := r.ownsCategory(category.ID)
	if err != nil || !owned {
		return err
	}
	category.SourceMasterCategoryID = &masterCategoryID
	return r.tx.Model(category).Update("source_master_category_id", masterCategoryID).Error
}

// ownsCategory reports whether every item in a branch category is sync-managed
// and not fully locked.
func (r *syncRun) ownsCategory(categoryID uint) (bool, error) {
	var items []models.Menu
	if err := r.tx.Select("id", "source_master_item_id").
		Where("category_id = ?", categoryID).
		Find(&items).Error; err != nil {
		return false, err
	}
	for _, item := range items {
		if item.SourceMasterItemID == nil || r.states[*item.SourceMasterItemID].FullyLocked {
			return false, nil
		}
	}
	return true, nil
}

// masterCategoryID looks a category name up in the target snapshot.
func (r *syncRun) masterCategoryID(name string) (uint, error) {
	s, err := r.snapshot(r.target)
	if err != nil {
		return 0, err
	}
	for _, c := range s.Categories {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return 0, nil
}

func (r *syncRun) create(item models.SnapshotItem) error {
	category, err := r.resolveCategory(item.CategoryID, item.CategoryName)
	if err != nil {
		return err
	}

	// Nilai override yang sudah ada dipakai sebagai nilai awal
	state := r.states[item.ID]
	price := item.Price
	if state.PriceOverride != nil {
		price = *state.PriceOverride
	}
	available := item.IsAvailable
	if state.AvailabilityOverride != nil {
		available = *state.AvailabilityOverride
	}

	masterItemID := item.ID
	menu := &models.Menu{
		LocationID:         r.branch.LocationID,
		CategoryID:         category.ID,
		Name:               item.Name,
		Price:              price,
		Stock:              item.Stock,
		Description:        item.Description,
		ImageUrl:           item.ImageUrl,
		IsAvailable:        available,
		SourceMasterItemID: &masterItemID,
		LastSyncedVersion:  r.target,
	}
	if err := r.tx.Omit("Category").Create(menu).Error; err != nil {
		return fmt.Errorf("failed to create item for master item %d: %w", item.ID, err)
	}
	menu.Category = category

	r.local[item.ID] = menu
	r.created[item.ID] = true
	r.log.ItemsAdded++
	r.applied(models.AppliedChange{Action: actionAdded, MasterItemID: item.ID, MenuID: menu.ID})
	return nil
}

func (r *syncRun) remove(masterItemID uint) error {
	local, ok := r.local[masterItemID]
	if !ok {
		return nil
	}
	if r.states[masterItemID].FullyLocked {
		r.conflict(models.SyncConflict{
			Type:         models.ConflictRemoveBlocked,
			MasterItemID: masterItemID,
			MenuID:       local.ID,
			ItemName:     local.Name,
			Message:      fmt.Sprintf("%s is fully locked by the branch and was not removed", local.Name),
		})
		return nil
	}

	if err := r.tx.Delete(&models.Menu{}, local.ID).Error; err != nil {
		return fmt.Errorf("failed to remove item %d: %w", local.ID, err)
	}
	delete(r.local, masterItemID)
	r.log.ItemsRemoved++
	r.applied(models.AppliedChange{Action: actionRemoved, MasterItemID: masterItemID, MenuID: local.ID})
	return nil
}

// updateFields applies the non-price fields one by one. Only fully_locked
// blocks the whole item; availability_locked vetoes only availability.
func (r *syncRun) updateFields(masterItemID uint, fields models.ItemFields) error {
	local, ok := r.local[masterItemID]
	if !ok {
		return nil
	}
	changed := changedFields(local, fields)
	if len(changed) == 0 {
		return nil
	}

	state := r.states[masterItemID]
	if state.FullyLocked {
		r.conflict(models.SyncConflict{
			Type:         models.ConflictUpdateBlocked,
			MasterItemID: masterItemID,
			MenuID:       local.ID,
			ItemName:     local.Name,
			Fields:       changed,
			Message:      fmt.Sprintf("%s is fully locked by the branch; %s not updated", local.Name, strings.Join(changed, ", ")),
		})
		return nil
	}

	updates := map[string]interface{}{}
	var applied []string
	for _, field := range changed {
		switch field {
		case fieldName:
			local.Name = *fields.Name
			updates["name"] = local.Name
		case fieldDescription:
			local.Description = *fields.Description
			updates["description"] = local.Description
		case fieldImageURL:
			local.ImageUrl = fields.ImageUrl
			updates["image_url"] = *fields.ImageUrl
		case fieldCategory:
			masterCategoryID, err := r.masterCategoryID(*fields.CategoryName)
			if err != nil {
				return err
			}
			category, err := r.resolveCategory(masterCategoryID, *fields.CategoryName)
			if err != nil {
				return err
			}
			local.CategoryID = category.ID
			local.Category = category
			updates["category_id"] = category.ID
		case fieldAvailability:
			if state.AvailabilityVetoed() {
				r.conflict(models.SyncConflict{
					Type:         models.ConflictUpdateBlocked,
					MasterItemID: masterItemID,
					MenuID:       local.ID,
					ItemName:     local.Name,
					Fields:       []string{fieldAvailability},
					Message:      fmt.Sprintf("availability of %s is locked by the branch", local.Name),
				})
				continue
			}
			local.IsAvailable = *fields.IsAvailable
			updates["is_available"] = local.IsAvailable
		}
		applied = append(applied, field)
	}
	if len(applied) == 0 {
		return nil
	}

	local.LastSyncedVersion = r.target
	updates["last_synced_version"] = r.target
	if err := r.tx.Model(&models.Menu{}).Where("id = ?", local.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update item %d: %w", local.ID, err)
	}
	r.markUpdated(masterItemID)
	r.applied(models.AppliedChange{Action: actionUpdated, MasterItemID: masterItemID, MenuID: local.ID, Fields: applied})
	return nil
}

func (r *syncRun) updatePrice(masterItemID uint, price decimal.Decimal) error {
	local, ok := r.local[masterItemID]
	if !ok {
		return nil
	}

	state := r.states[masterItemID]
	masterPrice := price
	branchPrice := local.Price
	switch {
	case state.PriceVetoed():
		r.conflict(models.SyncConflict{
			Type:         models.ConflictPriceLocked,
			MasterItemID: masterItemID,
			MenuID:       local.ID,
			ItemName:     local.Name,
			MasterPrice:  &masterPrice,
			BranchPrice:  &branchPrice,
			Fields:       []string{fieldPrice},
			Message: fmt.Sprintf("price of %s is locked at %s; master price %s not applied",
				local.Name, utils.FormatCurrencyIDR(branchPrice), utils.FormatCurrencyIDR(masterPrice)),
		})
		return nil
	case state.PriceOverride != nil:
		r.conflict(models.SyncConflict{
			Type:         models.ConflictPriceOverrideExists,
			MasterItemID: masterItemID,
			MenuID:       local.ID,
			ItemName:     local.Name,
			MasterPrice:  &masterPrice,
			BranchPrice:  &branchPrice,
			Fields:       []string{fieldPrice},
			Message: fmt.Sprintf("%s has a branch price override of %s; master price %s not applied",
				local.Name, utils.FormatCurrencyIDR(*state.PriceOverride), utils.FormatCurrencyIDR(masterPrice)),
		})
		return nil
	}
	if local.Price.Equal(price) {
		return nil
	}

	local.Price = price
	local.LastSyncedVersion = r.target
	if err := r.tx.Model(&models.Menu{}).Where("id = ?", local.ID).Updates(map[string]interface{}{
		"price":               price,
		"last_synced_version": r.target,
	}).Error; err != nil {
		return fmt.Errorf("failed to update price of item %d: %w", local.ID, err)
	}
	r.markUpdated(masterItemID)
	r.applied(models.AppliedChange{Action: actionPriceChanged, MasterItemID: masterItemID, MenuID: local.ID, Fields: []string{fieldPrice}})
	return nil
}

// markUpdated counts an item as updated unless this run created it.
func (r *syncRun) markUpdated(masterItemID uint) {
	if !r.created[masterItemID] {
		r.updated[masterItemID] = true
	}
}

func (r *syncRun) conflict(c models.SyncConflict) {
	r.log.ConflictDetails = append(r.log.ConflictDetails, c)
}

func (r *syncRun) applied(c models.AppliedChange) {
	r.log.AppliedChanges = append(r.log.AppliedChanges, c)
}

// finish writes the run log and moves the branch to the target version.
func (r *syncRun) finish(hasPending bool, pending models.PendingChanges) (*SyncResult, error) {
	now := time.Now()
	r.log.ItemsUpdated = len(r.updated)
	r.log.ConflictsSkipped = len(r.log.ConflictDetails)
	r.log.Status = models.SyncStatusSuccess
	if r.log.ConflictsSkipped > 0 {
		r.log.Status = models.SyncStatusPartial
	}
	r.log.CompletedAt = now

	if err := r.tx.Create(r.log).Error; err != nil {
		return nil, fmt.Errorf("failed to write sync log: %w", err)
	}

	if err := r.tx.Model(&models.BranchSync{}).Where("id = ?", r.branch.ID).Updates(map[string]interface{}{
		"synced_version":      r.target,
		"has_pending_updates": hasPending,
		"pending_changes":     datatypes.NewJSONType(pending),
		"last_synced_at":      now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update branch sync %d: %w", r.branch.ID, err)
	}

	return &SyncResult{
		SyncRunLog:        r.log,
		SyncedVersion:     r.target,
		HasPendingUpdates: hasPending,
	}, nil
}

// changedFields returns, in a fixed order, the fields whose new value differs
// from the branch item.
func changedFields(local *models.Menu, fields models.ItemFields) []string {
	var changed []string
	if fields.Name != nil && *fields.Name != local.Name {
		changed = append(changed, fieldName)
	}
	if fields.Description != nil && *fields.Description != local.Description {
		changed = append(changed, fieldDescription)
	}
	if fields.CategoryName != nil && *fields.CategoryName != local.Category.Name {
		changed = append(changed, fieldCategory)
	}
	if fields.ImageUrl != nil && !sameString(fields.ImageUrl, local.ImageUrl) {
		changed = append(changed, fieldImageURL)
	}
	if fields.IsAvailable != nil && *fields.IsAvailable != local.IsAvailable {
		changed = append(changed, fieldAvailability)
	}
	return changed
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sortedKeys[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}
