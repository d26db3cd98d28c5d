package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/franchise-menu-sync/database"
	"github.com/yeremiapane/franchise-menu-sync/events"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB -> sqlite in-memory dengan satu koneksi, sudah dimigrasi
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db         *gorm.DB
	hub        *events.Hub
	ledger     *VersionLedger
	aggregator *DiffAggregator
	applier    *SyncApplier
	overrides  *OverrideStore
	branches   *BranchSyncService
	menu       models.MasterMenu
	categories map[string]models.MasterCategory
}

func newFixture(t *testing.T, policy ...string) *fixture {
	t.Helper()

	db := setupTestDB(t)
	hub := events.NewHub()
	aggregator := NewDiffAggregator(db)
	f := &fixture{
		db:         db,
		hub:        hub,
		ledger:     NewVersionLedger(db, hub),
		aggregator: aggregator,
		applier:    NewSyncApplier(db, aggregator),
		overrides:  NewOverrideStore(db),
		branches:   NewBranchSyncService(db, aggregator),
		categories: map[string]models.MasterCategory{},
	}

	menu, err := NewMasterMenuService(db).CreateMasterMenu(context.Background(), "Menu Nusantara", policy)
	require.NoError(t, err)
	f.menu = *menu
	return f
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) category(t *testing.T, name string) models.MasterCategory {
	t.Helper()
	if c, ok := f.categories[name]; ok {
		return c
	}
	c := models.MasterCategory{MasterMenuID: f.menu.ID, Name: name}
	require.NoError(t, f.db.Create(&c).Error)
	f.categories[name] = c
	return c
}

// addItem creates a master catalog item without appending a version.
func (f *fixture) addItem(t *testing.T, categoryName, name, amount string) models.MasterMenuItem {
	t.Helper()
	item := models.MasterMenuItem{
		MasterMenuID: f.menu.ID,
		CategoryID:   f.category(t, categoryName).ID,
		Name:         name,
		Description:  name + " khas cabang",
		Price:        price(amount),
		Stock:        10,
		IsAvailable:  true,
	}
	require.NoError(t, f.db.Omit("Category").Create(&item).Error)
	return item
}

func (f *fixture) updateItem(t *testing.T, id uint, updates map[string]interface{}) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.MasterMenuItem{}).Where("id = ?", id).Updates(updates).Error)
}

func (f *fixture) deleteItem(t *testing.T, id uint) {
	t.Helper()
	require.NoError(t, f.db.Delete(&models.MasterMenuItem{}, id).Error)
}

func (f *fixture) appendVersion(t *testing.T, changeType models.ChangeType, changes ...models.Change) int {
	t.Helper()
	v, err := f.ledger.AppendVersion(context.Background(), f.menu.ID, changeType, models.ChangeSet(changes), nil)
	require.NoError(t, err)
	return v
}

func (f *fixture) location(t *testing.T, name string) models.Location {
	t.Helper()
	loc := models.Location{Name: name, Address: "Jl. " + name}
	require.NoError(t, f.db.Create(&loc).Error)
	return loc
}

func (f *fixture) registerBranch(t *testing.T, name string, mode models.SyncMode) models.BranchSync {
	t.Helper()
	loc := f.location(t, name)
	branch, err := f.branches.RegisterBranch(context.Background(), f.menu.ID, loc.ID, mode)
	require.NoError(t, err)
	return *branch
}

func (f *fixture) reloadBranch(t *testing.T, id uint) models.BranchSync {
	t.Helper()
	var branch models.BranchSync
	require.NoError(t, f.db.First(&branch, id).Error)
	return branch
}

// localItem returns the branch copy of a master item.
func (f *fixture) localItem(t *testing.T, branch models.BranchSync, masterItemID uint) (models.Menu, bool) {
	t.Helper()
	var items []models.Menu
	require.NoError(t, f.db.Preload("Category").
		Where("location_id = ? AND source_master_item_id = ?", branch.LocationID, masterItemID).
		Find(&items).Error)
	if len(items) == 0 {
		return models.Menu{}, false
	}
	return items[0], true
}

// seedLocalCopy places a branch copy of a master item as an earlier import would.
func (f *fixture) seedLocalCopy(t *testing.T, branch models.BranchSync, item models.MasterMenuItem) models.Menu {
	t.Helper()
	category := models.MenuCategory{LocationID: branch.LocationID, Name: f.categoryName(item.CategoryID)}
	require.NoError(t, f.db.Where(category).FirstOrCreate(&category).Error)

	masterID := item.ID
	menu := models.Menu{
		LocationID:         branch.LocationID,
		CategoryID:         category.ID,
		Name:               item.Name,
		Price:              item.Price,
		Description:        item.Description,
		IsAvailable:        item.IsAvailable,
		SourceMasterItemID: &masterID,
	}
	require.NoError(t, f.db.Omit("Category").Create(&menu).Error)
	return menu
}

func (f *fixture) categoryName(id uint) string {
	for name, c := range f.categories {
		if c.ID == id {
			return name
		}
	}
	return ""
}

func (f *fixture) runLogs(t *testing.T, branchSyncID uint) []models.SyncRunLog {
	t.Helper()
	var logs []models.SyncRunLog
	require.NoError(t, f.db.Where("branch_sync_id = ?", branchSyncID).Order("id").Find(&logs).Error)
	return logs
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func decPtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}
