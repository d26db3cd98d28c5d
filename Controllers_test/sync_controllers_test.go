package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/franchise-menu-sync/controllers"
	"github.com/yeremiapane/franchise-menu-sync/events"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

func setupSyncRouter(router *gin.Engine, db *gorm.DB) *gin.Engine {
	hub := events.NewHub()
	aggregator := services.NewDiffAggregator(db)
	applier := services.NewSyncApplier(db, aggregator)
	ledger := services.NewVersionLedger(db, hub)
	branches := services.NewBranchSyncService(db, aggregator)
	services.NewAutoSyncTrigger(db, applier).Subscribe(hub)

	masterMenuCtrl := controllers.NewMasterMenuController(services.NewMasterMenuService(db), ledger, branches)
	catalogCtrl := controllers.NewCatalogController(db)
	syncCtrl := controllers.NewSyncController(branches, applier)
	overrideCtrl := controllers.NewOverrideController(services.NewOverrideStore(db), branches)

	router.POST("/master-menus", masterMenuCtrl.CreateMasterMenu)
	router.PATCH("/master-menus/:menu_id/sync-policy", masterMenuCtrl.UpdateSyncPolicy)
	router.POST("/master-menus/:menu_id/versions", masterMenuCtrl.CreateVersion)
	router.GET("/master-menus/:menu_id/versions", masterMenuCtrl.ListVersions)
	router.GET("/master-menus/:menu_id/versions/:version", masterMenuCtrl.GetVersion)
	router.POST("/master-menus/:menu_id/branches", masterMenuCtrl.RegisterBranch)
	router.POST("/master-menus/:menu_id/categories", catalogCtrl.CreateMasterCategory)
	router.GET("/master-menus/:menu_id/categories", catalogCtrl.GetMasterCategories)
	router.POST("/master-menus/:menu_id/items", catalogCtrl.CreateMasterItem)
	router.GET("/master-menus/:menu_id/items", catalogCtrl.GetMasterItems)
	router.PATCH("/master-menus/:menu_id/items/:item_id", catalogCtrl.UpdateMasterItem)
	router.DELETE("/master-menus/:menu_id/items/:item_id", catalogCtrl.DeleteMasterItem)

	router.GET("/locations/:location_id/sync-status", syncCtrl.GetSyncStatus)
	router.PATCH("/branch-syncs/:sync_id/mode", syncCtrl.SetSyncMode)
	router.GET("/branch-syncs/:sync_id/preview", syncCtrl.PreviewPendingChanges)
	router.POST("/branch-syncs/:sync_id/sync", syncCtrl.SyncBranch)
	router.POST("/branch-syncs/:sync_id/rollback", syncCtrl.Rollback)
	router.GET("/branch-syncs/:sync_id/logs", syncCtrl.ListSyncLogs)
	router.GET("/branch-syncs/:sync_id/overrides", overrideCtrl.ListOverrides)
	router.PUT("/branch-syncs/:sync_id/overrides/:master_item_id", overrideCtrl.SetOverride)
	router.DELETE("/branch-syncs/:sync_id/overrides/:master_item_id", overrideCtrl.ClearOverride)
	return router
}

type catalog struct {
	menu   models.MasterMenu
	branch models.BranchSync
	item   models.MasterMenuItem
}

// seedCatalog creates a master menu with one item published as version 1 and
// one registered manual branch.
func seedCatalog(t *testing.T, router *gin.Engine, db *gorm.DB) catalog {
	t.Helper()
	var cat catalog

	w, resp := doRequest(t, router, http.MethodPost, "/master-menus", map[string]interface{}{"name": "Menu Pusat"})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	decodeData(t, resp, &cat.menu)

	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/categories", cat.menu.ID), map[string]string{"name": "Makanan"})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	var category models.MasterCategory
	decodeData(t, resp, &category)

	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/items", cat.menu.ID), map[string]interface{}{
		"category_id": category.ID,
		"name":        "Nasi Goreng",
		"price":       "25000",
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	decodeData(t, resp, &cat.item)

	location := models.Location{Name: "Cabang Bandung"}
	require.NoError(t, db.Create(&location).Error)
	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/branches", cat.menu.ID), map[string]interface{}{
		"location_id": location.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	decodeData(t, resp, &cat.branch)

	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/versions", cat.menu.ID), map[string]interface{}{
		"change_type": "item_added",
		"changes":     []map[string]interface{}{{"kind": "items_added", "item_ids": []uint{cat.item.ID}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	return cat
}

func TestCreateVersion_Validation(t *testing.T) {
	db := setupTestDB(t)
	router := setupSyncRouter(asAdmin(), db)
	cat := seedCatalog(t, router, db)
	url := fmt.Sprintf("/master-menus/%d/versions", cat.menu.ID)

	tests := []struct {
		name    string
		payload map[string]interface{}
		want    int
	}{
		{"unknown change kind", map[string]interface{}{
			"change_type": "item_updated",
			"changes":     []map[string]interface{}{{"kind": "renamed"}},
		}, http.StatusBadRequest},
		{"unknown change type", map[string]interface{}{
			"change_type": "menu_renamed",
			"changes":     []map[string]interface{}{{"kind": "items_removed", "item_ids": []uint{cat.item.ID}}},
		}, http.StatusBadRequest},
		{"empty changes", map[string]interface{}{
			"change_type": "item_updated",
			"changes":     []map[string]interface{}{{"kind": "field_updates"}},
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doRequest(t, router, http.MethodPost, url, tt.payload)
			assert.Equal(t, tt.want, w.Code, resp.Message)
		})
	}

	w, _ := doRequest(t, router, http.MethodPost, "/master-menus/999/versions", map[string]interface{}{
		"change_type": "item_removed",
		"changes":     []map[string]interface{}{{"kind": "items_removed", "item_ids": []uint{1}}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVersionsEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupSyncRouter(asAdmin(), db)
	cat := seedCatalog(t, router, db)

	w, resp := doRequest(t, router, http.MethodGet, fmt.Sprintf("/master-menus/%d/versions", cat.menu.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []models.MenuVersion
	decodeData(t, resp, &versions)
	require.Len(t, versions, 1)
	assert.Equal(t, models.ChangeItemAdded, versions[0].ChangeType)

	w, resp = doRequest(t, router, http.MethodGet, fmt.Sprintf("/master-menus/%d/versions/1", cat.menu.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var version models.MenuVersion
	decodeData(t, resp, &version)
	assert.Len(t, version.Snapshot.Data().Items, 1)

	w, _ = doRequest(t, router, http.MethodGet, fmt.Sprintf("/master-menus/%d/versions/2", cat.menu.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncFlow(t *testing.T) {
	db := setupTestDB(t)
	router := setupSyncRouter(asAdmin(), db)
	cat := seedCatalog(t, router, db)
	branchURL := fmt.Sprintf("/branch-syncs/%d", cat.branch.ID)

	w, resp := doRequest(t, router, http.MethodGet, fmt.Sprintf("/locations/%d/sync-status?master_menu_id=%d", cat.branch.LocationID, cat.menu.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	var status services.SyncStatus
	decodeData(t, resp, &status)
	assert.Equal(t, []int{1}, status.PendingVersions)

	w, _ = doRequest(t, router, http.MethodGet, fmt.Sprintf("/locations/%d/sync-status", cat.branch.LocationID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doRequest(t, router, http.MethodGet, branchURL+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var diff services.AggregatedDiff
	decodeData(t, resp, &diff)
	assert.Equal(t, []uint{cat.item.ID}, diff.Added)

	// Body kosong berarti sync sampai versi terbaru
	w, resp = doRequest(t, router, http.MethodPost, branchURL+"/sync", nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	assert.Equal(t, "Branch synced", resp.Message)
	var result services.SyncResult
	decodeData(t, resp, &result)
	assert.Equal(t, 1, result.SyncedVersion)
	assert.Equal(t, 1, result.ItemsAdded)
	require.NotNil(t, result.InitiatedBy)
	assert.Equal(t, uint(1), *result.InitiatedBy)

	// Branch locks the price, master raises it
	w, resp = doRequest(t, router, http.MethodPut, fmt.Sprintf("%s/overrides/%d", branchURL, cat.item.ID), map[string]interface{}{"price_locked": true})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	w, _ = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/master-menus/%d/items/%d", cat.menu.ID, cat.item.ID), map[string]interface{}{"price": "27000"})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/versions", cat.menu.ID), map[string]interface{}{
		"change_type": "price_changed",
		"changes":     []map[string]interface{}{{"kind": "price_updates", "prices": map[string]string{fmt.Sprint(cat.item.ID): "27000"}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)

	w, resp = doRequest(t, router, http.MethodPost, branchURL+"/sync", map[string]interface{}{"target_version": 2})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	assert.Equal(t, "Branch synced with conflicts", resp.Message)
	decodeData(t, resp, &result)
	assert.Equal(t, models.SyncStatusPartial, result.Status)
	require.Len(t, result.ConflictDetails, 1)
	assert.Equal(t, models.ConflictPriceLocked, result.ConflictDetails[0].Type)

	w, resp = doRequest(t, router, http.MethodGet, branchURL+"/logs?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.SyncRunLog
	decodeData(t, resp, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, 2, logs[0].ToVersion)

	w, resp = doRequest(t, router, http.MethodGet, branchURL+"/overrides", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overrides []models.BranchOverride
	decodeData(t, resp, &overrides)
	require.Len(t, overrides, 1)
	assert.True(t, overrides[0].PriceLocked)

	w, _ = doRequest(t, router, http.MethodDelete, fmt.Sprintf("%s/overrides/%d", branchURL, cat.item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doRequest(t, router, http.MethodDelete, fmt.Sprintf("%s/overrides/%d", branchURL, cat.item.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = doRequest(t, router, http.MethodPost, branchURL+"/rollback", map[string]interface{}{"target_version": 1})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	decodeData(t, resp, &result)
	assert.Equal(t, models.SyncTypeRollback, result.SyncType)
	assert.Equal(t, 1, result.SyncedVersion)

	w, _ = doRequest(t, router, http.MethodPost, branchURL+"/sync", map[string]interface{}{"target_version": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doRequest(t, router, http.MethodPost, branchURL+"/rollback", map[string]interface{}{"target_version": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetSyncModeAndAutomaticPropagation(t *testing.T) {
	db := setupTestDB(t)
	router := setupSyncRouter(asAdmin(), db)
	cat := seedCatalog(t, router, db)

	w, resp := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/master-menus/%d/sync-policy", cat.menu.ID), map[string]interface{}{"sync_policy": []string{"all"}})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	w, resp = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/branch-syncs/%d/mode", cat.branch.ID), map[string]string{"sync_mode": "automatic"})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	w, _ = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/branch-syncs/%d/mode", cat.branch.ID), map[string]string{"sync_mode": "hourly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The next version reaches the automatic branch without a manual sync
	w, resp = doRequest(t, router, http.MethodPost, fmt.Sprintf("/master-menus/%d/versions", cat.menu.ID), map[string]interface{}{
		"change_type": "item_updated",
		"changes": []map[string]interface{}{{
			"kind":  "field_updates",
			"items": map[string]interface{}{fmt.Sprint(cat.item.ID): map[string]string{"name": "Nasi Goreng Kampung"}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)

	var branch models.BranchSync
	require.NoError(t, db.First(&branch, cat.branch.ID).Error)
	assert.Equal(t, 2, branch.SyncedVersion)

	var local models.Menu
	require.NoError(t, db.Where("source_master_item_id = ?", cat.item.ID).First(&local).Error)
	assert.Equal(t, "Nasi Goreng Kampung", local.Name)
}

func TestBranchManagerCannotTouchOtherBranches(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCatalog(t, setupSyncRouter(asAdmin(), db), db)

	foreign := setupSyncRouter(newRouter(utils.RoleBranchManager, 8, cat.branch.LocationID+1), db)
	branchURL := fmt.Sprintf("/branch-syncs/%d", cat.branch.ID)

	w, _ := doRequest(t, foreign, http.MethodPost, branchURL+"/sync", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = doRequest(t, foreign, http.MethodPut, fmt.Sprintf("%s/overrides/%d", branchURL, cat.item.ID), map[string]interface{}{"fully_locked": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = doRequest(t, foreign, http.MethodGet, fmt.Sprintf("/locations/%d/sync-status?master_menu_id=%d", cat.branch.LocationID, cat.menu.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	own := setupSyncRouter(newRouter(utils.RoleBranchManager, 9, cat.branch.LocationID), db)
	w, resp := doRequest(t, own, http.MethodPost, branchURL+"/sync", nil)
	assert.Equal(t, http.StatusOK, w.Code, resp.Message)

	w, _ = doRequest(t, own, http.MethodPost, "/branch-syncs/999/sync", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
