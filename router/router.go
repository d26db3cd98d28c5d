package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/config"
	"github.com/yeremiapane/franchise-menu-sync/controllers"
	"github.com/yeremiapane/franchise-menu-sync/middlewares"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// Services groups what the handlers need beyond the database handle.
type Services struct {
	MasterMenus *services.MasterMenuService
	Ledger      *services.VersionLedger
	Branches    *services.BranchSyncService
	Applier     *services.SyncApplier
	Overrides   *services.OverrideStore
}

func SetupRouter(db *gorm.DB, cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if cfg.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	// Inisialisasi controller
	masterMenuCtrl := controllers.NewMasterMenuController(svc.MasterMenus, svc.Ledger, svc.Branches)
	catalogCtrl := controllers.NewCatalogController(db)
	syncCtrl := controllers.NewSyncController(svc.Branches, svc.Applier)
	overrideCtrl := controllers.NewOverrideController(svc.Overrides, svc.Branches)
	locationCtrl := controllers.NewLocationController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Menu cabang bisa dilihat tanpa login
	r.GET("/locations/:location_id/menus", menuCtrl.GetLocationMenus)
	r.GET("/locations/:location_id/menus/:menu_id", menuCtrl.GetMenuByID)
	r.GET("/locations/:location_id/categories", categoryCtrl.GetLocationCategories)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	// FRANCHISE ADMIN ONLY
	franchise := auth.Group("")
	franchise.Use(middlewares.RequireRoles(utils.RoleFranchiseAdmin))
	{
		franchise.POST("/locations", locationCtrl.CreateLocation)
		franchise.GET("/locations", locationCtrl.GetAllLocations)
		franchise.GET("/locations/:location_id", locationCtrl.GetLocationByID)

		franchise.POST("/master-menus", masterMenuCtrl.CreateMasterMenu)
		franchise.PATCH("/master-menus/:menu_id/sync-policy", masterMenuCtrl.UpdateSyncPolicy)
		franchise.POST("/master-menus/:menu_id/versions", masterMenuCtrl.CreateVersion)
		franchise.GET("/master-menus/:menu_id/versions", masterMenuCtrl.ListVersions)
		franchise.GET("/master-menus/:menu_id/versions/:version", masterMenuCtrl.GetVersion)
		franchise.POST("/master-menus/:menu_id/branches", masterMenuCtrl.RegisterBranch)

		// Master catalog
		franchise.GET("/master-menus/:menu_id/categories", catalogCtrl.GetMasterCategories)
		franchise.POST("/master-menus/:menu_id/categories", catalogCtrl.CreateMasterCategory)
		franchise.GET("/master-menus/:menu_id/items", catalogCtrl.GetMasterItems)
		franchise.POST("/master-menus/:menu_id/items", catalogCtrl.CreateMasterItem)
		franchise.PATCH("/master-menus/:menu_id/items/:item_id", catalogCtrl.UpdateMasterItem)
		franchise.DELETE("/master-menus/:menu_id/items/:item_id", catalogCtrl.DeleteMasterItem)

		franchise.POST("/branch-syncs/:sync_id/rollback", syncCtrl.Rollback)
	}

	// FRANCHISE ADMIN + BRANCH MANAGER (branch managers only see their own location)
	branch := auth.Group("")
	branch.Use(middlewares.RequireRoles(utils.RoleFranchiseAdmin, utils.RoleBranchManager))
	{
		branch.GET("/locations/:location_id/sync-status", syncCtrl.GetSyncStatus)
		branch.PATCH("/branch-syncs/:sync_id/mode", syncCtrl.SetSyncMode)
		branch.GET("/branch-syncs/:sync_id/preview", syncCtrl.PreviewPendingChanges)
		branch.POST("/branch-syncs/:sync_id/sync", syncCtrl.SyncBranch)
		branch.GET("/branch-syncs/:sync_id/logs", syncCtrl.ListSyncLogs)

		branch.GET("/branch-syncs/:sync_id/overrides", overrideCtrl.ListOverrides)
		branch.PUT("/branch-syncs/:sync_id/overrides/:master_item_id", overrideCtrl.SetOverride)
		branch.DELETE("/branch-syncs/:sync_id/overrides/:master_item_id", overrideCtrl.ClearOverride)

		// Item lokal cabang
		branch.POST("/locations/:location_id/categories", categoryCtrl.CreateCategory)
		branch.POST("/locations/:location_id/menus", menuCtrl.CreateMenu)
		branch.DELETE("/locations/:location_id/menus/:menu_id", menuCtrl.DeleteMenu)
	}

	return r
}
