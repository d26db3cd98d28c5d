package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

type MasterMenuController struct {
	Menus    *services.MasterMenuService
	Ledger   *services.VersionLedger
	Branches *services.BranchSyncService
}

func NewMasterMenuController(menus *services.MasterMenuService, ledger *services.VersionLedger, branches *services.BranchSyncService) *MasterMenuController {
	return &MasterMenuController{Menus: menus, Ledger: ledger, Branches: branches}
}

// CreateMasterMenu
func (mc *MasterMenuController) CreateMasterMenu(c *gin.Context) {
	var body struct {
		Name       string   `json:"name" binding:"required"`
		SyncPolicy []string `json:"sync_policy"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := mc.Menus.CreateMasterMenu(c.Request.Context(), body.Name, body.SyncPolicy)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Master menu created", menu)
}

// UpdateSyncPolicy
func (mc *MasterMenuController) UpdateSyncPolicy(c *gin.Context) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		SyncPolicy []string `json:"sync_policy"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := mc.Menus.UpdateSyncPolicy(c.Request.Context(), menuID, body.SyncPolicy)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sync policy updated", menu)
}

// CreateVersion records a master menu edit in the ledger. With the local bus,
// automatic branches are synced before the response is sent.
func (mc *MasterMenuController) CreateVersion(c *gin.Context) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		ChangeType models.ChangeType `json:"change_type" binding:"required"`
		Changes    models.ChangeSet  `json:"changes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	version, err := mc.Ledger.AppendVersion(c.Request.Context(), menuID, body.ChangeType, body.Changes, actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Version created", gin.H{
		"master_menu_id": menuID,
		"version":        version,
	})
}

// ListVersions
func (mc *MasterMenuController) ListVersions(c *gin.Context) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	versions, err := mc.Ledger.ListVersions(c.Request.Context(), menuID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of versions", versions)
}

// GetVersion returns one version including its snapshot
func (mc *MasterMenuController) GetVersion(c *gin.Context) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	v, err := mc.Ledger.GetVersion(c.Request.Context(), menuID, version)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Version detail", v)
}

// RegisterBranch
func (mc *MasterMenuController) RegisterBranch(c *gin.Context) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		LocationID uint            `json:"location_id" binding:"required"`
		SyncMode   models.SyncMode `json:"sync_mode"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	branch, err := mc.Branches.RegisterBranch(c.Request.Context(), menuID, body.LocationID, body.SyncMode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Branch registered", branch)
}
