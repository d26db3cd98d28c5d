package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

type SyncController struct {
	Branches *services.BranchSyncService
	Applier  *services.SyncApplier
}

func NewSyncController(branches *services.BranchSyncService, applier *services.SyncApplier) *SyncController {
	return &SyncController{Branches: branches, Applier: applier}
}

// branchFromParam loads the branch sync named in the path and checks access.
func (sc *SyncController) branchFromParam(c *gin.Context) (*models.BranchSync, bool) {
	syncID, err := uintParam(c, "sync_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	branch, err := sc.Branches.GetBranchSync(c.Request.Context(), syncID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if !canAccessLocation(c, branch.LocationID) {
		respondForbidden(c)
		return nil, false
	}
	return branch, true
}

// GetSyncStatus
func (sc *SyncController) GetSyncStatus(c *gin.Context) {
	locationID, err := uintParam(c, "location_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	menuID, err := strconv.ParseUint(c.Query("master_menu_id"), 10, 32)
	if err != nil || menuID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("master_menu_id query parameter is required"))
		return
	}
	if !canAccessLocation(c, locationID) {
		respondForbidden(c)
		return
	}

	status, err := sc.Branches.GetSyncStatus(c.Request.Context(), locationID, uint(menuID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sync status", status)
}

// SetSyncMode
func (sc *SyncController) SetSyncMode(c *gin.Context) {
	branch, ok := sc.branchFromParam(c)
	if !ok {
		return
	}

	var body struct {
		SyncMode models.SyncMode `json:"sync_mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := sc.Branches.SetSyncMode(c.Request.Context(), branch.ID, body.SyncMode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sync mode updated", updated)
}

// PreviewPendingChanges
func (sc *SyncController) PreviewPendingChanges(c *gin.Context) {
	branch, ok := sc.branchFromParam(c)
	if !ok {
		return
	}

	diff, err := sc.Branches.PreviewPendingChanges(c.Request.Context(), branch.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending changes", diff)
}

// SyncBranch applies pending versions to the branch, up to the current
// version unless target_version is given.
func (sc *SyncController) SyncBranch(c *gin.Context) {
	branch, ok := sc.branchFromParam(c)
	if !ok {
		return
	}

	var body struct {
		TargetVersion *int `json:"target_version"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	target := branch.MasterMenu.CurrentVersion
	if body.TargetVersion != nil {
		target = *body.TargetVersion
	}

	result, err := sc.Applier.Apply(c.Request.Context(), branch.ID, target, models.SyncTypeManual, actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Branch synced"
	if result.Status == models.SyncStatusPartial {
		message = "Branch synced with conflicts"
	}
	utils.RespondJSON(c, http.StatusOK, message, result)
}

// Rollback
func (sc *SyncController) Rollback(c *gin.Context) {
	branch, ok := sc.branchFromParam(c)
	if !ok {
		return
	}

	var body struct {
		TargetVersion int `json:"target_version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := sc.Applier.Rollback(c.Request.Context(), branch.ID, body.TargetVersion, actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch rolled back", result)
}

// ListSyncLogs
func (sc *SyncController) ListSyncLogs(c *gin.Context) {
	branch, ok := sc.branchFromParam(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	logs, err := sc.Branches.ListSyncLogs(c.Request.Context(), branch.ID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sync logs", logs)
}
