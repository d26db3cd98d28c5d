package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

// OverrideController lets a branch customize or lock master items.
type OverrideController struct {
	Overrides *services.OverrideStore
	Branches  *services.BranchSyncService
}

func NewOverrideController(overrides *services.OverrideStore, branches *services.BranchSyncService) *OverrideController {
	return &OverrideController{Overrides: overrides, Branches: branches}
}

func (oc *OverrideController) branchAndItem(c *gin.Context) (uint, uint, bool) {
	syncID, err := uintParam(c, "sync_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, 0, false
	}
	itemID, err := uintParam(c, "master_item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, 0, false
	}
	branch, err := oc.Branches.GetBranchSync(c.Request.Context(), syncID)
	if err != nil {
		respondServiceError(c, err)
		return 0, 0, false
	}
	if !canAccessLocation(c, branch.LocationID) {
		respondForbidden(c)
		return 0, 0, false
	}
	return syncID, itemID, true
}

// SetOverride
func (oc *OverrideController) SetOverride(c *gin.Context) {
	syncID, itemID, ok := oc.branchAndItem(c)
	if !ok {
		return
	}

	var input services.OverrideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	override, err := oc.Overrides.SetOverride(c.Request.Context(), syncID, itemID, input, actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Override saved", override)
}

// ClearOverride
func (oc *OverrideController) ClearOverride(c *gin.Context) {
	syncID, itemID, ok := oc.branchAndItem(c)
	if !ok {
		return
	}

	if err := oc.Overrides.ClearOverride(c.Request.Context(), syncID, itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Override removed", nil)
}

// ListOverrides
func (oc *OverrideController) ListOverrides(c *gin.Context) {
	syncID, err := uintParam(c, "sync_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	branch, err := oc.Branches.GetBranchSync(c.Request.Context(), syncID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !canAccessLocation(c, branch.LocationID) {
		respondForbidden(c)
		return
	}

	overrides, err := oc.Overrides.ListOverrides(c.Request.Context(), branch.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of overrides", overrides)
}
