package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case services.IsClientError(err):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrLockContention):
		status = http.StatusConflict
	}
	utils.RespondError(c, status, err)
}

func uintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// actorID returns the authenticated user, or nil for anonymous calls.
func actorID(c *gin.Context) *uint {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

// canAccessLocation restricts branch managers to their own location.
func canAccessLocation(c *gin.Context, locationID uint) bool {
	if c.GetString("role") != utils.RoleBranchManager {
		return true
	}
	v, _ := c.Get("location_id")
	own, ok := v.(uint)
	return ok && own == locationID
}

func respondForbidden(c *gin.Context) {
	utils.RespondError(c, http.StatusForbidden, errors.New("access to this location is not allowed"))
}
