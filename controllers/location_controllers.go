package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

type LocationController struct {
	DB *gorm.DB
}

func NewLocationController(db *gorm.DB) *LocationController {
	return &LocationController{DB: db}
}

// CreateLocation -> menambahkan cabang baru
func (lc *LocationController) CreateLocation(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	location := models.Location{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := lc.DB.Create(&location).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New location created: %s (id=%d)", location.Name, location.ID)
	utils.RespondJSON(c, http.StatusCreated, "Location created successfully", location)
}

// GetAllLocations -> menampilkan seluruh cabang
func (lc *LocationController) GetAllLocations(c *gin.Context) {
	var locations []models.Location
	if err := lc.DB.Order("id").Find(&locations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of locations", locations)
}

// GetLocationByID
func (lc *LocationController) GetLocationByID(c *gin.Context) {
	locationID, err := uintParam(c, "location_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var location models.Location
	if err := lc.DB.First(&location, locationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Location detail", location)
}
