package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// MenuController serves a branch's local menu. Items materialized from the
// master menu are read-only here; branches customize them through overrides.
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetLocationMenus
func (mc *MenuController) GetLocationMenus(c *gin.Context) {
	locationID, err := uintParam(c, "location_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !canAccessLocation(c, locationID) {
		respondForbidden(c)
		return
	}

	query := mc.DB.Preload("Category").Where("location_id = ?", locationID)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("available") == "true" {
		query = query.Where("is_available = ?", true)
	}

	var menus []models.Menu
	if err := query.Order("id").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("List of menus for location ID: %d", locationID), menus)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	menu, ok := mc.menuFromParams(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// CreateMenu adds a branch-only item that sync never touches
func (mc *MenuController) CreateMenu(c *gin.Context) {
	locationID, err := uintParam(c, "location_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !canAccessLocation(c, locationID) {
		respondForbidden(c)
		return
	}

	var body struct {
		CategoryID  uint            `json:"category_id" binding:"required"`
		Name        string          `json:"name" binding:"required"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
		Description string          `json:"description"`
		ImageUrl    *string         `json:"image_url"`
		IsAvailable *bool           `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
		return
	}

	var category models.MenuCategory
	if err := mc.DB.Where("id = ? AND location_id = ?", body.CategoryID, locationID).First(&category).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id"))
		return
	}

	menu := models.Menu{
		LocationID:  locationID,
		CategoryID:  category.ID,
		Name:        body.Name,
		Price:       body.Price,
		Stock:       body.Stock,
		Description: body.Description,
		ImageUrl:    body.ImageUrl,
		IsAvailable: body.IsAvailable == nil || *body.IsAvailable,
	}
	if err := mc.DB.Omit("Category").Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	menu.Category = category

	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// DeleteMenu
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	menu, ok := mc.menuFromParams(c)
	if !ok {
		return
	}
	if menu.IsSyncManaged() {
		utils.RespondError(c, http.StatusConflict, errors.New("menu is managed by the master menu; lock it with an override instead"))
		return
	}

	if err := mc.DB.Delete(&models.Menu{}, menu.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": menu.ID})
}

func (mc *MenuController) menuFromParams(c *gin.Context) (*models.Menu, bool) {
	locationID, err := uintParam(c, "location_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	if !canAccessLocation(c, locationID) {
		respondForbidden(c)
		return nil, false
	}

	var menu models.Menu
	if err := mc.DB.Preload("Category").Where("location_id = ?", locationID).First(&menu, menuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return nil, false
	}
	return &menu, true
}
