package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// CatalogController edits the master catalog rows. Edits only reach branches
// once a version is appended to the ledger.
type CatalogController struct {
	DB *gorm.DB
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

func (cc *CatalogController) masterMenu(c *gin.Context) (*models.MasterMenu, bool) {
	menuID, err := uintParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	var menu models.MasterMenu
	if err := cc.DB.First(&menu, menuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return nil, false
	}
	return &menu, true
}

// GetMasterCategories
func (cc *CatalogController) GetMasterCategories(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	var categories []models.MasterCategory
	if err := cc.DB.Where("master_menu_id = ?", menu.ID).Order("id").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of master categories", categories)
}

// CreateMasterCategory
func (cc *CatalogController) CreateMasterCategory(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.MasterCategory{MasterMenuID: menu.ID, Name: body.Name}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Master category created", category)
}

// GetMasterItems
func (cc *CatalogController) GetMasterItems(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	var items []models.MasterMenuItem
	if err := cc.DB.Preload("Category").Where("master_menu_id = ?", menu.ID).Order("id").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of master items", items)
}

type masterItemBody struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageUrl    *string          `json:"image_url"`
	IsAvailable *bool            `json:"is_available"`
}

// CreateMasterItem
func (cc *CatalogController) CreateMasterItem(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	var body masterItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.CategoryID == nil || body.Name == nil || body.Price == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category_id, name and price are required"))
		return
	}

	item := models.MasterMenuItem{MasterMenuID: menu.ID, IsAvailable: true}
	if err := cc.applyItemBody(&item, body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.DB.Omit("Category").Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Master item created", item)
}

// UpdateMasterItem
func (cc *CatalogController) UpdateMasterItem(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	itemID, err := uintParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MasterMenuItem
	if err := cc.DB.Where("master_menu_id = ?", menu.ID).First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body masterItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.applyItemBody(&item, body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.DB.Omit("Category").Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Master item updated", item)
}

// DeleteMasterItem
func (cc *CatalogController) DeleteMasterItem(c *gin.Context) {
	menu, ok := cc.masterMenu(c)
	if !ok {
		return
	}
	itemID, err := uintParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := cc.DB.Where("master_menu_id = ?", menu.ID).Delete(&models.MasterMenuItem{}, itemID)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("master item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Master item deleted", gin.H{"item_id": itemID})
}

func (cc *CatalogController) applyItemBody(item *models.MasterMenuItem, body masterItemBody) error {
	if body.CategoryID != nil {
		var category models.MasterCategory
		if err := cc.DB.Where("master_menu_id = ?", item.MasterMenuID).First(&category, *body.CategoryID).Error; err != nil {
			return errors.New("invalid category_id")
		}
		item.CategoryID = category.ID
	}
	if body.Price != nil {
		if body.Price.IsNegative() {
			return errors.New("invalid price")
		}
		item.Price = *body.Price
	}
	if body.Name != nil {
		item.Name = *body.Name
	}
	if body.Description != nil {
		item.Description = *body.Description
	}
	if body.Stock != nil {
		item.Stock = *body.Stock
	}
	if body.ImageUrl != nil {
		item.ImageUrl = body.ImageUrl
	}
	if body.IsAvailable != nil {
		item.IsAvailable = *body.IsAvailable
	}
	return nil
}
