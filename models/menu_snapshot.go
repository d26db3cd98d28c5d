package models

import "github.com/shopspring/decimal"

// MenuSnapshot is the full denormalized state of a master menu at one version.
type MenuSnapshot struct {
	MasterMenuID uint               `json:"master_menu_id"`
	Version      int                `json:"version"`
	Name         string             `json:"name"`
	Categories   []SnapshotCategory `json:"categories"`
	Items        []SnapshotItem     `json:"items"`
}

type SnapshotCategory struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type SnapshotItem struct {
	ID           uint            `json:"id"`
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageUrl     *string         `json:"image_url,omitempty"`
	IsAvailable  bool            `json:"is_available"`
}

func (s MenuSnapshot) Item(id uint) (SnapshotItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return SnapshotItem{}, false
}
