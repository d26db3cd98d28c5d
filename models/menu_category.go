package models

import "time"

type MenuCategory struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	LocationID             uint      `gorm:"not null;uniqueIndex:idx_category_location_name" json:"location_id"`
	Name                   string    `gorm:"type:varchar(100);uniqueIndex:idx_category_location_name" json:"name"`
	SourceMasterCategoryID *uint     `gorm:"index" json:"source_master_category_id,omitempty"`
	CreatedAt              time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time `gorm:"not null" json:"updated_at"`
}
