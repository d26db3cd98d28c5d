package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockState is what sync needs to know about a branch's customization of one
// master item. The zero value means no customization.
type LockState struct {
	PriceLocked          bool             `json:"price_locked"`
	AvailabilityLocked   bool             `json:"availability_locked"`
	FullyLocked          bool             `json:"fully_locked"`
	PriceOverride        *decimal.Decimal `json:"price_override,omitempty"`
	AvailabilityOverride *bool            `json:"availability_override,omitempty"`
}

// PriceVetoed treats fully_locked as a superset of price_locked.
func (s LockState) PriceVetoed() bool {
	return s.FullyLocked || s.PriceLocked
}

// AvailabilityVetoed treats fully_locked as a superset of availability_locked.
func (s LockState) AvailabilityVetoed() bool {
	return s.FullyLocked || s.AvailabilityLocked
}

func lockStateOf(o models.BranchOverride) LockState {
	state := LockState{
		PriceLocked:          o.PriceLocked,
		AvailabilityLocked:   o.AvailabilityLocked,
		FullyLocked:          o.FullyLocked,
		AvailabilityOverride: o.AvailabilityOverride,
	}
	if o.PriceOverride.Valid {
		price := o.PriceOverride.Decimal
		state.PriceOverride = &price
	}
	return state
}

// OverrideInput is a partial update of one override row. Nil fields are left
// as they are.
type OverrideInput struct {
	PriceOverride             *decimal.Decimal `json:"price_override"`
	ClearPriceOverride        bool             `json:"clear_price_override"`
	AvailabilityOverride      *bool            `json:"availability_override"`
	ClearAvailabilityOverride bool             `json:"clear_availability_override"`
	PriceLocked               *bool            `json:"price_locked"`
	AvailabilityLocked        *bool            `json:"availability_locked"`
	FullyLocked               *bool            `json:"fully_locked"`
}

// OverrideStore keeps the per (branch, master item) overrides and locks.
// Sync only reads it; branch operators write it.
type OverrideStore struct {
	db *gorm.DB
}

func NewOverrideStore(db *gorm.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// LockStateFor returns the lock state of one item. A missing row is the zero state.
func (s *OverrideStore) LockStateFor(ctx context.Context, branchSyncID, masterItemID uint) (LockState, error) {
	var override models.BranchOverride
	err := s.db.WithContext(ctx).
		Where("branch_sync_id = ? AND master_item_id = ?", branchSyncID, masterItemID).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LockState{}, nil
	}
	if err != nil {
		return LockState{}, err
	}
	return lockStateOf(override), nil
}

// lockStatesFor loads every override of a branch, keyed by master item id.
func lockStatesFor(tx *gorm.DB, branchSyncID uint) (map[uint]LockState, error) {
	var overrides []models.BranchOverride
	if err := tx.Where("branch_sync_id = ?", branchSyncID).Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	states := make(map[uint]LockState, len(overrides))
	for _, o := range overrides {
		states[o.MasterItemID] = lockStateOf(o)
	}
	return states, nil
}

// SetOverride upserts the override row. Explicit override values are also
// written to the branch's local copy of the item, since this is a branch action.
func (s *OverrideStore) SetOverride(ctx context.Context, branchSyncID, masterItemID uint, input OverrideInput, actorID *uint) (*models.BranchOverride, error) {
	if masterItemID == 0 {
		return nil, fmt.Errorf("%w: master item id is required", ErrInvalidInput)
	}
	if input.PriceOverride != nil && input.PriceOverride.IsNegative() {
		return nil, fmt.Errorf("%w: price override must not be negative", ErrInvalidInput)
	}

	var override models.BranchOverride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch models.BranchSync
		if err := tx.First(&branch, branchSyncID).Error; err != nil {
			return notFound(err, "branch sync %d", branchSyncID)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(models.BranchOverride{BranchSyncID: branchSyncID, MasterItemID: masterItemID}).
			FirstOrInit(&override).Error; err != nil {
			return err
		}

		switch {
		case input.ClearPriceOverride:
			override.PriceOverride = decimal.NullDecimal{}
		case input.PriceOverride != nil:
			override.PriceOverride = decimal.NewNullDecimal(*input.PriceOverride)
		}
		switch {
		case input.ClearAvailabilityOverride:
			override.AvailabilityOverride = nil
		case input.AvailabilityOverride != nil:
			v := *input.AvailabilityOverride
			override.AvailabilityOverride = &v
		}
		if input.PriceLocked != nil {
			override.PriceLocked = *input.PriceLocked
		}
		if input.AvailabilityLocked != nil {
			override.AvailabilityLocked = *input.AvailabilityLocked
		}
		if input.FullyLocked != nil {
			override.FullyLocked = *input.FullyLocked
		}
		override.UpdatedBy = actorID

		if err := tx.Save(&override).Error; err != nil {
			return fmt.Errorf("failed to save override: %w", err)
		}

		if input.PriceOverride == nil && input.AvailabilityOverride == nil {
			return nil
		}
		updates := map[string]interface{}{}
		if input.PriceOverride != nil {
			updates["price"] = *input.PriceOverride
		}
		if input.AvailabilityOverride != nil {
			updates["is_available"] = *input.AvailabilityOverride
		}
		return tx.Model(&models.Menu{}).
			Where("location_id = ? AND source_master_item_id = ?", branch.LocationID, masterItemID).
			Updates(updates).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			utils.LogError("services", "OverrideStore.SetOverride", "Error saving override", masterItemID, err)
		}
		return nil, err
	}
	return &override, nil
}

// ClearOverride removes every customization of one item for the branch.
func (s *OverrideStore) ClearOverride(ctx context.Context, branchSyncID, masterItemID uint) error {
	result := s.db.WithContext(ctx).
		Where("branch_sync_id = ? AND master_item_id = ?", branchSyncID, masterItemID).
		Delete(&models.BranchOverride{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: override of item %d on branch sync %d", ErrNotFound, masterItemID, branchSyncID)
	}
	return nil
}

func (s *OverrideStore) ListOverrides(ctx context.Context, branchSyncID uint) ([]models.BranchOverride, error) {
	var overrides []models.BranchOverride
	if err := s.db.WithContext(ctx).
		Where("branch_sync_id = ?", branchSyncID).
		Order("master_item_id").
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}
