package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/franchise-menu-sync/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MasterMenuService creates master menus and edits their auto-sync policy.
type MasterMenuService struct {
	db *gorm.DB
}

func NewMasterMenuService(db *gorm.DB) *MasterMenuService {
	return &MasterMenuService{db: db}
}

type masterMenuRequest struct {
	Name string `validate:"required,max=255"`
}

func (s *MasterMenuService) CreateMasterMenu(ctx context.Context, name string, policy []string) (*models.MasterMenu, error) {
	if err := validateStruct(masterMenuRequest{Name: name}); err != nil {
		return nil, err
	}
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}

	menu := models.MasterMenu{Name: name, SyncPolicy: datatypes.JSONSlice[string](normalizePolicy(policy))}
	if err := s.db.WithContext(ctx).Create(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (s *MasterMenuService) GetMasterMenu(ctx context.Context, masterMenuID uint) (*models.MasterMenu, error) {
	var menu models.MasterMenu
	if err := s.db.WithContext(ctx).First(&menu, masterMenuID).Error; err != nil {
		return nil, notFound(err, "master menu %d", masterMenuID)
	}
	return &menu, nil
}

// UpdateSyncPolicy replaces the list of change types that propagate automatically.
// It only affects versions appended afterwards.
func (s *MasterMenuService) UpdateSyncPolicy(ctx context.Context, masterMenuID uint, policy []string) (*models.MasterMenu, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	menu, err := s.GetMasterMenu(ctx, masterMenuID)
	if err != nil {
		return nil, err
	}
	menu.SyncPolicy = datatypes.JSONSlice[string](normalizePolicy(policy))
	if err := s.db.WithContext(ctx).Model(menu).Update("sync_policy", menu.SyncPolicy).Error; err != nil {
		return nil, err
	}
	return menu, nil
}

func validatePolicy(policy []string) error {
	for _, p := range policy {
		if p == models.SyncPolicyAll || models.ChangeType(p).Valid() {
			continue
		}
		return fmt.Errorf("%w: unknown sync policy entry %q", ErrInvalidInput, p)
	}
	return nil
}

// normalizePolicy drops duplicates and collapses to the wildcard when present.
func normalizePolicy(policy []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, p := range policy {
		if p == models.SyncPolicyAll {
			return []string{models.SyncPolicyAll}
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
