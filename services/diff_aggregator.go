package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/franchise-menu-sync/models"
	"gorm.io/gorm"
)

// AggregatedDiff is the effective change of a master menu between two
// versions, as seen by a branch that sits at FromVersion.
type AggregatedDiff struct {
	MasterMenuID uint                       `json:"master_menu_id"`
	FromVersion  int                        `json:"from_version"`
	ToVersion    int                        `json:"to_version"`
	Added        []uint                     `json:"added"`
	Removed      []uint                     `json:"removed"`
	Updated      map[uint]models.ItemFields `json:"updated"`
	PriceChanges map[uint]decimal.Decimal   `json:"price_changes"`
	// AddedIn is the version whose snapshot holds an added item's base fields.
	AddedIn map[uint]int `json:"added_in"`
}

// IsEmpty reports whether applying the diff would change nothing.
func (d *AggregatedDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0 && len(d.PriceChanges) == 0
}

// DiffAggregator collapses a range of ledger versions into one change set.
// It only reads.
type DiffAggregator struct {
	db *gorm.DB
}

func NewDiffAggregator(db *gorm.DB) *DiffAggregator {
	return &DiffAggregator{db: db}
}

// EffectiveChanges folds versions from < n <= to of a master menu.
func (a *DiffAggregator) EffectiveChanges(ctx context.Context, masterMenuID uint, from, to int) (*AggregatedDiff, error) {
	return a.effectiveChanges(a.db.WithContext(ctx), masterMenuID, from, to)
}

func (a *DiffAggregator) effectiveChanges(tx *gorm.DB, masterMenuID uint, from, to int) (*AggregatedDiff, error) {
	if from < 0 || to < from {
		return nil, fmt.Errorf("%w: from %d to %d", ErrInvalidRange, from, to)
	}

	var menu models.MasterMenu
	if err := tx.Select("id", "current_version").First(&menu, masterMenuID).Error; err != nil {
		return nil, notFound(err, "master menu %d", masterMenuID)
	}
	if to > menu.CurrentVersion {
		return nil, fmt.Errorf("%w: version %d is beyond current version %d", ErrInvalidRange, to, menu.CurrentVersion)
	}

	var versions []models.MenuVersion
	if err := tx.Omit("snapshot").
		Where("master_menu_id = ? AND version_number > ? AND version_number <= ?", masterMenuID, from, to).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}
	if len(versions) != to-from {
		return nil, fmt.Errorf("ledger of master menu %d has gaps between %d and %d", masterMenuID, from, to)
	}

	f := newDiffFold()
	for _, v := range versions {
		f.applyVersion(v.VersionNumber, v.Changes.Data())
	}
	return f.result(masterMenuID, from, to), nil
}

// Merge combines two consecutive aggregated diffs (first ending where second
// starts) with the same rules EffectiveChanges uses for single versions.
func Merge(first, second *AggregatedDiff) *AggregatedDiff {
	f := newDiffFold()
	for _, id := range first.Added {
		f.state[id] = stateAdded
		f.addedIn[id] = first.AddedIn[id]
	}
	for _, id := range first.Removed {
		f.state[id] = stateRemoved
	}
	for id, fields := range first.Updated {
		f.updated[id] = fields
	}
	for id, price := range first.PriceChanges {
		f.prices[id] = price
	}

	for _, id := range second.Added {
		f.add(id, second.AddedIn[id])
	}
	for _, id := range second.Removed {
		f.remove(id)
	}
	for id, fields := range second.Updated {
		f.updated[id] = f.updated[id].Merge(fields)
	}
	for id, price := range second.PriceChanges {
		f.prices[id] = price
	}
	return f.result(first.MasterMenuID, first.FromVersion, second.ToVersion)
}

const (
	stateRemoved = -1
	stateAdded   = 1
)

// diffFold tracks, per item, whether it is net added or net removed over the
// versions folded so far. An add cancels an earlier remove and vice versa.
type diffFold struct {
	state   map[uint]int
	addedIn map[uint]int
	updated map[uint]models.ItemFields
	prices  map[uint]decimal.Decimal
}

func newDiffFold() *diffFold {
	return &diffFold{
		state:   map[uint]int{},
		addedIn: map[uint]int{},
		updated: map[uint]models.ItemFields{},
		prices:  map[uint]decimal.Decimal{},
	}
}

func (f *diffFold) add(id uint, version int) {
	if f.state[id] == stateRemoved {
		delete(f.state, id)
		delete(f.addedIn, id)
		return
	}
	f.state[id] = stateAdded
	f.addedIn[id] = version
}

func (f *diffFold) remove(id uint) {
	if f.state[id] == stateAdded {
		delete(f.state, id)
		delete(f.addedIn, id)
		return
	}
	f.state[id] = stateRemoved
}

func (f *diffFold) applyVersion(version int, changes models.ChangeSet) {
	for _, change := range changes {
		switch c := change.(type) {
		case models.ItemsAdded:
			for _, id := range c.ItemIDs {
				f.add(id, version)
			}
		case models.ItemsRemoved:
			for _, id := range c.ItemIDs {
				f.remove(id)
			}
		case models.FieldUpdates:
			for id, fields := range c.Items {
				// Harga selalu diproses lewat jalur price change
				if fields.Price != nil {
					f.prices[id] = *fields.Price
					fields.Price = nil
				}
				if !fields.IsEmpty() {
					f.updated[id] = f.updated[id].Merge(fields)
				}
			}
		case models.PriceUpdates:
			for id, price := range c.Prices {
				f.prices[id] = price
			}
		}
	}
}

func (f *diffFold) result(masterMenuID uint, from, to int) *AggregatedDiff {
	diff := &AggregatedDiff{
		MasterMenuID: masterMenuID,
		FromVersion:  from,
		ToVersion:    to,
		Added:        []uint{},
		Removed:      []uint{},
		Updated:      f.updated,
		PriceChanges: f.prices,
		AddedIn:      f.addedIn,
	}
	for id, s := range f.state {
		switch s {
		case stateAdded:
			diff.Added = append(diff.Added, id)
		case stateRemoved:
			diff.Removed = append(diff.Removed, id)
		}
	}
	sortIDs(diff.Added)
	sortIDs(diff.Removed)
	return diff
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
