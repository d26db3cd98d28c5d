package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ChangeType tags a ledger version with the kind of master edit that produced it.
type ChangeType string

const (
	ChangeItemAdded       ChangeType = "item_added"
	ChangeItemRemoved     ChangeType = "item_removed"
	ChangeItemUpdated     ChangeType = "item_updated"
	ChangePriceChanged    ChangeType = "price_changed"
	ChangeCategoryChanged ChangeType = "category_changed"
	ChangeBulkUpdate      ChangeType = "bulk_update"
)

// ChangeTypes lists every known change type, in declaration order.
var ChangeTypes = []ChangeType{
	ChangeItemAdded,
	ChangeItemRemoved,
	ChangeItemUpdated,
	ChangePriceChanged,
	ChangeCategoryChanged,
	ChangeBulkUpdate,
}

func (c ChangeType) Valid() bool {
	for _, t := range ChangeTypes {
		if t == c {
			return true
		}
	}
	return false
}

// ChangeKind is the discriminator of a persisted Change.
type ChangeKind string

const (
	KindItemsAdded   ChangeKind = "items_added"
	KindItemsRemoved ChangeKind = "items_removed"
	KindFieldUpdates ChangeKind = "field_updates"
	KindPriceUpdates ChangeKind = "price_updates"
)

// Change is one entry of a version's structured diff. The set of
// implementations is closed: ItemsAdded, ItemsRemoved, FieldUpdates and
// PriceUpdates.
type Change interface {
	Kind() ChangeKind
	isChange()
}

type ItemsAdded struct {
	ItemIDs []uint `json:"item_ids"`
}

type ItemsRemoved struct {
	ItemIDs []uint `json:"item_ids"`
}

type FieldUpdates struct {
	Items map[uint]ItemFields `json:"items"`
}

type PriceUpdates struct {
	Prices map[uint]decimal.Decimal `json:"prices"`
}

func (ItemsAdded) Kind() ChangeKind   { return KindItemsAdded }
func (ItemsRemoved) Kind() ChangeKind { return KindItemsRemoved }
func (FieldUpdates) Kind() ChangeKind { return KindFieldUpdates }
func (PriceUpdates) Kind() ChangeKind { return KindPriceUpdates }

func (ItemsAdded) isChange()   {}
func (ItemsRemoved) isChange() {}
func (FieldUpdates) isChange() {}
func (PriceUpdates) isChange() {}

// ItemFields holds the master fields changed on one item. A nil field was not
// touched by the edit.
type ItemFields struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CategoryName *string          `json:"category_name,omitempty"`
	IsAvailable  *bool            `json:"is_available,omitempty"`
	ImageUrl     *string          `json:"image_url,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// Merge returns f overlaid with every field set in later.
func (f ItemFields) Merge(later ItemFields) ItemFields {
	out := f
	if later.Name != nil {
		out.Name = later.Name
	}
	if later.Description != nil {
		out.Description = later.Description
	}
	if later.CategoryName != nil {
		out.CategoryName = later.CategoryName
	}
	if later.IsAvailable != nil {
		out.IsAvailable = later.IsAvailable
	}
	if later.ImageUrl != nil {
		out.ImageUrl = later.ImageUrl
	}
	if later.Price != nil {
		out.Price = later.Price
	}
	return out
}

func (f ItemFields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil && f.CategoryName == nil &&
		f.IsAvailable == nil && f.ImageUrl == nil && f.Price == nil
}

// ChangeSet is the structured diff stored with each ledger version.
type ChangeSet []Change

type changeEnvelope struct {
	Kind    ChangeKind               `json:"kind"`
	ItemIDs []uint                   `json:"item_ids,omitempty"`
	Items   map[uint]ItemFields      `json:"items,omitempty"`
	Prices  map[uint]decimal.Decimal `json:"prices,omitempty"`
}

func (cs ChangeSet) MarshalJSON() ([]byte, error) {
	out := make([]changeEnvelope, 0, len(cs))
	for _, c := range cs {
		switch v := c.(type) {
		case ItemsAdded:
			out = append(out, changeEnvelope{Kind: KindItemsAdded, ItemIDs: v.ItemIDs})
		case ItemsRemoved:
			out = append(out, changeEnvelope{Kind: KindItemsRemoved, ItemIDs: v.ItemIDs})
		case FieldUpdates:
			out = append(out, changeEnvelope{Kind: KindFieldUpdates, Items: v.Items})
		case PriceUpdates:
			out = append(out, changeEnvelope{Kind: KindPriceUpdates, Prices: v.Prices})
		default:
			return nil, fmt.Errorf("unsupported change %T", c)
		}
	}
	return json.Marshal(out)
}

func (cs *ChangeSet) UnmarshalJSON(data []byte) error {
	var raw []changeEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ChangeSet, 0, len(raw))
	for _, e := range raw {
		switch e.Kind {
		case KindItemsAdded:
			out = append(out, ItemsAdded{ItemIDs: e.ItemIDs})
		case KindItemsRemoved:
			out = append(out, ItemsRemoved{ItemIDs: e.ItemIDs})
		case KindFieldUpdates:
			out = append(out, FieldUpdates{Items: e.Items})
		case KindPriceUpdates:
			out = append(out, PriceUpdates{Prices: e.Prices})
		default:
			return fmt.Errorf("unknown change kind %q", e.Kind)
		}
	}
	*cs = out
	return nil
}

// IsEmpty reports whether the change set touches no item at all.
func (cs ChangeSet) IsEmpty() bool {
	for _, c := range cs {
		switch v := c.(type) {
		case ItemsAdded:
			if len(v.ItemIDs) > 0 {
				return false
			}
		case ItemsRemoved:
			if len(v.ItemIDs) > 0 {
				return false
			}
		case FieldUpdates:
			if len(v.Items) > 0 {
				return false
			}
		case PriceUpdates:
			if len(v.Prices) > 0 {
				return false
			}
		}
	}
	return true
}

// AddedItemIDs returns every id introduced by the change set, sorted.
func (cs ChangeSet) AddedItemIDs() []uint {
	var ids []uint
	for _, c := range cs {
		if v, ok := c.(ItemsAdded); ok {
			ids = append(ids, v.ItemIDs...)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
