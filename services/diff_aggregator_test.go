package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/franchise-menu-sync/models"
)

// mixedHistory appends six versions touching three items in every way the
// fold has to handle, and returns the item ids.
func mixedHistory(t *testing.T, f *fixture) (a, b, c uint) {
	t.Helper()
	a = f.addItem(t, "Makanan", "Nasi Liwet", "20000").ID
	b = f.addItem(t, "Makanan", "Tahu Gejrot", "10000").ID
	c = f.addItem(t, "Minuman", "Bajigur", "8000").ID

	f.appendVersion(t, models.ChangeItemAdded, models.ItemsAdded{ItemIDs: []uint{a, b}})
	f.appendVersion(t, models.ChangeItemUpdated, models.FieldUpdates{Items: map[uint]models.ItemFields{
		a: {Name: strPtr("Nasi Liwet Solo")},
		b: {Description: strPtr("Pedas manis"), Price: decPtr("11000")},
	}})
	f.appendVersion(t, models.ChangeItemRemoved, models.ItemsRemoved{ItemIDs: []uint{b}})
	f.appendVersion(t, models.ChangeItemAdded, models.ItemsAdded{ItemIDs: []uint{c}})
	f.appendVersion(t, models.ChangePriceChanged, models.PriceUpdates{Prices: map[uint]decimal.Decimal{a: price("21000"), c: price("8500")}})
	f.appendVersion(t, models.ChangeBulkUpdate,
		models.FieldUpdates{Items: map[uint]models.ItemFields{a: {IsAvailable: boolPtr(false)}}},
		models.PriceUpdates{Prices: map[uint]decimal.Decimal{a: price("22000")}},
	)
	return a, b, c
}

func TestEffectiveChanges_FoldsWholeHistory(t *testing.T) {
	f := newFixture(t)
	a, b, c := mixedHistory(t, f)

	diff, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 0, 6)
	require.NoError(t, err)

	// b was added and removed inside the range
	assert.Equal(t, []uint{a, c}, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, 1, diff.AddedIn[a])
	assert.Equal(t, 4, diff.AddedIn[c])
	assert.NotContains(t, diff.AddedIn, b)

	require.Contains(t, diff.Updated, a)
	assert.Equal(t, "Nasi Liwet Solo", *diff.Updated[a].Name)
	assert.False(t, *diff.Updated[a].IsAvailable)
	assert.Nil(t, diff.Updated[a].Price)

	assert.True(t, diff.PriceChanges[a].Equal(price("22000")))
	assert.True(t, diff.PriceChanges[c].Equal(price("8500")))
	assert.True(t, diff.PriceChanges[b].Equal(price("11000")))
}

func TestEffectiveChanges_RemoveThenReAddCancels(t *testing.T) {
	f := newFixture(t)
	a := f.addItem(t, "Makanan", "Lontong Sayur", "15000").ID
	f.appendVersion(t, models.ChangeItemAdded, models.ItemsAdded{ItemIDs: []uint{a}})
	f.appendVersion(t, models.ChangeItemRemoved, models.ItemsRemoved{ItemIDs: []uint{a}})
	f.appendVersion(t, models.ChangeItemAdded, models.ItemsAdded{ItemIDs: []uint{a}})

	diff, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 1, 3)
	require.NoError(t, err)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.True(t, diff.IsEmpty())

	diff, err = f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint{a}, diff.Added)
	assert.Equal(t, 3, diff.AddedIn[a])
}

func TestEffectiveChanges_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	mixedHistory(t, f)

	first, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 2, 5)
	require.NoError(t, err)
	second, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMerge_MatchesSingleFoldForEverySplit(t *testing.T) {
	f := newFixture(t)
	mixedHistory(t, f)
	ctx := context.Background()

	for from := 0; from <= 6; from++ {
		for to := from; to <= 6; to++ {
			whole, err := f.aggregator.EffectiveChanges(ctx, f.menu.ID, from, to)
			require.NoError(t, err)
			for split := from; split <= to; split++ {
				left, err := f.aggregator.EffectiveChanges(ctx, f.menu.ID, from, split)
				require.NoError(t, err)
				right, err := f.aggregator.EffectiveChanges(ctx, f.menu.ID, split, to)
				require.NoError(t, err)

				merged := Merge(left, right)
				assert.Equal(t, whole.Added, merged.Added, "from=%d split=%d to=%d", from, split, to)
				assert.Equal(t, whole.Removed, merged.Removed, "from=%d split=%d to=%d", from, split, to)
				assert.Equal(t, whole.AddedIn, merged.AddedIn, "from=%d split=%d to=%d", from, split, to)
				assert.Equal(t, whole.Updated, merged.Updated, "from=%d split=%d to=%d", from, split, to)
				assert.Equal(t, len(whole.PriceChanges), len(merged.PriceChanges), "from=%d split=%d to=%d", from, split, to)
				for id, p := range whole.PriceChanges {
					assert.True(t, p.Equal(merged.PriceChanges[id]), "item %d from=%d split=%d to=%d", id, from, split, to)
				}
			}
		}
	}
}

func TestEffectiveChanges_InvalidRange(t *testing.T) {
	f := newFixture(t)
	a := f.addItem(t, "Makanan", "Pindang", "19000").ID
	f.appendVersion(t, models.ChangeItemAdded, models.ItemsAdded{ItemIDs: []uint{a}})

	tests := []struct {
		name     string
		from, to int
	}{
		{"negative from", -1, 1},
		{"to before from", 1, 0},
		{"to beyond current", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, tt.from, tt.to)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}

	_, err := f.aggregator.EffectiveChanges(context.Background(), 9999, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := f.aggregator.EffectiveChanges(context.Background(), f.menu.ID, 1, 1)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
