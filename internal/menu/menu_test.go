package menu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleMenu() []Category {
	return []Category{
		{ID: "c1", Category: "Thali", Icon: "🍛", Tag: "Bestseller", Description: "Full meals", Items: []Item{
			{ID: "i1", Name: "Veg Thali", Price: 120, IsAvailable: true},
			{ID: "i2", Name: "Mini Thali", Price: 90},
		}},
		{ID: "c2", Category: "Sweets", Icon: "🍮", Items: []Item{
			{ID: "i3", Name: "Kheer", Price: 40, IsAvailable: true},
		}},
		{ID: "c3", Category: "Drinks", Tag: "New", Items: nil},
	}
}

func TestFlattenFillsCategoryNames(t *testing.T) {
	items := Flatten(sampleMenu())
	require.Len(t, items, 3)
	require.Equal(t, "Thali", items[0].Category)
	require.Equal(t, "Sweets", items[2].Category)
	require.Empty(t, Flatten(nil))
}

func TestReconstructRoundTripPreservesMetadata(t *testing.T) {
	menu := sampleMenu()
	got := Reconstruct(menu, Flatten(menu))

	require.Len(t, got, 3)
	for i, c := range got {
		require.Equal(t, menu[i].ID, c.ID)
		require.Equal(t, menu[i].Icon, c.Icon)
		require.Equal(t, menu[i].Tag, c.Tag)
		require.Equal(t, menu[i].Description, c.Description)
	}
	require.Len(t, got[0].Items, 2)
	require.Len(t, got[1].Items, 1)
	require.NotNil(t, got[2].Items)
	require.Empty(t, got[2].Items)
}

func TestReconstructMovesItemsAndCollectsOrphans(t *testing.T) {
	menu := sampleMenu()
	items := Flatten(menu)
	items[1].Category = "drinks"
	items = append(items, Item{ID: "i4", Name: "Samosa", Price: 15, Category: "Snacks"})
	items = append(items, Item{ID: "i5", Name: "Lassi", Price: 30, Category: "c3"})

	got := Reconstruct(menu, items)
	require.Len(t, got, 4)
	require.Equal(t, []string{"i1"}, itemIDs(got[0]))
	require.Equal(t, []string{"i2", "i5"}, itemIDs(got[2]))
	require.Equal(t, "Drinks", got[2].Items[0].Category)

	require.Equal(t, UncategorizedName, got[3].Category)
	require.Equal(t, []string{"i4"}, itemIDs(got[3]))
	require.Equal(t, UncategorizedName, got[3].Items[0].Category)
}

func TestReconstructDropsDuplicateCategories(t *testing.T) {
	menu := sampleMenu()
	menu = append(menu, Category{ID: "c9", Category: "thali ", Icon: "x"}, Category{ID: "c2", Category: "Desserts"})

	got := Reconstruct(menu, Flatten(menu))
	require.Len(t, got, 3)
	require.Equal(t, "🍛", got[0].Icon)
}

func TestReconstructReusesExistingUncategorized(t *testing.T) {
	menu := []Category{{ID: "u", Category: "uncategorized"}}
	got := Reconstruct(menu, []Item{{ID: "x", Name: "Lost", Category: "Gone"}})
	require.Len(t, got, 1)
	require.Equal(t, []string{"x"}, itemIDs(got[0]))
}

func itemIDs(c Category) []string {
	out := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it.ID)
	}
	return out
}
