// Package menu manages the category-grouped menu document.
package menu

import (
	"strings"
)

// Uncategorized collects items whose category no longer exists.
const (
	UncategorizedID   = "uncategorized"
	UncategorizedName = "Uncategorized"
)

// Item is a dish on the menu. Category names the owning category.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Price       float64 `json:"price" validate:"gte=0,lte=100000"`
	IsAvailable bool    `json:"isAvailable"`
	ImageURL    string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Category    string  `json:"category"`
}

// Category groups items and carries display metadata.
type Category struct {
	ID          string `json:"id"`
	Category    string `json:"category" validate:"required,max=80"`
	Icon        string `json:"icon,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Items       []Item `json:"items" validate:"dive"`
}

// Flatten lists every item with its category name filled in, in menu order.
func Flatten(categories []Category) []Item {
	var out []Item
	for _, c := range categories {
		for _, it := range c.Items {
			it.Category = c.Category
			out = append(out, it)
		}
	}
	if out == nil {
		out = []Item{}
	}
	return out
}

func matchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Reconstruct regroups a flat item list under categories. Category metadata
// comes from categories; their nested items are ignored. Items match a
// category by ID or name, case-insensitively. Categories sharing an ID or
// name are kept once. Items matching no category go to an Uncategorized
// category appended at the end.
func Reconstruct(categories []Category, items []Item) []Category {
	out := make([]Category, 0, len(categories)+1)
	index := map[string]int{}
	for _, c := range categories {
		idKey, nameKey := matchKey(c.ID), matchKey(c.Category)
		if _, dup := index["id:"+idKey]; dup && idKey != "" {
			continue
		}
		if _, dup := index["name:"+nameKey]; dup {
			continue
		}
		c.Items = []Item{}
		out = append(out, c)
		if idKey != "" {
			index["id:"+idKey] = len(out) - 1
		}
		index["name:"+nameKey] = len(out) - 1
	}

	var orphans []Item
	for _, it := range items {
		key := matchKey(it.Category)
		pos, ok := index["name:"+key]
		if !ok {
			pos, ok = index["id:"+key]
		}
		if !ok || key == "" {
			orphans = append(orphans, it)
			continue
		}
		it.Category = out[pos].Category
		out[pos].Items = append(out[pos].Items, it)
	}

	if len(orphans) > 0 {
		pos, ok := index["name:"+matchKey(UncategorizedName)]
		if !ok {
			out = append(out, Category{ID: UncategorizedID, Category: UncategorizedName, Items: []Item{}})
			pos = len(out) - 1
		}
		for _, it := range orphans {
			it.Category = out[pos].Category
			out[pos].Items = append(out[pos].Items, it)
		}
	}
	return out
}
