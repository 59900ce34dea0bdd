package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ShopItem is one purchasable entry.
type ShopItem struct {
	Name string `yaml:"name"`
	Item string `yaml:"item"`
	Cost Bundle `yaml:"cost"`
}

// Shop holds the ordered item list of one shop.
type Shop struct {
	ID    string
	Items []ShopItem
}

// ShopTable holds all shops indexed by id.
type ShopTable struct {
	shops map[string]*Shop
}

// Get returns a shop by id, or nil if not found.
func (t *ShopTable) Get(id string) *Shop {
	return t.shops[id]
}

// Count returns the number of shops loaded.
func (t *ShopTable) Count() int {
	return len(t.shops)
}

type shopListFile struct {
	Shops map[string][]ShopItem `yaml:"shops"`
}

// LoadShopTable parses shop_list.yaml.
func LoadShopTable(raw []byte) (*ShopTable, error) {
	var f shopListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse shop_list: %w", err)
	}
	t := &ShopTable{shops: make(map[string]*Shop, len(f.Shops))}
	for id, items := range f.Shops {
		for _, it := range items {
			if it.Item == "" || len(it.Cost) == 0 {
				return nil, fmt.Errorf("shop %s: item %q needs an item type and a cost", id, it.Name)
			}
		}
		t.shops[id] = &Shop{ID: id, Items: items}
	}
	return t, nil
}
