package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// inventoryFixture - набор изменений инвентаря.
type inventoryFixture struct {
	Changes []changeFixture `yaml:"changes"`
}

type changeFixture struct {
	Kind string        `yaml:"kind"`
	Item item.Snapshot `yaml:"item"`
}

func (f *inventoryFixture) changes() ([]packets.InventoryChange, error) {
	out := make([]packets.InventoryChange, 0, len(f.Changes))
	for i, c := range f.Changes {
		kind, err := packets.ParseChangeKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		out = append(out, packets.InventoryChange{Kind: kind, Item: c.Item})
	}
	return out, nil
}

func loadFixture(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return nil
}
