// Package catalog holds the item types the market can trade, loaded from a
// YAML file.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

type itemDef struct {
	ID        uint16 `yaml:"id"`
	Name      string `yaml:"name"`
	Stackable bool   `yaml:"stackable"`
	Charges   int    `yaml:"charges"`
}

type file struct {
	Items []itemDef `yaml:"items"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	byID  map[uint16]game.ItemType
	items searchItems
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("item catalog: %w", err)
	}

	c := &Catalog{byID: make(map[uint16]game.ItemType, len(f.Items))}
	for _, def := range f.Items {
		if def.ID == 0 {
			return nil, fmt.Errorf("item catalog: item %q has no id", def.Name)
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("item catalog: duplicate item id %d", def.ID)
		}
		if def.Charges < 0 {
			return nil, fmt.Errorf("item catalog: item %d has negative charges", def.ID)
		}
		it := game.ItemType{
			ID:        def.ID,
			Name:      def.Name,
			Stackable: def.Stackable,
			Charges:   def.Charges,
		}
		c.byID[def.ID] = it
		c.items = append(c.items, it)
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].ID < c.items[j].ID })
	return c, nil
}

// ItemType implements game.ItemTypes.
func (c *Catalog) ItemType(id uint16) (game.ItemType, bool) {
	it, ok := c.byID[id]
	return it, ok
}

func (c *Catalog) Len() int {
	return len(c.byID)
}

// searchItems implements fuzzy.Source
type searchItems []game.ItemType

func (s searchItems) Len() int {
	return len(s)
}

func (s searchItems) String(i int) string {
	return strings.ToLower(s[i].Name)
}

// Search returns up to limit item types whose name fuzzily matches query,
// best match first. A non-positive limit returns every match.
func (c *Catalog) Search(query string, limit int) []game.ItemType {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, c.items)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]game.ItemType, 0, len(matches))
	for _, m := range matches {
		result = append(result, c.items[m.Index])
	}
	return result
}
