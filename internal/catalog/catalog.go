// Package catalog loads and validates the element/compound knowledge base.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"periodic-quiz/internal/domain"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// MinItems is the smallest catalog that can back a four-choice question.
const MinItems = 4

// Default returns the catalog bundled with the binary.
func Default() (domain.Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, orders items by key and validates it.
func Parse(data []byte) (domain.Catalog, error) {
	var c domain.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].Key < c.Items[j].Key })
	if err := Validate(c); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

// Validate checks the catalog invariants: item keys are 1..N contiguous when
// ordered, codes and formulas are unique, compound parts reference known codes.
func Validate(c domain.Catalog) error {
	if len(c.Items) < MinItems {
		return fmt.Errorf("%w: %d items, need %d", domain.ErrCatalogTooSmall, len(c.Items), MinItems)
	}
	codes := make(map[string]struct{}, len(c.Items))
	for i, it := range c.Items {
		if it.Key != i+1 {
			return fmt.Errorf("%w: item %q has key %d at position %d", domain.ErrInvalidCatalog, it.Name, it.Key, i+1)
		}
		if it.Code == "" || it.Name == "" {
			return fmt.Errorf("%w: item %d has no code or name", domain.ErrInvalidCatalog, it.Key)
		}
		if _, dup := codes[it.Code]; dup {
			return fmt.Errorf("%w: duplicate code %q", domain.ErrInvalidCatalog, it.Code)
		}
		codes[it.Code] = struct{}{}
	}
	formulas := make(map[string]struct{}, len(c.Compounds))
	for _, cmp := range c.Compounds {
		if _, dup := formulas[cmp.Formula]; dup {
			return fmt.Errorf("%w: duplicate formula %q", domain.ErrInvalidCatalog, cmp.Formula)
		}
		formulas[cmp.Formula] = struct{}{}
		if len(cmp.Parts) == 0 {
			return fmt.Errorf("%w: compound %q has no parts", domain.ErrInvalidCatalog, cmp.Formula)
		}
		for _, p := range cmp.Parts {
			if _, ok := codes[p.Code]; !ok {
				return fmt.Errorf("%w: compound %q references unknown code %q", domain.ErrInvalidCatalog, cmp.Formula, p.Code)
			}
		}
	}
	return nil
}
