package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a sellable item with a fixed unit price.
type MenuItem struct {
	Name  string `yaml:"name"  json:"name"`
	Price int64  `yaml:"price" json:"price"`
}

// ParseMenuValue parses the "name|price" encoding used by the menu select.
func ParseMenuValue(v string) (MenuItem, error) {
	name, priceStr, ok := strings.Cut(v, "|")
	if !ok {
		return MenuItem{}, fmt.Errorf("menu value %q: missing price", v)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return MenuItem{}, fmt.Errorf("menu value %q: empty name", v)
	}
	price, err := strconv.ParseInt(strings.TrimSpace(priceStr), 10, 64)
	if err != nil || price < 0 {
		return MenuItem{}, fmt.Errorf("menu value %q: invalid price", v)
	}
	return MenuItem{Name: name, Price: price}, nil
}

func (m MenuItem) String() string {
	return fmt.Sprintf("%s|%d", m.Name, m.Price)
}

// Menu is an ordered list of items.
type Menu []MenuItem

// Lookup finds an item by name, ignoring case.
func (m Menu) Lookup(name string) (MenuItem, bool) {
	for _, it := range m {
		if strings.EqualFold(it.Name, strings.TrimSpace(name)) {
			return it, true
		}
	}
	return MenuItem{}, false
}

// Resolve accepts a configured item name or a "name|price" value.
func (m Menu) Resolve(v string) (MenuItem, error) {
	if strings.Contains(v, "|") {
		return ParseMenuValue(v)
	}
	if it, ok := m.Lookup(v); ok {
		return it, nil
	}
	return MenuItem{}, &ValidationError{Field: "nama", Reason: fmt.Sprintf("%q is not on the menu", strings.TrimSpace(v))}
}
