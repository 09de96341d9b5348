package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Selectors maps each listing field to the CSS selector that isolates it,
// so a portal markup change is a config change instead of a new script.
type Selectors struct {
	SearchSummary string `yaml:"search_summary"`
	Pagination    string `yaml:"pagination"`
	Card          string `yaml:"card"`
	Name          string `yaml:"name"`
	Link          string `yaml:"link"`
	Address       string `yaml:"address"`
	Price         string `yaml:"price"`
	Rooms         string `yaml:"rooms"`
	Beds          string `yaml:"beds"`
	Baths         string `yaml:"baths"`
	Size          string `yaml:"size"`
	Details       string `yaml:"details"`
	MRT           string `yaml:"mrt"`
	Agent         string `yaml:"agent"`
}

// DefaultSelectors returns the selectors for the current search-results markup.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchSummary: "span.shorten-search-summary-title",
		Pagination:    "ul.pagination",
		Card:          "div.listing-card",
		Name:          "h3 a.nav-link",
		Link:          "h3 a.nav-link",
		Address:       "span[itemprop='streetAddress']",
		Price:         "li.list-price span.price",
		Rooms:         "li.listing-rooms",
		Beds:          "span.bed",
		Baths:         "span.bath",
		Size:          "li.listing-floorarea",
		Details:       "ul.listing-property-type li span",
		MRT:           "li.listing-distance-mrt",
		Agent:         "div.listing-description",
	}
}

// LoadSelectors returns DefaultSelectors overlaid with any keys set in the
// YAML file at path. An empty path returns the defaults.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("config: read selectors %q: %w", path, err)
	}

	var override Selectors
	if err := yaml.Unmarshal(data, &override); err != nil {
		return sel, fmt.Errorf("config: parse selectors %q: %w", path, err)
	}

	merge(&sel.SearchSummary, override.SearchSummary)
	merge(&sel.Pagination, override.Pagination)
	merge(&sel.Card, override.Card)
	merge(&sel.Name, override.Name)
	merge(&sel.Link, override.Link)
	merge(&sel.Address, override.Address)
	merge(&sel.Price, override.Price)
	merge(&sel.Rooms, override.Rooms)
	merge(&sel.Beds, override.Beds)
	merge(&sel.Baths, override.Baths)
	merge(&sel.Size, override.Size)
	merge(&sel.Details, override.Details)
	merge(&sel.MRT, override.MRT)
	merge(&sel.Agent, override.Agent)
	return sel, nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
