package models

import "time"

// Drink is a catalog entry, either a standard drink from the generic
// catalog or a user's custom drink derived from one.
type Drink struct {
	DrinkID        string  `json:"drinkId"`
	Title          string  `json:"title"`
	Abv            float64 `json:"abv"`
	DerivedDrinkID string  `json:"derivedDrinkId,omitempty"`
}

// Category groups standard drinks the way the generic catalog does.
type Category struct {
	Title  string  `json:"title"`
	Drinks []Drink `json:"drinks"`
}

// DrinkCatalog is the per-account drink lookup table. Standard drinks
// come from the generic catalog, custom drinks from the account itself.
type DrinkCatalog struct {
	Standard  []Category `json:"standard"`
	Custom    []Drink    `json:"custom,omitempty"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// Stale reports whether the catalog is older than maxAge.
func (c *DrinkCatalog) Stale(now time.Time, maxAge time.Duration) bool {
	if c == nil {
		return true
	}
	return now.Sub(c.FetchedAt) > maxAge
}

// DrinkByID looks up a drink by id, standard entries first, then custom.
func (c *DrinkCatalog) DrinkByID(id string) (Drink, bool) {
	if c == nil {
		return Drink{}, false
	}
	for _, cat := range c.Standard {
		for _, d := range cat.Drinks {
			if d.DrinkID == id {
				return d, true
			}
		}
	}
	for _, d := range c.Custom {
		if d.DrinkID == id {
			return d, true
		}
	}
	return Drink{}, false
}

// DefaultAbv returns the catalog ABV for a drink id. For a custom drink
// the chain is followed to its base drink so the comparison is always
// against the standard strength.
func (c *DrinkCatalog) DefaultAbv(id string) (float64, bool) {
	d, ok := c.DrinkByID(id)
	if !ok {
		return 0, false
	}
	if d.DerivedDrinkID != "" {
		if base, ok := c.DrinkByID(d.DerivedDrinkID); ok {
			return base.Abv, true
		}
	}
	return d.Abv, true
}

// WithCustom returns a copy of the catalog with the given custom drink
// added, replacing any existing custom entry with the same id.
func (c *DrinkCatalog) WithCustom(d Drink) *DrinkCatalog {
	out := &DrinkCatalog{FetchedAt: time.Now()}
	if c != nil {
		out.Standard = c.Standard
		out.FetchedAt = c.FetchedAt
		for _, existing := range c.Custom {
			if existing.DrinkID != d.DrinkID {
				out.Custom = append(out.Custom, existing)
			}
		}
	}
	out.Custom = append(out.Custom, d)
	return out
}

// MergeCatalog combines the generic categories with custom drinks from
// the account search. Standard entries win over custom ones with the
// same id, and duplicate custom ids are dropped, first occurrence kept.
func MergeCatalog(standard []Category, custom []Drink, fetchedAt time.Time) *DrinkCatalog {
	out := &DrinkCatalog{Standard: standard, FetchedAt: fetchedAt}
	seen := make(map[string]bool)
	for _, cat := range standard {
		for _, d := range cat.Drinks {
			seen[d.DrinkID] = true
		}
	}
	for _, d := range custom {
		if seen[d.DrinkID] {
			continue
		}
		seen[d.DrinkID] = true
		out.Custom = append(out.Custom, d)
	}
	return out
}
