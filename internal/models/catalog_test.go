package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func testCategories() []Category {
	return []Category{
		{Title: "Beer & cider", Drinks: []Drink{
			{DrinkID: "lager-1", Title: "Lager", Abv: 4.0},
			{DrinkID: "beer-1", Title: "Beer", Abv: 5.0},
		}},
		{Title: "Wine", Drinks: []Drink{
			{DrinkID: "wine-1", Title: "Red wine", Abv: 13.0},
		}},
	}
}

func TestMergeCatalogStandardWinsOverCustom(t *testing.T) {
	custom := []Drink{
		{DrinkID: "lager-1", Title: "My lager", Abv: 4.8},
		{DrinkID: "custom-1", Title: "Strong lager", Abv: 7.2, DerivedDrinkID: "lager-1"},
	}
	c := MergeCatalog(testCategories(), custom, catalogNow)

	require.Len(t, c.Custom, 1)
	assert.Equal(t, "custom-1", c.Custom[0].DrinkID)

	d, ok := c.DrinkByID("lager-1")
	require.True(t, ok)
	assert.Equal(t, "Lager", d.Title)
}

func TestMergeCatalogDedupsCustomById(t *testing.T) {
	custom := []Drink{
		{DrinkID: "custom-1", Title: "First", Abv: 6.0},
		{DrinkID: "custom-1", Title: "Duplicate", Abv: 6.5},
	}
	c := MergeCatalog(testCategories(), custom, catalogNow)
	require.Len(t, c.Custom, 1)
	assert.Equal(t, "First", c.Custom[0].Title)
}

func TestDefaultAbvFollowsDerivedChain(t *testing.T) {
	c := MergeCatalog(testCategories(), []Drink{
		{DrinkID: "custom-1", Title: "Strong lager", Abv: 7.2, DerivedDrinkID: "lager-1"},
	}, catalogNow)

	abv, ok := c.DefaultAbv("custom-1")
	require.True(t, ok)
	assert.Equal(t, 4.0, abv)

	abv, ok = c.DefaultAbv("wine-1")
	require.True(t, ok)
	assert.Equal(t, 13.0, abv)

	_, ok = c.DefaultAbv("unknown")
	assert.False(t, ok)
}

func TestWithCustomReplacesSameId(t *testing.T) {
	c := MergeCatalog(testCategories(), nil, catalogNow)
	c = c.WithCustom(Drink{DrinkID: "custom-1", Title: "v1", Abv: 6.0})
	c = c.WithCustom(Drink{DrinkID: "custom-1", Title: "v2", Abv: 6.5})

	require.Len(t, c.Custom, 1)
	assert.Equal(t, "v2", c.Custom[0].Title)
}

func TestCatalogStale(t *testing.T) {
	var nilCatalog *DrinkCatalog
	assert.True(t, nilCatalog.Stale(catalogNow, 6*time.Hour))

	fresh := &DrinkCatalog{FetchedAt: catalogNow.Add(-time.Hour)}
	assert.False(t, fresh.Stale(catalogNow, 6*time.Hour))

	old := &DrinkCatalog{FetchedAt: catalogNow.Add(-7 * time.Hour)}
	assert.True(t, old.Stale(catalogNow, 6*time.Hour))
}
