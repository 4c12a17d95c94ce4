package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing() []Restaurant {
	day := func(d int) time.Time {
		return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	return []Restaurant{
		{ID: "1", Name: "Sakura", Description: "Omakase counter", CuisineTypes: []Cuisine{CuisineJapanese}, CreatedAt: day(3)},
		{ID: "2", Name: "La Piazza", Description: "Wood-fired pizza", CuisineTypes: []Cuisine{CuisineItalian}, CreatedAt: day(1)},
		{ID: "3", Name: "Green Bowl", Description: "Plant based comfort food", CuisineTypes: []Cuisine{CuisineVegan}, CreatedAt: day(5)},
		{ID: "4", Name: "Asado", Description: "Charcoal grill and steaks", CuisineTypes: []Cuisine{CuisineMeat, CuisineMexican}, CreatedAt: day(2)},
	}
}

func ids(rs []Restaurant) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestParseCuisine(t *testing.T) {
	c, ok := ParseCuisine("  italian ")
	require.True(t, ok)
	assert.Equal(t, CuisineItalian, c)

	_, ok = ParseCuisine("fusion")
	assert.False(t, ok)
}

func TestApplyQueryMatchesNameAndDescription(t *testing.T) {
	got := Apply(listing(), Filter{Query: "PIZZA"}, SortByName)
	assert.Equal(t, []string{"2"}, ids(got))

	got = Apply(listing(), Filter{Query: "saku"}, SortByName)
	assert.Equal(t, []string{"1"}, ids(got))

	got = Apply(listing(), Filter{Query: "nothing matches this"}, SortByName)
	assert.Empty(t, got)
}

func TestApplyCuisineAnyOf(t *testing.T) {
	got := Apply(listing(), Filter{Cuisines: []Cuisine{CuisineItalian, CuisineVegan}}, SortByName)
	assert.Equal(t, []string{"3", "2"}, ids(got))

	// A restaurant with several tags matches on any of them.
	got = Apply(listing(), Filter{Cuisines: []Cuisine{CuisineMexican}}, SortByName)
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestApplyZeroFilterMatchesAll(t *testing.T) {
	got := Apply(listing(), Filter{}, SortByName)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(got))
}

func TestApplySortNewest(t *testing.T) {
	got := Apply(listing(), Filter{}, SortNewest)
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := listing()
	Apply(in, Filter{}, SortNewest)
	assert.Equal(t, ids(listing()), ids(in))
}
