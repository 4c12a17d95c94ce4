// Package catalog models the restaurant listing the dashboard browses.
// Filtering, search and sort all happen client-side; the upstream list
// endpoint is unfiltered.
package catalog

import (
	"sort"
	"strings"
	"time"
)

// Cuisine is one of the fixed cuisine tags the API uses.
type Cuisine string

const (
	CuisineMeat     Cuisine = "MEAT"
	CuisineVegan    Cuisine = "VEGAN"
	CuisineJapanese Cuisine = "JAPANESE"
	CuisineItalian  Cuisine = "ITALIAN"
	CuisineIndian   Cuisine = "INDIAN"
	CuisineMexican  Cuisine = "MEXICAN"
	CuisineChinese  Cuisine = "CHINESE"
)

// Cuisines returns the known tags in display order.
func Cuisines() []Cuisine {
	return []Cuisine{
		CuisineMeat, CuisineVegan, CuisineJapanese, CuisineItalian,
		CuisineIndian, CuisineMexican, CuisineChinese,
	}
}

// ParseCuisine maps user input onto a known tag.
func ParseCuisine(s string) (Cuisine, bool) {
	c := Cuisine(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Cuisines() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Point is the GeoJSON-style location the API attaches to a restaurant.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Restaurant mirrors the upstream restaurant resource.
type Restaurant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CuisineTypes []Cuisine `json:"cuisineType"`
	Location     Point     `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasCuisine reports whether the restaurant carries the tag.
func (r Restaurant) HasCuisine(c Cuisine) bool {
	for _, have := range r.CuisineTypes {
		if have == c {
			return true
		}
	}
	return false
}

// SortOrder picks how a filtered listing is ordered.
type SortOrder string

const (
	SortByName SortOrder = "name"
	SortNewest SortOrder = "newest"
)

// Filter narrows a listing. Zero value matches everything.
type Filter struct {
	// Query is matched case-insensitively against name and description.
	Query string

	// Cuisines keeps restaurants carrying at least one selected tag.
	Cuisines []Cuisine
}

// Match reports whether the restaurant passes the filter.
func (f Filter) Match(r Restaurant) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(r.Name)
		desc := strings.ToLower(r.Description)
		if !strings.Contains(name, q) && !strings.Contains(desc, q) {
			return false
		}
	}
	if len(f.Cuisines) == 0 {
		return true
	}
	for _, c := range f.Cuisines {
		if r.HasCuisine(c) {
			return true
		}
	}
	return false
}

// Apply filters and sorts a listing without mutating the input.
func Apply(restaurants []Restaurant, f Filter, order SortOrder) []Restaurant {
	out := make([]Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	switch order {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}
