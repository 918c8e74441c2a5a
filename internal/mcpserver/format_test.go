package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lewisedginton/local_places/internal/places"
)

func strPtr(s string) *string { return &s }

func samplePlace() *places.Place {
	return &places.Place{
		ID:          7,
		Name:        "Blue Bottle Coffee",
		Category:    places.CategoryCafe,
		Latitude:    37.7763,
		Longitude:   -122.4233,
		Rating:      4.6,
		PriceLevel:  2,
		Description: strPtr("Minimalist cafe"),
		Amenities:   []string{"wifi", "outdoor_seating"},
		Address:     strPtr("315 Linden St"),
	}
}

func TestFormatPlace(t *testing.T) {
	got := formatPlace(samplePlace())

	assert.Contains(t, got, "=== Blue Bottle Coffee ===")
	assert.Contains(t, got, "Category: cafe\n")
	assert.Contains(t, got, "Rating: 4.6/5 ★★★★★\n")
	assert.Contains(t, got, "Price: $$\n")
	assert.Contains(t, got, "Description: Minimalist cafe\n")
	assert.Contains(t, got, "Address: 315 Linden St\n")
	assert.Contains(t, got, "Amenities: wifi, outdoor_seating\n")
	assert.Contains(t, got, "Location: 37.7763, -122.4233\n")
	assert.NotContains(t, got, "Phone:")
	assert.NotContains(t, got, "Website:")
	assert.NotContains(t, got, "Hours:")
}

func TestFormatPlaceZeroPriceRendersSingleSymbol(t *testing.T) {
	p := samplePlace()
	p.PriceLevel = 0
	p.Rating = 0

	got := formatPlace(p)

	assert.Contains(t, got, "Price: $\n")
	assert.Contains(t, got, "Rating: 0/5 \n")
}

func TestFormatSearchResults(t *testing.T) {
	found := []places.Place{
		*samplePlace(),
		{Name: "Dolores Park", Category: places.CategoryPark, Rating: 4.7},
	}

	got := formatSearchResults(found)

	assert.Contains(t, got, "=== Found 2 places ===")
	assert.Contains(t, got, "1. Blue Bottle Coffee (cafe) - 4.6★ - 315 Linden St\n")
	assert.Contains(t, got, "2. Dolores Park (park) - 4.7★\n")
}

func TestFormatNearbyResults(t *testing.T) {
	found := []places.Place{{Name: "Ritual Coffee", Category: places.CategoryCafe, Rating: 4.4}}

	got := formatNearbyResults(found, 2.5)

	assert.Contains(t, got, "=== 1 places within 2.5km ===")
	assert.Contains(t, got, "1. Ritual Coffee (cafe) - 4.4★\n")
}

func TestFormatNameResults(t *testing.T) {
	found := []places.Place{{Name: "Green Apple Books", Category: places.CategoryBookstore, Rating: 4.8}}

	got := formatNameResults(found, "apple")

	assert.Contains(t, got, `=== Search results for "apple" ===`)
	assert.Contains(t, got, "1. Green Apple Books (bookstore) - 4.8★\n")
}

func TestFormatStatistics(t *testing.T) {
	stats := []places.CategoryStats{
		{Category: "cafe", Count: 3, AvgRating: 4.53, AvgPriceLevel: 1.67},
	}

	got := formatStatistics(stats)

	assert.Contains(t, got, "=== Place Statistics ===")
	assert.Contains(t, got, "CAFE:\n")
	assert.Contains(t, got, "  • Total: 3 places\n")
	assert.Contains(t, got, "  • Avg Rating: 4.53/5\n")
	assert.Contains(t, got, "  • Avg Price: $$\n")
}
