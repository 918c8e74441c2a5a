package mcpserver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lewisedginton/local_places/internal/places"
)

// num renders a float the way JSON does, with no trailing ".0".
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPlace renders one place as a readable text card.
func formatPlace(p *places.Place) string {
	price := p.PriceLevel
	if price < 1 {
		price = 1
	}
	stars := strings.Repeat("★", int(math.Round(p.Rating)))

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== %s ===\n", p.Name)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Rating: %s/5 %s\n", num(p.Rating), stars)
	fmt.Fprintf(&b, "Price: %s\n", strings.Repeat("$", price))

	if p.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", *p.Description)
	}
	if p.Address != nil {
		fmt.Fprintf(&b, "Address: %s\n", *p.Address)
	}
	if p.Hours != nil {
		fmt.Fprintf(&b, "Hours: %s\n", *p.Hours)
	}
	if p.Phone != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *p.Phone)
	}
	if p.Website != nil {
		fmt.Fprintf(&b, "Website: %s\n", *p.Website)
	}
	if len(p.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities: %s\n", strings.Join(p.Amenities, ", "))
	}

	fmt.Fprintf(&b, "Location: %s, %s\n", num(p.Latitude), num(p.Longitude))

	return b.String()
}

// formatSearchResults renders a numbered search listing with addresses.
func formatSearchResults(found []places.Place) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Found %d places ===\n", len(found))
	for i, p := range found {
		fmt.Fprintf(&b, "\n%d. %s (%s) - %s★", i+1, p.Name, p.Category, num(p.Rating))
		if p.Address != nil {
			fmt.Fprintf(&b, " - %s", *p.Address)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatNearbyResults renders a numbered listing for a radius search.
func formatNearbyResults(found []places.Place, radiusKm float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== %d places within %skm ===\n", len(found), num(radiusKm))
	for i, p := range found {
		fmt.Fprintf(&b, "\n%d. %s (%s) - %s★\n", i+1, p.Name, p.Category, num(p.Rating))
	}
	return b.String()
}

// formatNameResults renders a numbered listing for a name search.
func formatNameResults(found []places.Place, term string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Search results for %q ===\n", term)
	for i, p := range found {
		fmt.Fprintf(&b, "\n%d. %s (%s) - %s★\n", i+1, p.Name, p.Category, num(p.Rating))
	}
	return b.String()
}

// formatStatistics renders per-category aggregates.
func formatStatistics(stats []places.CategoryStats) string {
	var b strings.Builder
	b.WriteString("\n=== Place Statistics ===\n\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(s.Category))
		fmt.Fprintf(&b, "  • Total: %d places\n", s.Count)
		fmt.Fprintf(&b, "  • Avg Rating: %s/5\n", num(s.AvgRating))
		fmt.Fprintf(&b, "  • Avg Price: %s\n\n", strings.Repeat("$", int(math.Round(s.AvgPriceLevel))))
	}
	return b.String()
}
