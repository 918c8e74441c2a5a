package tools

import "github.com/lewisedginton/local_places/internal/places"

// Tool names exposed to the model and over MCP.
const (
	ToolSearchPlaces    = "search_places"
	ToolGetPlaceDetails = "get_place_details"
	ToolAddPlace        = "add_place"
	ToolUpdatePlace     = "update_place"
	ToolDeletePlace     = "delete_place"
	ToolGetStatistics   = "get_statistics"
	ToolPlacesNearby    = "places_nearby"
	ToolSearchByName    = "search_by_name"
)

// Property is a provider-neutral JSON schema property. Providers translate
// it into their own schema types.
type Property struct {
	Type        string
	Description string
	Enum        []string
	Items       *Property
}

// Declaration describes one callable tool.
type Declaration struct {
	Name        string
	Description string
	Properties  map[string]Property
	Required    []string
}

func categoryEnum() []string {
	values := make([]string, 0, len(places.Categories))
	for _, c := range places.Categories {
		values = append(values, string(c))
	}
	return values
}

// Declarations lists every tool in its published order.
func Declarations() []Declaration {
	category := Property{Type: "string", Enum: categoryEnum(), Description: "Filter by category"}

	return []Declaration{
		{
			Name:        ToolSearchPlaces,
			Description: "Search for places with optional filters like category, rating, price level, or location. Use this when users ask about finding places in a specific city or area.",
			Properties: map[string]Property{
				"category":      category,
				"minRating":     {Type: "number", Description: "Minimum rating (0-5)"},
				"maxPriceLevel": {Type: "number", Description: "Maximum price level (1-3)"},
				"location":      {Type: "string", Description: `Filter by city or location name (e.g., "Chicago", "New York", "San Francisco"). Searches in the address field.`},
				"limit":         {Type: "number", Description: "Maximum results"},
			},
		},
		{
			Name:        ToolGetPlaceDetails,
			Description: "Get full details for a specific place by ID.",
			Properties: map[string]Property{
				"id": {Type: "number", Description: "Place ID"},
			},
			Required: []string{"id"},
		},
		{
			Name:        ToolAddPlace,
			Description: "Add a new place to the database. Use when user wants to create or add a new location.",
			Properties: map[string]Property{
				"name":        {Type: "string", Description: "Place name"},
				"category":    {Type: "string", Enum: categoryEnum(), Description: "Place category"},
				"latitude":    {Type: "number", Description: "Latitude"},
				"longitude":   {Type: "number", Description: "Longitude"},
				"rating":      {Type: "number", Description: "Rating (0-5, optional)"},
				"price_level": {Type: "number", Description: "Price level (1-3, optional)"},
				"description": {Type: "string", Description: "Description (optional)"},
				"amenities":   {Type: "array", Items: &Property{Type: "string"}, Description: "Amenities array (optional)"},
				"hours":       {Type: "string", Description: "Business hours (optional)"},
				"address":     {Type: "string", Description: "Address (optional)"},
				"phone":       {Type: "string", Description: "Phone (optional)"},
				"website":     {Type: "string", Description: "Website (optional)"},
			},
			Required: []string{"name", "category", "latitude", "longitude"},
		},
		{
			Name:        ToolUpdatePlace,
			Description: "Update an existing place. Use when user wants to modify or edit place information.",
			Properties: map[string]Property{
				"id":          {Type: "number", Description: "Place ID to update"},
				"name":        {Type: "string"},
				"category":    {Type: "string", Enum: categoryEnum()},
				"latitude":    {Type: "number"},
				"longitude":   {Type: "number"},
				"rating":      {Type: "number"},
				"price_level": {Type: "number"},
				"description": {Type: "string"},
				"amenities":   {Type: "array", Items: &Property{Type: "string"}},
				"hours":       {Type: "string"},
				"address":     {Type: "string"},
				"phone":       {Type: "string"},
				"website":     {Type: "string"},
			},
			Required: []string{"id"},
		},
		{
			Name:        ToolDeletePlace,
			Description: "Delete a place from the database. Use when user wants to remove a location.",
			Properties: map[string]Property{
				"id": {Type: "number", Description: "Place ID to delete"},
			},
			Required: []string{"id"},
		},
		{
			Name:        ToolGetStatistics,
			Description: "Get statistics about places including counts and averages by category.",
			Properties: map[string]Property{
				"category": {Type: "string", Enum: categoryEnum(), Description: "Filter by category (optional)"},
			},
		},
		{
			Name:        ToolPlacesNearby,
			Description: "Find places within a certain distance of coordinates.",
			Properties: map[string]Property{
				"latitude":  {Type: "number"},
				"longitude": {Type: "number"},
				"radiusKm":  {Type: "number"},
				"category":  {Type: "string", Enum: categoryEnum()},
				"limit":     {Type: "number"},
			},
			Required: []string{"latitude", "longitude", "radiusKm"},
		},
		{
			Name:        ToolSearchByName,
			Description: "Search for places by name (partial matching).",
			Properties: map[string]Property{
				"searchTerm": {Type: "string", Description: "Search term"},
				"limit":      {Type: "number", Description: "Max results"},
			},
			Required: []string{"searchTerm"},
		},
	}
}

// Names lists every tool name in published order.
func Names() []string {
	decls := Declarations()
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	return names
}
