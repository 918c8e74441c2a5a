package mcpserver

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lewisedginton/local_places/internal/places"
	"github.com/lewisedginton/local_places/internal/tools"
	"github.com/lewisedginton/local_places/pkg/logger"
)

const (
	serverName    = "local-places-server"
	serverVersion = "1.0.0"
)

// Server exposes the places catalogue to MCP clients over stdio. It serves
// the same tool set as the chat bridge but renders results as text rather
// than JSON payloads.
type Server struct {
	store places.Store
	log   logger.Logger
	mcp   *mcp.Server
}

// New builds a stdio MCP server backed by the given store.
func New(store places.Store, log logger.Logger) *Server {
	s := &Server{store: store, log: log}
	srv := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.registerTools(srv)
	s.mcp = srv
	return s
}

// Run serves MCP requests on stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("MCP server listening on stdio", logger.StringField("server", serverName))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools(srv *mcp.Server) {
	decls := make(map[string]tools.Declaration)
	for _, d := range tools.Declarations() {
		decls[d.Name] = d
	}

	tool := func(name string) *mcp.Tool {
		d := decls[name]
		return &mcp.Tool{Name: d.Name, Description: d.Description, InputSchema: schemaOf(d)}
	}

	mcp.AddTool(srv, tool(tools.ToolSearchPlaces), s.searchPlaces)
	mcp.AddTool(srv, tool(tools.ToolGetPlaceDetails), s.getPlaceDetails)
	mcp.AddTool(srv, tool(tools.ToolAddPlace), s.addPlace)
	mcp.AddTool(srv, tool(tools.ToolUpdatePlace), s.updatePlace)
	mcp.AddTool(srv, tool(tools.ToolDeletePlace), s.deletePlace)
	mcp.AddTool(srv, tool(tools.ToolGetStatistics), s.getStatistics)
	mcp.AddTool(srv, tool(tools.ToolPlacesNearby), s.placesNearby)
	mcp.AddTool(srv, tool(tools.ToolSearchByName), s.searchByName)
}

// schemaOf translates a tool declaration into the wire JSON schema.
func schemaOf(d tools.Declaration) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(d.Properties))
	for name, p := range d.Properties {
		props[name] = propertySchema(p)
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: d.Required}
}

func propertySchema(p tools.Property) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: p.Type, Description: p.Description}
	for _, v := range p.Enum {
		s.Enum = append(s.Enum, v)
	}
	if p.Items != nil {
		s.Items = propertySchema(*p.Items)
	}
	return s
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *Server) errorResult(name string, err error) *mcp.CallToolResult {
	s.log.Error("tool execution failed", logger.ToolField(name), logger.ErrorField(err))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error executing %s: %s", name, err)}},
		IsError: true,
	}
}

// Numeric arguments use float64 throughout. Clients occasionally emit
// integral numbers with a fraction part, which encoding/json refuses to
// place into int fields.

type searchArgs struct {
	Category      string  `json:"category,omitempty"`
	MinRating     float64 `json:"minRating,omitempty"`
	MaxPriceLevel float64 `json:"maxPriceLevel,omitempty"`
	Location      string  `json:"location,omitempty"`
	Limit         float64 `json:"limit,omitempty"`
}

func (s *Server) searchPlaces(ctx context.Context, _ *mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, any, error) {
	found, err := s.store.Search(ctx, places.SearchFilter{
		Category:      places.Category(args.Category),
		MinRating:     args.MinRating,
		MaxPriceLevel: int(args.MaxPriceLevel),
		Location:      args.Location,
		Limit:         int(args.Limit),
	})
	if err != nil {
		return s.errorResult(tools.ToolSearchPlaces, err), nil, nil
	}
	if len(found) == 0 {
		return textResult("No places found matching criteria."), nil, nil
	}
	return textResult(formatSearchResults(found)), nil, nil
}

type idArgs struct {
	ID float64 `json:"id"`
}

func (s *Server) getPlaceDetails(ctx context.Context, _ *mcp.CallToolRequest, args idArgs) (*mcp.CallToolResult, any, error) {
	place, err := s.store.GetByID(ctx, int64(args.ID))
	if err != nil {
		return s.errorResult(tools.ToolGetPlaceDetails, err), nil, nil
	}
	if place == nil {
		return textResult(fmt.Sprintf("Place with ID %d not found.", int64(args.ID))), nil, nil
	}
	return textResult(formatPlace(place)), nil, nil
}

type addArgs struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      float64  `json:"rating,omitempty"`
	PriceLevel  float64  `json:"price_level,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Hours       *string  `json:"hours,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
}

func (s *Server) addPlace(ctx context.Context, _ *mcp.CallToolRequest, args addArgs) (*mcp.CallToolResult, any, error) {
	place := places.NewPlace{
		Name:        args.Name,
		Category:    places.Category(args.Category),
		Latitude:    args.Latitude,
		Longitude:   args.Longitude,
		Rating:      args.Rating,
		PriceLevel:  int(args.PriceLevel),
		Description: args.Description,
		Amenities:   args.Amenities,
		Hours:       args.Hours,
		Address:     args.Address,
		Phone:       args.Phone,
		Website:     args.Website,
	}
	if err := place.Validate(); err != nil {
		return s.errorResult(tools.ToolAddPlace, err), nil, nil
	}
	created, err := s.store.Add(ctx, place)
	if err != nil {
		return s.errorResult(tools.ToolAddPlace, err), nil, nil
	}
	return textResult(fmt.Sprintf("✅ Successfully added %q!\n%s", created.Name, formatPlace(created))), nil, nil
}

type updateArgs struct {
	ID          float64  `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PriceLevel  *float64 `json:"price_level,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Hours       *string  `json:"hours,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
}

func (a updateArgs) patch() places.PlacePatch {
	var p places.PlacePatch
	if a.Name != nil {
		p.Name = places.Some(*a.Name)
	}
	if a.Category != nil {
		p.Category = places.Some(places.Category(*a.Category))
	}
	if a.Latitude != nil {
		p.Latitude = places.Some(*a.Latitude)
	}
	if a.Longitude != nil {
		p.Longitude = places.Some(*a.Longitude)
	}
	if a.Rating != nil {
		p.Rating = places.Some(*a.Rating)
	}
	if a.PriceLevel != nil {
		p.PriceLevel = places.Some(int(*a.PriceLevel))
	}
	if a.Description != nil {
		p.Description = places.Some(*a.Description)
	}
	if a.Amenities != nil {
		p.Amenities = places.Some(a.Amenities)
	}
	if a.Hours != nil {
		p.Hours = places.Some(*a.Hours)
	}
	if a.Address != nil {
		p.Address = places.Some(*a.Address)
	}
	if a.Phone != nil {
		p.Phone = places.Some(*a.Phone)
	}
	if a.Website != nil {
		p.Website = places.Some(*a.Website)
	}
	return p
}

func (s *Server) updatePlace(ctx context.Context, _ *mcp.CallToolRequest, args updateArgs) (*mcp.CallToolResult, any, error) {
	patch := args.patch()
	if err := patch.Validate(); err != nil {
		return s.errorResult(tools.ToolUpdatePlace, err), nil, nil
	}
	place, err := s.store.Update(ctx, int64(args.ID), patch)
	if err != nil {
		return s.errorResult(tools.ToolUpdatePlace, err), nil, nil
	}
	if place == nil {
		return textResult(fmt.Sprintf("Place with ID %d not found.", int64(args.ID))), nil, nil
	}
	return textResult(fmt.Sprintf("✅ Successfully updated %q!\n%s", place.Name, formatPlace(place))), nil, nil
}

func (s *Server) deletePlace(ctx context.Context, _ *mcp.CallToolRequest, args idArgs) (*mcp.CallToolResult, any, error) {
	deleted, err := s.store.Delete(ctx, int64(args.ID))
	if err != nil {
		return s.errorResult(tools.ToolDeletePlace, err), nil, nil
	}
	if !deleted {
		return textResult(fmt.Sprintf("Place with ID %d not found.", int64(args.ID))), nil, nil
	}
	return textResult(fmt.Sprintf("✅ Successfully deleted place ID %d.", int64(args.ID))), nil, nil
}

type statisticsArgs struct {
	Category string `json:"category,omitempty"`
}

func (s *Server) getStatistics(ctx context.Context, _ *mcp.CallToolRequest, args statisticsArgs) (*mcp.CallToolResult, any, error) {
	stats, err := s.store.Statistics(ctx, places.Category(args.Category))
	if err != nil {
		return s.errorResult(tools.ToolGetStatistics, err), nil, nil
	}
	if len(stats) == 0 {
		return textResult("No statistics available."), nil, nil
	}
	return textResult(formatStatistics(stats)), nil, nil
}

type nearbyArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radiusKm"`
	Category  string  `json:"category,omitempty"`
	Limit     float64 `json:"limit,omitempty"`
}

func (s *Server) placesNearby(ctx context.Context, _ *mcp.CallToolRequest, args nearbyArgs) (*mcp.CallToolResult, any, error) {
	found, err := s.store.Nearby(ctx, args.Latitude, args.Longitude, args.RadiusKm,
		places.Category(args.Category), int(args.Limit))
	if err != nil {
		return s.errorResult(tools.ToolPlacesNearby, err), nil, nil
	}
	if len(found) == 0 {
		msg := fmt.Sprintf("No places found within %skm of (%s, %s).",
			num(args.RadiusKm), num(args.Latitude), num(args.Longitude))
		return textResult(msg), nil, nil
	}
	return textResult(formatNearbyResults(found, args.RadiusKm)), nil, nil
}

type nameArgs struct {
	SearchTerm string  `json:"searchTerm"`
	Limit      float64 `json:"limit,omitempty"`
}

func (s *Server) searchByName(ctx context.Context, _ *mcp.CallToolRequest, args nameArgs) (*mcp.CallToolResult, any, error) {
	found, err := s.store.SearchByName(ctx, args.SearchTerm, int(args.Limit))
	if err != nil {
		return s.errorResult(tools.ToolSearchByName, err), nil, nil
	}
	if len(found) == 0 {
		return textResult(fmt.Sprintf("No places found matching %q.", args.SearchTerm)), nil, nil
	}
	return textResult(formatNameResults(found, args.SearchTerm)), nil, nil
}
