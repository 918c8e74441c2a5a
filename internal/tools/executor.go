// Package tools maps model function calls onto the place store. Every call
// produces a structured payload; failures are reported inside the payload
// so the model can react to them instead of the turn aborting.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lewisedginton/local_places/internal/places"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// Outcome is the result of one tool execution. Payload is always valid
// JSON with a boolean "success" field.
type Outcome struct {
	Success bool
	Payload json.RawMessage
}

// Executor dispatches tool calls against a place store.
type Executor struct {
	store  places.Store
	logger logger.Logger
}

// NewExecutor creates a tool executor.
func NewExecutor(store places.Store, logger logger.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger,
	}
}

// placeSummary is the trimmed row shape returned by search_places.
type placeSummary struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Category   places.Category `json:"category"`
	Rating     float64         `json:"rating"`
	PriceLevel int             `json:"price_level"`
	Address    *string         `json:"address"`
	Amenities  []string        `json:"amenities"`
}

// placeDigest is the smaller shape returned by places_nearby and
// search_by_name.
type placeDigest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category places.Category `json:"category"`
	Rating   float64         `json:"rating"`
	Address  *string         `json:"address"`
}

// Models occasionally emit integral numbers with a fraction part, so the
// numeric arguments decode as float64 and are truncated afterwards.
type searchPlacesArgs struct {
	Category      string  `json:"category"`
	MinRating     float64 `json:"minRating"`
	MaxPriceLevel float64 `json:"maxPriceLevel"`
	Location      string  `json:"location"`
	Limit         float64 `json:"limit"`
}

type placeIDArgs struct {
	ID float64 `json:"id"`
}

type statisticsArgs struct {
	Category string `json:"category"`
}

type nearbyArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radiusKm"`
	Category  string  `json:"category"`
	Limit     float64 `json:"limit"`
}

type searchByNameArgs struct {
	SearchTerm string  `json:"searchTerm"`
	Limit      float64 `json:"limit"`
}

// Dispatch executes the named tool. Unknown tools, bad arguments and store
// failures all come back as failure payloads.
func (e *Executor) Dispatch(ctx context.Context, name string, args json.RawMessage) Outcome {
	e.logger.Debug("executing tool", logger.ToolField(name), logger.StringField("args", string(args)))

	var outcome Outcome
	switch name {
	case ToolSearchPlaces:
		outcome = e.searchPlaces(ctx, args)
	case ToolGetPlaceDetails:
		outcome = e.getPlaceDetails(ctx, args)
	case ToolAddPlace:
		outcome = e.addPlace(ctx, args)
	case ToolUpdatePlace:
		outcome = e.updatePlace(ctx, args)
	case ToolDeletePlace:
		outcome = e.deletePlace(ctx, args)
	case ToolGetStatistics:
		outcome = e.getStatistics(ctx, args)
	case ToolPlacesNearby:
		outcome = e.placesNearby(ctx, args)
	case ToolSearchByName:
		outcome = e.searchByName(ctx, args)
	default:
		outcome = failure(fmt.Sprintf("Unknown function: %s", name))
	}

	if !outcome.Success {
		e.logger.Warn("tool execution failed", logger.ToolField(name), logger.StringField("payload", string(outcome.Payload)))
	}
	return outcome
}

func (e *Executor) searchPlaces(ctx context.Context, raw json.RawMessage) Outcome {
	var args searchPlacesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	found, err := e.store.Search(ctx, places.SearchFilter{
		Category:      places.Category(args.Category),
		MinRating:     args.MinRating,
		MaxPriceLevel: int(args.MaxPriceLevel),
		Location:      args.Location,
		Limit:         int(args.Limit),
	})
	if err != nil {
		return failure(err.Error())
	}

	summaries := make([]placeSummary, 0, len(found))
	for _, p := range found {
		summaries = append(summaries, placeSummary{
			ID: p.ID, Name: p.Name, Category: p.Category, Rating: p.Rating,
			PriceLevel: p.PriceLevel, Address: p.Address, Amenities: p.Amenities,
		})
	}
	return success(map[string]any{"count": len(summaries), "data": summaries})
}

func (e *Executor) getPlaceDetails(ctx context.Context, raw json.RawMessage) Outcome {
	var args placeIDArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	place, err := e.store.GetByID(ctx, int64(args.ID))
	if err != nil {
		return failure(err.Error())
	}
	if place == nil {
		return failure("Place not found")
	}
	return success(map[string]any{"data": place})
}

func (e *Executor) addPlace(ctx context.Context, raw json.RawMessage) Outcome {
	var args places.NewPlace
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	place, err := e.store.Add(ctx, args)
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]any{"data": place})
}

func (e *Executor) updatePlace(ctx context.Context, raw json.RawMessage) Outcome {
	var args struct {
		ID float64 `json:"id"`
		places.PlacePatch
	}
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	place, err := e.store.Update(ctx, int64(args.ID), args.PlacePatch)
	if err != nil {
		return failure(err.Error())
	}
	if place == nil {
		return failure("Place not found")
	}
	return success(map[string]any{"data": place})
}

func (e *Executor) deletePlace(ctx context.Context, raw json.RawMessage) Outcome {
	var args placeIDArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	deleted, err := e.store.Delete(ctx, int64(args.ID))
	if err != nil {
		return failure(err.Error())
	}
	if !deleted {
		return failure("Place not found")
	}
	return success(map[string]any{"message": "Place deleted"})
}

func (e *Executor) getStatistics(ctx context.Context, raw json.RawMessage) Outcome {
	var args statisticsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	stats, err := e.store.Statistics(ctx, places.Category(args.Category))
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]any{"data": stats})
}

func (e *Executor) placesNearby(ctx context.Context, raw json.RawMessage) Outcome {
	var args nearbyArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	found, err := e.store.Nearby(ctx, args.Latitude, args.Longitude, args.RadiusKm,
		places.Category(args.Category), int(args.Limit))
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]any{"count": len(found), "data": digests(found)})
}

func (e *Executor) searchByName(ctx context.Context, raw json.RawMessage) Outcome {
	var args searchByNameArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	found, err := e.store.SearchByName(ctx, args.SearchTerm, int(args.Limit))
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]any{"count": len(found), "data": digests(found)})
}

func digests(found []places.Place) []placeDigest {
	out := make([]placeDigest, 0, len(found))
	for _, p := range found {
		out = append(out, placeDigest{ID: p.ID, Name: p.Name, Category: p.Category, Rating: p.Rating, Address: p.Address})
	}
	return out
}

func decodeArgs(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func success(fields map[string]any) Outcome {
	fields["success"] = true
	return Outcome{Success: true, Payload: marshalPayload(fields)}
}

func failure(message string) Outcome {
	return Outcome{Success: false, Payload: marshalPayload(map[string]any{
		"success": false,
		"error":   message,
	})}
}

func marshalPayload(fields map[string]any) json.RawMessage {
	payload, err := json.Marshal(fields)
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"internal encoding failure"}`)
	}
	return payload
}
