// Package places defines the place data model and its PostgreSQL store.
package places

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Category is one of the six fixed place categories.
type Category string

// Place categories.
const (
	CategoryCafe       Category = "cafe"
	CategoryRestaurant Category = "restaurant"
	CategoryPark       Category = "park"
	CategoryBookstore  Category = "bookstore"
	CategoryGym        Category = "gym"
	CategoryGrocery    Category = "grocery"
)

// Categories lists all valid categories in declaration order.
var Categories = []Category{
	CategoryCafe,
	CategoryRestaurant,
	CategoryPark,
	CategoryBookstore,
	CategoryGym,
	CategoryGrocery,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Place is a point-of-interest record. Optional text attributes are nil
// when unset; Amenities is always a materialized list, never the raw
// JSON encoding it is stored as.
type Place struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Rating      float64   `json:"rating"`
	PriceLevel  int       `json:"price_level"`
	Description *string   `json:"description"`
	Amenities   []string  `json:"amenities"`
	Hours       *string   `json:"hours"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Website     *string   `json:"website"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPlace carries the fields for creating a place. Name, Category,
// Latitude and Longitude are required; the rest default per the data model
// (rating 0, price level 2, empty amenities).
type NewPlace struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      float64  `json:"rating,omitempty"`
	PriceLevel  int      `json:"price_level,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Hours       *string  `json:"hours,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
}

// Validate checks required fields and value ranges.
func (p *NewPlace) Validate() error {
	var result error

	if p.Name == "" {
		result = multierror.Append(result, fmt.Errorf("name is required"))
	}
	if !p.Category.Valid() {
		result = multierror.Append(result, fmt.Errorf("category %q is not one of %v", p.Category, Categories))
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		result = multierror.Append(result, fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude))
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		result = multierror.Append(result, fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude))
	}
	if p.Rating < 0 || p.Rating > 5 {
		result = multierror.Append(result, fmt.Errorf("rating %v out of range [0, 5]", p.Rating))
	}
	if p.PriceLevel != 0 && (p.PriceLevel < 1 || p.PriceLevel > 3) {
		result = multierror.Append(result, fmt.Errorf("price_level %d out of range [1, 3]", p.PriceLevel))
	}
	return result
}

// Optional is a JSON field that remembers whether its key was present and
// whether the value was null, so partial updates can distinguish
// "unchanged" from "clear".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set, non-null Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a set Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON records presence; it is only invoked for keys that appear
// in the document, so absent fields keep Set == false.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// MarshalJSON renders null for unset or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// PlacePatch is a partial update for a place. Absent fields are left
// unchanged; null clears the nullable text fields (and resets amenities to
// an empty list). Identity and creation time are not patchable.
type PlacePatch struct {
	Name        Optional[string]   `json:"name"`
	Category    Optional[Category] `json:"category"`
	Latitude    Optional[float64]  `json:"latitude"`
	Longitude   Optional[float64]  `json:"longitude"`
	Rating      Optional[float64]  `json:"rating"`
	PriceLevel  Optional[int]      `json:"price_level"`
	Description Optional[string]   `json:"description"`
	Amenities   Optional[[]string] `json:"amenities"`
	Hours       Optional[string]   `json:"hours"`
	Address     Optional[string]   `json:"address"`
	Phone       Optional[string]   `json:"phone"`
	Website     Optional[string]   `json:"website"`
}

// Empty reports whether no field is set; an empty patch behaves as a read.
func (p *PlacePatch) Empty() bool {
	return !p.Name.Set && !p.Category.Set && !p.Latitude.Set && !p.Longitude.Set &&
		!p.Rating.Set && !p.PriceLevel.Set && !p.Description.Set && !p.Amenities.Set &&
		!p.Hours.Set && !p.Address.Set && !p.Phone.Set && !p.Website.Set
}

// Validate rejects null for non-nullable fields and out-of-range values.
func (p *PlacePatch) Validate() error {
	var result error

	for name, set := range map[string]Optional[float64]{
		"latitude": p.Latitude, "longitude": p.Longitude, "rating": p.Rating,
	} {
		if set.Set && set.Null {
			result = multierror.Append(result, fmt.Errorf("%s cannot be null", name))
		}
	}
	if p.Name.Set && (p.Name.Null || p.Name.Value == "") {
		result = multierror.Append(result, fmt.Errorf("name cannot be null or empty"))
	}
	if p.Category.Set {
		if p.Category.Null || !p.Category.Value.Valid() {
			result = multierror.Append(result, fmt.Errorf("category must be one of %v", Categories))
		}
	}
	if p.PriceLevel.Set {
		if p.PriceLevel.Null || p.PriceLevel.Value < 1 || p.PriceLevel.Value > 3 {
			result = multierror.Append(result, fmt.Errorf("price_level must be in [1, 3]"))
		}
	}
	if p.Rating.Set && (p.Rating.Value < 0 || p.Rating.Value > 5) {
		result = multierror.Append(result, fmt.Errorf("rating %v out of range [0, 5]", p.Rating.Value))
	}
	if p.Latitude.Set && (p.Latitude.Value < -90 || p.Latitude.Value > 90) {
		result = multierror.Append(result, fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude.Value))
	}
	if p.Longitude.Set && (p.Longitude.Value < -180 || p.Longitude.Value > 180) {
		result = multierror.Append(result, fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude.Value))
	}
	return result
}

// SearchFilter narrows a place search. Zero values mean "no filter";
// MaxPriceLevel 0 and 3 are both treated as unbounded, matching the
// price scale's upper end.
type SearchFilter struct {
	Category      Category `json:"category,omitempty"`
	MinRating     float64  `json:"minRating,omitempty"`
	MaxPriceLevel int      `json:"maxPriceLevel,omitempty"`
	Location      string   `json:"location,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	RadiusKm      float64  `json:"radiusKm,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// CategoryStats aggregates one category's places.
type CategoryStats struct {
	Category      string  `json:"category"`
	Count         int64   `json:"count"`
	AvgRating     float64 `json:"avg_rating"`
	AvgPriceLevel float64 `json:"avg_price_level"`
}

// Defaults from the operation contracts.
const (
	DefaultSearchLimit     = 50
	DefaultNearbyLimit     = 20
	DefaultNameSearchLimit = 10
	DefaultPriceLevel      = 2
)
