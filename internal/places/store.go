package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewisedginton/local_places/pkg/logger"
)

// Store is the read/write surface the tool layer and HTTP handlers consume.
// Lookups for missing rows return nil (or false for Delete), never an error.
type Store interface {
	Search(ctx context.Context, filter SearchFilter) ([]Place, error)
	GetByID(ctx context.Context, id int64) (*Place, error)
	GetAll(ctx context.Context) ([]Place, error)
	Add(ctx context.Context, place NewPlace) (*Place, error)
	Update(ctx context.Context, id int64, patch PlacePatch) (*Place, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Nearby(ctx context.Context, lat, lng, radiusKm float64, category Category, limit int) ([]Place, error)
	Statistics(ctx context.Context, category Category) ([]CategoryStats, error)
	SearchByName(ctx context.Context, term string, limit int) ([]Place, error)
}

// ErrNearPole is returned when a nearby search centre is too close to a
// pole for the bounding-box longitude delta to stay finite.
var ErrNearPole = errors.New("latitude too close to a pole for a bounding-box search")

const (
	kmPerDegreeLatitude = 111.0
	maxNearbyLatitude   = 89.9
)

const placeColumns = "id, name, category, latitude, longitude, rating, price_level, description, amenities, hours, address, phone, website, created_at"

// getAllQuery backs the bulk listing on /api/places; the map UI expects
// alphabetical order.
const getAllQuery = "SELECT " + placeColumns + " FROM places ORDER BY name"

// PlaceStore is the PostgreSQL implementation of Store.
type PlaceStore struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

// NewPlaceStore creates a place store backed by the given pool.
func NewPlaceStore(db *pgxpool.Pool, logger logger.Logger) *PlaceStore {
	return &PlaceStore{
		db:     db,
		logger: logger,
	}
}

// Search returns places matching the filter, best rated first.
func (s *PlaceStore) Search(ctx context.Context, filter SearchFilter) ([]Place, error) {
	query, args, err := buildSearchQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to search places", logger.ErrorField(err))
		return nil, fmt.Errorf("search places: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// GetByID returns the place with the given id, or nil when absent.
func (s *PlaceStore) GetByID(ctx context.Context, id int64) (*Place, error) {
	row := s.db.QueryRow(ctx, "SELECT "+placeColumns+" FROM places WHERE id = $1", id)
	place, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get place", logger.Int64Field("id", id), logger.ErrorField(err))
		return nil, fmt.Errorf("get place %d: %w", id, err)
	}
	return &place, nil
}

// GetAll returns every place, ordered by name.
func (s *PlaceStore) GetAll(ctx context.Context) ([]Place, error) {
	rows, err := s.db.Query(ctx, getAllQuery)
	if err != nil {
		s.logger.Error("failed to list places", logger.ErrorField(err))
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// Add inserts a place, applying the documented defaults, and returns the
// stored row.
func (s *PlaceStore) Add(ctx context.Context, place NewPlace) (*Place, error) {
	if err := place.Validate(); err != nil {
		return nil, err
	}
	if place.PriceLevel == 0 {
		place.PriceLevel = DefaultPriceLevel
	}
	amenities, err := encodeAmenities(place.Amenities)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO places (name, category, latitude, longitude, rating, price_level, description, amenities, hours, address, phone, website)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+placeColumns,
		place.Name, place.Category, place.Latitude, place.Longitude, place.Rating, place.PriceLevel,
		place.Description, amenities, place.Hours, place.Address, place.Phone, place.Website)

	stored, err := scanPlace(row)
	if err != nil {
		s.logger.Error("failed to add place", logger.StringField("name", place.Name), logger.ErrorField(err))
		return nil, fmt.Errorf("add place: %w", err)
	}

	s.logger.Info("added place",
		logger.Int64Field("id", stored.ID),
		logger.StringField("name", stored.Name),
		logger.StringField("category", string(stored.Category)))
	return &stored, nil
}

// Update applies the patch and returns the updated row, or nil when the id
// does not exist. An empty patch reads the current row without touching it.
func (s *PlaceStore) Update(ctx context.Context, id int64, patch PlacePatch) (*Place, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	query, args, err := buildUpdateQuery(id, patch)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx, query, args...)
	place, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to update place", logger.Int64Field("id", id), logger.ErrorField(err))
		return nil, fmt.Errorf("update place %d: %w", id, err)
	}

	s.logger.Info("updated place", logger.Int64Field("id", id))
	return &place, nil
}

// Delete removes the place and reports whether a row existed.
func (s *PlaceStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM places WHERE id = $1", id)
	if err != nil {
		s.logger.Error("failed to delete place", logger.Int64Field("id", id), logger.ErrorField(err))
		return false, fmt.Errorf("delete place %d: %w", id, err)
	}
	deleted := tag.RowsAffected() > 0
	if deleted {
		s.logger.Info("deleted place", logger.Int64Field("id", id))
	}
	return deleted, nil
}

// Nearby returns places inside a rectangular degree window around the
// centre, approximating radiusKm. The window follows the flat-earth
// conversion of one latitude degree per 111 km, widening with latitude.
func (s *PlaceStore) Nearby(ctx context.Context, lat, lng, radiusKm float64, category Category, limit int) ([]Place, error) {
	latDelta, lngDelta, err := boundingBox(lat, radiusKm)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + placeColumns + " FROM places WHERE latitude BETWEEN $1 AND $2 AND longitude BETWEEN $3 AND $4")
	args := []any{lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta}
	if category != "" {
		args = append(args, category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY rating DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		s.logger.Error("failed to search nearby places", logger.ErrorField(err))
		return nil, fmt.Errorf("nearby places: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// Statistics aggregates rating and price per category, most populous first.
// A non-empty category narrows the result to that category.
func (s *PlaceStore) Statistics(ctx context.Context, category Category) ([]CategoryStats, error) {
	query := `SELECT category, COUNT(*), ROUND(AVG(rating)::numeric, 2)::float8, ROUND(AVG(price_level)::numeric, 2)::float8 FROM places`
	var args []any
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " GROUP BY category ORDER BY COUNT(*) DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to compute statistics", logger.ErrorField(err))
		return nil, fmt.Errorf("place statistics: %w", err)
	}
	defer rows.Close()

	stats := []CategoryStats{}
	for rows.Next() {
		var st CategoryStats
		if err := rows.Scan(&st.Category, &st.Count, &st.AvgRating, &st.AvgPriceLevel); err != nil {
			return nil, fmt.Errorf("scan statistics: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// SearchByName returns places whose name contains the term,
// case-insensitively, best rated first.
func (s *PlaceStore) SearchByName(ctx context.Context, term string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = DefaultNameSearchLimit
	}

	rows, err := s.db.Query(ctx,
		"SELECT "+placeColumns+" FROM places WHERE name ILIKE '%' || $1 || '%' ORDER BY rating DESC LIMIT $2",
		term, limit)
	if err != nil {
		s.logger.Error("failed to search places by name", logger.ErrorField(err))
		return nil, fmt.Errorf("search places by name: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// buildSearchQuery assembles the filtered search statement. Filters are
// conjunctive; unset fields add no predicate.
func buildSearchQuery(filter SearchFilter) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + placeColumns + " FROM places WHERE 1=1")
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		fmt.Fprintf(&sb, " AND rating >= $%d", len(args))
	}
	if filter.MaxPriceLevel > 0 && filter.MaxPriceLevel < 3 {
		args = append(args, filter.MaxPriceLevel)
		fmt.Fprintf(&sb, " AND price_level <= $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		fmt.Fprintf(&sb, " AND address ILIKE '%%' || $%d || '%%'", len(args))
	}
	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKm > 0 {
		latDelta, lngDelta, err := boundingBox(*filter.Latitude, filter.RadiusKm)
		if err != nil {
			return "", nil, err
		}
		args = append(args, *filter.Latitude-latDelta, *filter.Latitude+latDelta)
		fmt.Fprintf(&sb, " AND latitude BETWEEN $%d AND $%d", len(args)-1, len(args))
		args = append(args, *filter.Longitude-lngDelta, *filter.Longitude+lngDelta)
		fmt.Fprintf(&sb, " AND longitude BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY rating DESC LIMIT $%d", len(args))

	return sb.String(), args, nil
}

// buildUpdateQuery assembles the dynamic SET list for a non-empty patch.
func buildUpdateQuery(id int64, patch PlacePatch) (string, []any, error) {
	var sets []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setText := func(column string, field Optional[string]) {
		if !field.Set {
			return
		}
		if field.Null {
			set(column, nil)
			return
		}
		set(column, field.Value)
	}

	if patch.Name.Set {
		set("name", patch.Name.Value)
	}
	if patch.Category.Set {
		set("category", patch.Category.Value)
	}
	if patch.Latitude.Set {
		set("latitude", patch.Latitude.Value)
	}
	if patch.Longitude.Set {
		set("longitude", patch.Longitude.Value)
	}
	if patch.Rating.Set {
		set("rating", patch.Rating.Value)
	}
	if patch.PriceLevel.Set {
		set("price_level", patch.PriceLevel.Value)
	}
	setText("description", patch.Description)
	setText("hours", patch.Hours)
	setText("address", patch.Address)
	setText("phone", patch.Phone)
	setText("website", patch.Website)
	if patch.Amenities.Set {
		value := patch.Amenities.Value
		if patch.Amenities.Null {
			value = nil
		}
		encoded, err := encodeAmenities(value)
		if err != nil {
			return "", nil, err
		}
		set("amenities", encoded)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE places SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), placeColumns)
	return query, args, nil
}

// boundingBox converts a radius in km to degree deltas at a latitude.
func boundingBox(lat, radiusKm float64) (latDelta, lngDelta float64, err error) {
	if math.Abs(lat) > maxNearbyLatitude {
		return 0, 0, ErrNearPole
	}
	latDelta = radiusKm / kmPerDegreeLatitude
	lngDelta = radiusKm / (kmPerDegreeLatitude * math.Cos(lat*math.Pi/180))
	return latDelta, lngDelta, nil
}

func encodeAmenities(amenities []string) (string, error) {
	if amenities == nil {
		amenities = []string{}
	}
	encoded, err := json.Marshal(amenities)
	if err != nil {
		return "", fmt.Errorf("encode amenities: %w", err)
	}
	return string(encoded), nil
}

func scanPlace(row pgx.Row) (Place, error) {
	var place Place
	var amenities string
	err := row.Scan(&place.ID, &place.Name, &place.Category, &place.Latitude, &place.Longitude,
		&place.Rating, &place.PriceLevel, &place.Description, &amenities,
		&place.Hours, &place.Address, &place.Phone, &place.Website, &place.CreatedAt)
	if err != nil {
		return Place{}, err
	}
	if err := json.Unmarshal([]byte(amenities), &place.Amenities); err != nil {
		return Place{}, fmt.Errorf("decode amenities for place %d: %w", place.ID, err)
	}
	if place.Amenities == nil {
		place.Amenities = []string{}
	}
	return place, nil
}

func collectPlaces(rows pgx.Rows) ([]Place, error) {
	places := []Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, place)
	}
	return places, rows.Err()
}
