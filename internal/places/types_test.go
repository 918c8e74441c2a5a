package places

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "category %q should be valid", c)
	}
	assert.False(t, Category("museum").Valid())
	assert.False(t, Category("").Valid())
}

func TestNewPlaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		place   NewPlace
		wantErr bool
	}{
		{
			name:  "minimal valid place",
			place: NewPlace{Name: "Corner Cafe", Category: CategoryCafe, Latitude: 37.77, Longitude: -122.42},
		},
		{
			name:    "missing name",
			place:   NewPlace{Category: CategoryCafe, Latitude: 37.77, Longitude: -122.42},
			wantErr: true,
		},
		{
			name:    "unknown category",
			place:   NewPlace{Name: "X", Category: "museum", Latitude: 37.77, Longitude: -122.42},
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			place:   NewPlace{Name: "X", Category: CategoryPark, Latitude: 91, Longitude: 0},
			wantErr: true,
		},
		{
			name:    "rating above five",
			place:   NewPlace{Name: "X", Category: CategoryPark, Latitude: 0, Longitude: 0, Rating: 5.1},
			wantErr: true,
		},
		{
			name:    "price level out of range",
			place:   NewPlace{Name: "X", Category: CategoryPark, Latitude: 0, Longitude: 0, PriceLevel: 4},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.place.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlacePatchDecodeTracksPresence(t *testing.T) {
	var patch PlacePatch
	err := json.Unmarshal([]byte(`{"name":"New Name","description":null,"rating":4.2}`), &patch)
	require.NoError(t, err)

	assert.True(t, patch.Name.Set)
	assert.Equal(t, "New Name", patch.Name.Value)

	assert.True(t, patch.Description.Set)
	assert.True(t, patch.Description.Null)

	assert.True(t, patch.Rating.Set)
	assert.Equal(t, 4.2, patch.Rating.Value)

	assert.False(t, patch.Address.Set, "absent fields must stay unset")
	assert.False(t, patch.Empty())
}

func TestPlacePatchEmpty(t *testing.T) {
	var patch PlacePatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &patch))
	assert.True(t, patch.Empty())
}

func TestPlacePatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{name: "valid partial", json: `{"rating":3.5,"price_level":1}`},
		{name: "null clears nullable field", json: `{"phone":null}`},
		{name: "null name rejected", json: `{"name":null}`, wantErr: true},
		{name: "null latitude rejected", json: `{"latitude":null}`, wantErr: true},
		{name: "bad category", json: `{"category":"arcade"}`, wantErr: true},
		{name: "rating too high", json: `{"rating":6}`, wantErr: true},
		{name: "price level zero", json: `{"price_level":0}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch PlacePatch
			require.NoError(t, json.Unmarshal([]byte(tt.json), &patch))
			err := patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptionalMarshal(t *testing.T) {
	b, err := json.Marshal(Some("open"))
	require.NoError(t, err)
	assert.Equal(t, `"open"`, string(b))

	b, err = json.Marshal(Null[string]())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(Optional[int]{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
