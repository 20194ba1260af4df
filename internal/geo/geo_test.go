package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajiplatform/matching-service/internal/types"
)

var (
	kathmandu = types.NewLocation(27.7172, 85.3240)
	pokhara   = types.NewLocation(28.2096, 83.9856)
)

func TestDistanceKm_Symmetric(t *testing.T) {
	ab, err := DistanceKm(kathmandu, pokhara)
	require.NoError(t, err)
	ba, err := DistanceKm(pokhara, kathmandu)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Greater(t, ab, 0.0)
}

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	d, err := DistanceKm(kathmandu, kathmandu)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Kathmandu to Pokhara is roughly 143 km as the crow flies.
	d, err := DistanceKm(kathmandu, pokhara)
	require.NoError(t, err)
	assert.InDelta(t, 143, d, 5)
}

func TestDistanceKm_InvalidInput(t *testing.T) {
	missing := types.Location{}
	_, err := DistanceKm(missing, kathmandu)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	outOfRange := types.NewLocation(95, 85)
	_, err = DistanceKm(outOfRange, kathmandu)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		loc  types.Location
		want bool
	}{
		{"both coordinates present", kathmandu, true},
		{"missing longitude", types.Location{Latitude: kathmandu.Latitude}, false},
		{"missing both", types.Location{}, false},
		{"latitude out of range", types.NewLocation(-90.5, 0), false},
		{"longitude out of range", types.NewLocation(0, 180.5), false},
		{"boundary values", types.NewLocation(-90, 180), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.loc))
		})
	}
}

func TestBoundingBox_SupersetOfRadius(t *testing.T) {
	// Any point within the radius must fall inside the box.
	const radius = 25.0
	box, err := BoundingBox(kathmandu, radius)
	require.NoError(t, err)

	offsets := []struct{ dLat, dLon float64 }{
		{0.1, 0}, {-0.1, 0}, {0, 0.2}, {0, -0.2}, {0.12, 0.12}, {-0.1, -0.15},
	}
	for _, off := range offsets {
		point := types.NewLocation(*kathmandu.Latitude+off.dLat, *kathmandu.Longitude+off.dLon)
		d, err := DistanceKm(kathmandu, point)
		require.NoError(t, err)
		if d <= radius {
			assert.True(t, box.Contains(point), "point at %.2f km escaped the box", d)
		}
	}
}

func TestBoundingBox_InvalidInput(t *testing.T) {
	_, err := BoundingBox(types.Location{}, 10)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = BoundingBox(kathmandu, 0)
	assert.Error(t, err)

	_, err = BoundingBox(kathmandu, -3)
	assert.Error(t, err)
}

func TestBoundingBox_NearPoleWidensLongitude(t *testing.T) {
	nearPole := types.NewLocation(89.9999, 10)
	box, err := BoundingBox(nearPole, 50)
	require.NoError(t, err)

	// The cos(lat) approximation collapses at the pole; the box must widen
	// instead of excluding real neighbors.
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoxContains_MissingCoordinates(t *testing.T) {
	box, err := BoundingBox(kathmandu, 10)
	require.NoError(t, err)
	assert.False(t, box.Contains(types.Location{}))
}
