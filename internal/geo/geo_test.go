package geo

import (
	"testing"

	"recycle-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCenters() []*models.RecyclingCenter {
	return []*models.RecyclingCenter{
		{ID: 1, Name: "Green Recycling Center", Latitude: 40.7128, Longitude: -74.0060},
		{ID: 2, Name: "Eco Waste Solutions", Latitude: 40.7282, Longitude: -73.7949},
		{ID: 3, Name: "Recycle Now", Latitude: 40.7489, Longitude: -73.9680},
		{ID: 4, Name: "Clean Planet Recycling", Latitude: 40.7231, Longitude: -73.9442},
		{ID: 5, Name: "Sustainable Waste Management", Latitude: 40.7589, Longitude: -73.9851},
	}
}

func TestDistance(t *testing.T) {
	assert.Zero(t, Distance(40.7128, -74.0060, 40.7128, -74.0060))
	assert.InDelta(t, 111.045, Distance(0, 0, 1, 0), 1e-9)
	assert.InDelta(t, 111.045, Distance(0, 0, 0, 1), 1e-9)
	// at 60 degrees a degree of longitude is half as long
	assert.InDelta(t, 55.5225, Distance(60, 0, 60, 1), 1e-6)
}

func TestNearbyOrdersByDistance(t *testing.T) {
	got := Nearby(seededCenters(), 40.7128, -74.0060, 10)

	require.NotEmpty(t, got)
	assert.Equal(t, "Green Recycling Center", got[0].Name)
	assert.Zero(t, *got[0].Distance)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, *got[i-1].Distance, *got[i].Distance)
	}
	for _, c := range got {
		assert.LessOrEqual(t, *c.Distance, 10.0)
		assert.NotEqual(t, "Eco Waste Solutions", c.Name, "about 18 km away")
	}
}

func TestNearbyEmptyWhenFarAway(t *testing.T) {
	assert.Empty(t, Nearby(seededCenters(), 51.5074, -0.1278, 10))
}

func TestNearbyCapsResults(t *testing.T) {
	var centers []*models.RecyclingCenter
	for i := 0; i < 25; i++ {
		centers = append(centers, &models.RecyclingCenter{ID: int64(i), Latitude: 10 + float64(i)*0.001, Longitude: 10})
	}

	got := Nearby(centers, 10, 10, 50)
	require.Len(t, got, MaxNearby)
	assert.Equal(t, int64(0), got[0].ID)
	assert.Nil(t, centers[0].Distance, "input is not modified")
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(40.7, -74))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
