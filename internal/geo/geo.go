// Package geo ranks recycling centers by distance from a point.
package geo

import (
	"math"
	"sort"

	"recycle-backend/internal/models"
)

// KMPerDegree is the length of one degree of latitude in kilometres
const KMPerDegree = 111.045

// MaxNearby caps the number of centers returned by Nearby
const MaxNearby = 10

// Distance approximates the distance in kilometres between two points on a plane.
// The east-west leg is scaled by the cosine of the origin latitude.
func Distance(lat, lon, toLat, toLon float64) float64 {
	legNS := KMPerDegree * (toLat - lat)
	legEW := KMPerDegree * math.Cos(lat*math.Pi/180) * (toLon - lon)
	return math.Sqrt(legNS*legNS + legEW*legEW)
}

// Nearby returns copies of the centers within radiusKM of the point, nearest
// first, with Distance set. At most MaxNearby centers are returned.
func Nearby(centers []*models.RecyclingCenter, lat, lon, radiusKM float64) []*models.RecyclingCenter {
	out := make([]*models.RecyclingCenter, 0, len(centers))
	for _, c := range centers {
		d := Distance(lat, lon, c.Latitude, c.Longitude)
		if d > radiusKM {
			continue
		}
		cp := *c
		cp.Distance = &d
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Distance < *out[j].Distance
	})

	if len(out) > MaxNearby {
		out = out[:MaxNearby]
	}
	return out
}

// ValidCoordinates reports whether lat and lon are on the globe
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
