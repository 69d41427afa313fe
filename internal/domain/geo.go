package domain

import (
	"math"
	"strconv"
	"strings"
)

// earthRadiusKM is the mean Earth radius used for great-circle distances.
const earthRadiusKM = 6371.0

// metersPerDegreeLat approximates one degree of latitude anywhere on Earth.
const metersPerDegreeLat = 111320.0

// Haversine returns the great-circle distance in kilometers between two
// WGS-84 coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p := math.Pi / 180
	rlat1, rlon1 := lat1*p, lon1*p
	rlat2, rlon2 := lat2*p, lon2*p

	a := math.Pow(math.Sin((rlat2-rlat1)/2), 2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin((rlon2-rlon1)/2), 2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// BoundingBox is a lon/lat axis-aligned search area in the order the FIRMS
// area API expects: min_lon, min_lat, max_lon, max_lat.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoundingBoxAround computes the search box centered on (lat, lon) that
// contains a circle of radiusM meters. Longitude degrees shrink with
// latitude, hence the cos(lat) correction. Corners are rounded to 5 decimal
// degrees (~1 m), which is what the API URL carries.
func BoundingBoxAround(lat, lon, radiusM float64) BoundingBox {
	latOffset := radiusM / metersPerDegreeLat
	lonOffset := radiusM / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))

	return BoundingBox{
		MinLon: round5(lon - lonOffset),
		MinLat: round5(lat - latOffset),
		MaxLon: round5(lon + lonOffset),
		MaxLat: round5(lat + latOffset),
	}
}

// String renders the box as the comma-separated URL segment used by the API.
func (b BoundingBox) String() string {
	parts := []string{
		formatCoord(b.MinLon),
		formatCoord(b.MinLat),
		formatCoord(b.MaxLon),
		formatCoord(b.MaxLat),
	}
	return strings.Join(parts, ",")
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
