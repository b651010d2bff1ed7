package features

import (
	"math"

	"olistfeatures/internal/dataset"
)

// earthRadiusKm is the mean Earth radius used for great-circle distances
const earthRadiusKm = 6371.0

// coordinate is a (lat, lng) pair in decimal degrees
type coordinate struct {
	lat float64
	lng float64
}

// Haversine returns the great-circle distance in kilometers between
// two points given in decimal degrees
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// resolvePrefixCoordinates picks one representative coordinate pair per
// postal-code prefix. Multiple geolocation rows may share a prefix; the
// first occurrence in source row order wins, deterministically.
func resolvePrefixCoordinates(rows []dataset.Geolocation) map[string]coordinate {
	coords := make(map[string]coordinate)
	for _, row := range rows {
		if _, seen := coords[row.ZipPrefix]; seen {
			continue
		}
		coords[row.ZipPrefix] = coordinate{lat: row.Lat, lng: row.Lng}
	}
	return coords
}
