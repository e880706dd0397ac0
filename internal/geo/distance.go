package geo

import "math"

const EarthRadiusKM = 6371.0

// StationPoint is a route stop with optional coordinates. A stop without
// coordinates contributes zero-length segments on both sides.
type StationPoint struct {
	Latitude  *float64
	Longitude *float64
}

// Distance returns the great-circle distance in kilometers between two
// coordinates using the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// RouteDistance sums consecutive-pair distances along an ordered station
// sequence. Pairs where either endpoint lacks coordinates count as zero.
func RouteDistance(stations []StationPoint) float64 {
	var total float64
	for i := 1; i < len(stations); i++ {
		prev := stations[i-1]
		curr := stations[i]
		if !prev.hasCoordinates() || !curr.hasCoordinates() {
			continue
		}
		total += Distance(*prev.Latitude, *prev.Longitude, *curr.Latitude, *curr.Longitude)
	}
	return total
}

func (p StationPoint) hasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
