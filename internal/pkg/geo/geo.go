package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Fence is a circle around Center. A zero Radius accepts every point.
type Fence struct {
	Center Point
	Radius float64
}

func (f Fence) Enabled() bool { return f.Radius > 0 }

// Contains reports whether p lies within the fence.
func (f Fence) Contains(p Point) bool {
	if !f.Enabled() {
		return true
	}
	return Distance(f.Center, p) <= f.Radius
}
