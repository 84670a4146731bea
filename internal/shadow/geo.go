package shadow

import (
	"math"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// MetersPerDegreeLatitude is the equirectangular scale used for local offsets.
const MetersPerDegreeLatitude = 111320.0

// GeoShadowPolygon is a ShadowPolygon with vertices in latitude/longitude.
type GeoShadowPolygon struct {
	ObstacleID     string              `json:"obstacleId"`
	ObstacleType   obstacle.Type       `json:"obstacleType"`
	Vertices       []solar.Coordinates `json:"vertices"`
	ShadeIntensity float64             `json:"shadeIntensity"`
}

// metersPerDegreeLongitude shrinks with latitude. At the poles it is zero and
// east offsets are not representable.
func metersPerDegreeLongitude(lat float64) float64 {
	return MetersPerDegreeLatitude * math.Cos(lat*math.Pi/180)
}

// ToLatLng converts an offset from origin to geographic coordinates.
func ToLatLng(origin solar.Coordinates, v Vec2) solar.Coordinates {
	out := solar.Coordinates{
		Latitude:  origin.Latitude + v.Y/MetersPerDegreeLatitude,
		Longitude: origin.Longitude,
	}
	if m := metersPerDegreeLongitude(origin.Latitude); math.Abs(m) > 1e-9 {
		out.Longitude += v.X / m
	}
	return out
}

// FromLatLng is the inverse of ToLatLng for the same origin.
func FromLatLng(origin, c solar.Coordinates) Vec2 {
	return Vec2{
		X: (c.Longitude - origin.Longitude) * metersPerDegreeLongitude(origin.Latitude),
		Y: (c.Latitude - origin.Latitude) * MetersPerDegreeLatitude,
	}
}

// ToGeo anchors the polygon at origin.
func (p *ShadowPolygon) ToGeo(origin solar.Coordinates) GeoShadowPolygon {
	verts := make([]solar.Coordinates, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = ToLatLng(origin, v)
	}
	return GeoShadowPolygon{
		ObstacleID:     p.ObstacleID,
		ObstacleType:   p.ObstacleType,
		Vertices:       verts,
		ShadeIntensity: p.ShadeIntensity,
	}
}
