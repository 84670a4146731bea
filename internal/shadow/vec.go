package shadow

import (
	"math"

	"github.com/johnhkchen/solar-sim/internal/solar"
)

// Vec2 is a ground-plane offset from the observation point in meters.
type Vec2 struct {
	X float64 `json:"x"` // east
	Y float64 `json:"y"` // north
}

// Vec3 adds height above the flat reference plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec2) add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) at(z float64) Vec3    { return Vec3{v.X, v.Y, z} }
func (v Vec2) dist(o Vec2) float64  { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// cross is positive when o→a→b turns counter-clockwise.
func cross(o, a, b Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// bearing is the unit ground vector pointing toward a compass bearing.
func bearing(deg float64) Vec2 {
	r := deg * math.Pi / 180
	return Vec2{math.Sin(r), math.Cos(r)}
}

// perpendicular is bearing(deg) rotated 90° clockwise seen from above.
func perpendicular(deg float64) Vec2 {
	r := deg * math.Pi / 180
	return Vec2{math.Cos(r), -math.Sin(r)}
}

// SunDirection is the unit vector pointing from the ground toward the sun.
func SunDirection(pos solar.SolarPosition) Vec3 {
	alt := pos.Altitude * math.Pi / 180
	az := pos.Azimuth * math.Pi / 180
	h := math.Cos(alt)
	return Vec3{X: h * math.Sin(az), Y: h * math.Cos(az), Z: math.Sin(alt)}
}

// signedArea is positive for counter-clockwise rings.
func signedArea(pts []Vec2) float64 {
	a := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// ring removes consecutive duplicates and orients pts counter-clockwise.
// It returns nil when fewer than three distinct points remain or the ring
// encloses no area.
func ring(pts []Vec2) []Vec2 {
	out := make([]Vec2, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && p.dist(out[len(out)-1]) < vertexEpsilon {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].dist(out[len(out)-1]) < vertexEpsilon {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}

	area := signedArea(out)
	if math.Abs(area) < areaEpsilon {
		return nil
	}
	if area < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
