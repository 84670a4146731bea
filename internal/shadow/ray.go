package shadow

import "math"

const (
	// MaxFlatShadowLength caps shadows on level ground near sunrise and sunset.
	MaxFlatShadowLength = 100.0
	// MaxSlopedShadowLength caps shadows on sloped ground.
	MaxSlopedShadowLength = 150.0
	// FlatSlopeThreshold is the slope angle in degrees below which ground is level.
	FlatSlopeThreshold = 0.5
	// ParallelEpsilon rejects rays running almost parallel to sloped ground.
	ParallelEpsilon = 1e-4

	vertexEpsilon = 1e-6
	areaEpsilon   = 1e-6
)

// ProjectToGround traces the ray from p away from the sun until it meets the
// ground. sun is the direction toward the sun as returned by SunDirection.
// It returns false when the ray never reaches the ground. Points at or below
// ground level project to themselves.
func ProjectToGround(p Vec3, sun Vec3, slope *PlotSlope) (Vec2, bool) {
	if flat(slope) {
		return projectFlat(p, sun)
	}
	return projectSloped(p, sun, *slope)
}

func projectFlat(p, sun Vec3) (Vec2, bool) {
	if p.Z <= 0 {
		return Vec2{p.X, p.Y}, true
	}
	dx, dy, dz := -sun.X, -sun.Y, -sun.Z
	if dz >= 0 {
		return Vec2{}, false
	}
	t := -p.Z / dz
	if t < 0 {
		return Vec2{}, false
	}
	t = clampRay(t, dx, dy, MaxFlatShadowLength)
	return Vec2{p.X + t*dx, p.Y + t*dy}, true
}

func projectSloped(p, sun Vec3, s PlotSlope) (Vec2, bool) {
	base := Vec2{p.X, p.Y}
	if p.Z <= groundZ(&s, base) {
		return base, true
	}

	k := math.Tan(s.Angle * math.Pi / 180)
	up := bearing(s.Aspect)
	dx, dy, dz := -sun.X, -sun.Y, -sun.Z

	// p + t·d meets z = k·(x·sin(aspect) + y·cos(aspect))
	denom := dz - k*(dx*up.X+dy*up.Y)
	if math.Abs(denom) < ParallelEpsilon {
		return Vec2{}, false
	}
	t := (k*(p.X*up.X+p.Y*up.Y) - p.Z) / denom
	if t < 0 {
		return Vec2{}, false
	}
	t = clampRay(t, dx, dy, MaxSlopedShadowLength)
	return Vec2{p.X + t*dx, p.Y + t*dy}, true
}

// clampRay shortens t so the horizontal run of the ray stays within limit.
func clampRay(t, dx, dy, limit float64) float64 {
	h := math.Hypot(dx, dy)
	if h > 0 && t*h > limit {
		return limit / h
	}
	return t
}
