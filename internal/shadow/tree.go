package shadow

import (
	"math"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

const (
	trunkWidthRatio = 0.15
	minTrunkWidth   = 0.2
	canopyBaseRatio = 0.4
	canopyApexRatio = 0.1
	canopySegments  = 6
)

// treeSilhouette outlines a tree as seen from the sun: a trunk up to the
// canopy base, then a canopy narrowing to its apex. The outline lies in the
// vertical plane through base perpendicular to the sun azimuth and runs up
// the left side and down the right.
func treeSilhouette(o obstacle.Obstacle, base Vec2, z0, sunAzimuth float64) []Vec3 {
	u := perpendicular(sunAzimuth)
	trunk := math.Max(o.Width*trunkWidthRatio, minTrunkWidth) / 2
	canopyBase := o.Height * canopyBaseRatio
	radius := o.Width / 2

	pt := func(offset, h float64) Vec3 {
		return base.add(u.scale(offset)).at(z0 + h)
	}

	out := make([]Vec3, 0, 2*canopySegments+6)
	out = append(out, pt(-trunk, 0), pt(-trunk, canopyBase))
	for k := 0; k <= canopySegments; k++ {
		h, r := canopyLevel(o.Height, canopyBase, radius, k)
		out = append(out, pt(-r, h))
	}
	for k := canopySegments; k >= 0; k-- {
		h, r := canopyLevel(o.Height, canopyBase, radius, k)
		out = append(out, pt(r, h))
	}
	return append(out, pt(trunk, canopyBase), pt(trunk, 0))
}

func canopyLevel(height, canopyBase, radius float64, k int) (h, r float64) {
	f := float64(k) / canopySegments
	return canopyBase + (height-canopyBase)*f, radius * (1 - (1-canopyApexRatio)*f)
}

func projectTree(o obstacle.Obstacle, sun solar.SolarPosition, slope *PlotSlope) []Vec2 {
	base := location(o)
	dir := SunDirection(sun)

	var pts []Vec2
	for _, p := range treeSilhouette(o, base, groundZ(slope, base), sun.Azimuth) {
		if g, ok := ProjectToGround(p, dir, slope); ok {
			pts = append(pts, g)
		}
	}
	return ring(pts)
}
