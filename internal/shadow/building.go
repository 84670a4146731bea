package shadow

import (
	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// NominalBuildingDepth is the assumed extent of a building away from the
// observer; obstacles only record the width of the facing side.
const NominalBuildingDepth = 8.0

// buildingFootprint returns the four ground corners of the building, front
// face first. The front face is centred on base and perpendicular to the
// obstacle direction.
func buildingFootprint(o obstacle.Obstacle, base Vec2) [4]Vec2 {
	side := perpendicular(o.Direction).scale(o.Width / 2)
	back := bearing(o.Direction).scale(NominalBuildingDepth)
	left, right := base.add(side.scale(-1)), base.add(side)
	return [4]Vec2{left, right, right.add(back), left.add(back)}
}

func projectBuilding(o obstacle.Obstacle, sun solar.SolarPosition, slope *PlotSlope) []Vec2 {
	dir := SunDirection(sun)
	pts := make([]Vec2, 0, 8)
	for _, c := range buildingFootprint(o, location(o)) {
		z0 := groundZ(slope, c)
		for _, z := range []float64{z0, z0 + o.Height} {
			if g, ok := ProjectToGround(c.at(z), dir, slope); ok {
				pts = append(pts, g)
			}
		}
	}
	return ConvexHull(pts)
}
