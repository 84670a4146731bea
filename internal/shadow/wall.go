package shadow

import (
	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// projectWall shades the quadrilateral between a thin wall's ground line and
// its projected top edge. A sun ray running along the wall casts nothing.
func projectWall(o obstacle.Obstacle, sun solar.SolarPosition, slope *PlotSlope) []Vec2 {
	base := location(o)
	side := perpendicular(o.Direction).scale(o.Width / 2)
	e1, e2 := base.add(side.scale(-1)), base.add(side)

	dir := SunDirection(sun)
	p1, ok1 := ProjectToGround(e1.at(groundZ(slope, e1)+o.Height), dir, slope)
	p2, ok2 := ProjectToGround(e2.at(groundZ(slope, e2)+o.Height), dir, slope)
	if !ok1 || !ok2 {
		return nil
	}
	return ring([]Vec2{e1, e2, p2, p1})
}
