package shadow

import (
	"fmt"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// ShadowPolygon is the ground patch an obstacle shades, in meters relative to
// the observation point. Vertices run counter-clockwise.
type ShadowPolygon struct {
	ObstacleID     string        `json:"obstacleId"`
	ObstacleType   obstacle.Type `json:"obstacleType"`
	Vertices       []Vec2        `json:"vertices"`
	ShadeIntensity float64       `json:"shadeIntensity"`
}

// Project returns the shadow o casts with the sun at sun, or nil when the
// sun is down or the shadow degenerates. slope may be nil for level ground.
func Project(o obstacle.Obstacle, sun solar.SolarPosition, slope *PlotSlope) (*ShadowPolygon, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if slope != nil {
		if err := slope.Validate(); err != nil {
			return nil, err
		}
	}
	if !sun.AboveHorizon() {
		return nil, nil
	}

	var verts []Vec2
	switch o.Type {
	case obstacle.Building:
		verts = projectBuilding(o, sun, slope)
	case obstacle.Fence, obstacle.Hedge:
		verts = projectWall(o, sun, slope)
	case obstacle.EvergreenTree, obstacle.DeciduousTree:
		verts = projectTree(o, sun, slope)
	default:
		return nil, fmt.Errorf("%w: no shadow model for %q", obstacle.ErrInvalidObstacle, o.Type)
	}
	if len(verts) < 3 {
		return nil, nil
	}

	return &ShadowPolygon{
		ObstacleID:     o.ID,
		ObstacleType:   o.Type,
		Vertices:       verts,
		ShadeIntensity: o.ShadeIntensity(),
	}, nil
}

// ProjectAll projects every obstacle and keeps the ones that cast a shadow,
// in input order.
func ProjectAll(obstacles []obstacle.Obstacle, sun solar.SolarPosition, slope *PlotSlope) ([]ShadowPolygon, error) {
	out := make([]ShadowPolygon, 0, len(obstacles))
	for i, o := range obstacles {
		p, err := Project(o, sun, slope)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func location(o obstacle.Obstacle) Vec2 {
	p := o.Location()
	return Vec2{p.X, p.Y}
}
