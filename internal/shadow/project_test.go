package shadow

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

func sunAt(alt, az float64) solar.SolarPosition {
	return solar.SolarPosition{Altitude: alt, Azimuth: az, Time: time.Date(2024, 6, 21, 19, 0, 0, 0, time.UTC)}
}

func allTypes() []obstacle.Obstacle {
	return []obstacle.Obstacle{
		{ID: "house", Type: obstacle.Building, Direction: 180, Distance: 5, Height: 4, Width: 6},
		{ID: "fence", Type: obstacle.Fence, Direction: 180, Distance: 3, Height: 2, Width: 4},
		{ID: "hedge", Type: obstacle.Hedge, Direction: 270, Distance: 4, Height: 1.5, Width: 3},
		{ID: "pine", Type: obstacle.EvergreenTree, Direction: 90, Distance: 6, Height: 12, Width: 4},
		{ID: "oak", Type: obstacle.DeciduousTree, Direction: 90, Distance: 6, Height: 10, Width: 6},
	}
}

// requireConvexCCW checks every turn of the ring is strictly counter-clockwise.
func requireConvexCCW(t *testing.T, pts []Vec2) {
	t.Helper()
	require.GreaterOrEqual(t, len(pts), 3)
	for i := range pts {
		a, b, c := pts[i], pts[(i+1)%len(pts)], pts[(i+2)%len(pts)]
		require.Greater(t, cross(a, b, c), 0.0, "turn at %d", i)
	}
}

func TestSunDirection(t *testing.T) {
	d := SunDirection(sunAt(90, 0))
	require.InDelta(t, 1, d.Z, 1e-12)

	d = SunDirection(sunAt(0, 90))
	require.InDelta(t, 1, d.X, 1e-12)
	require.InDelta(t, 0, d.Y, 1e-12)

	d = SunDirection(sunAt(30, 225))
	require.InDelta(t, 1, math.Sqrt(d.X*d.X+d.Y*d.Y+d.Z*d.Z), 1e-12)
}

func TestProjectToGroundFlat(t *testing.T) {
	sun := SunDirection(sunAt(45, 180))

	g, ok := ProjectToGround(Vec3{Z: 2}, sun, nil)
	require.True(t, ok)
	require.InDelta(t, 0, g.X, 1e-9)
	require.InDelta(t, 2, g.Y, 1e-9)

	g, ok = ProjectToGround(Vec3{X: 3, Y: 4}, sun, nil)
	require.True(t, ok)
	require.Equal(t, Vec2{3, 4}, g)

	g, ok = ProjectToGround(Vec3{X: 3, Y: 4, Z: -1}, sun, nil)
	require.True(t, ok)
	require.Equal(t, Vec2{3, 4}, g)

	_, ok = ProjectToGround(Vec3{Z: 2}, SunDirection(sunAt(-5, 180)), nil)
	require.False(t, ok)

	// a gentle slope counts as level ground
	g, ok = ProjectToGround(Vec3{Z: 2}, sun, &PlotSlope{Angle: 0.3, Aspect: 0})
	require.True(t, ok)
	require.InDelta(t, 2, g.Y, 1e-9)
}

func TestProjectToGroundClampsLowSun(t *testing.T) {
	g, ok := ProjectToGround(Vec3{Z: 10}, SunDirection(sunAt(1, 90)), nil)
	require.True(t, ok)
	require.InDelta(t, MaxFlatShadowLength, math.Hypot(g.X, g.Y), 1e-9)
	require.Less(t, g.X, 0.0)

	// shadow falling uphill onto a gentle slope
	slope := &PlotSlope{Angle: 5, Aspect: 0}
	g, ok = ProjectToGround(Vec3{Z: 20}, SunDirection(sunAt(0.5, 180)), slope)
	require.True(t, ok)
	require.InDelta(t, MaxSlopedShadowLength, math.Hypot(g.X, g.Y), 1e-9)
}

func TestProjectToGroundSloped(t *testing.T) {
	sun := SunDirection(sunAt(45, 180))
	p := Vec3{Z: 2}

	uphill, ok := ProjectToGround(p, sun, &PlotSlope{Angle: 10, Aspect: 0})
	require.True(t, ok)
	require.InDelta(t, 1.700, uphill.Y, 1e-3)

	downhill, ok := ProjectToGround(p, sun, &PlotSlope{Angle: 10, Aspect: 180})
	require.True(t, ok)
	require.Greater(t, downhill.Y, 2.0)

	// the hit lies on the plane
	k := math.Tan(10 * math.Pi / 180)
	require.InDelta(t, 2-uphill.Y, k*uphill.Y, 1e-9)
}

func TestProjectToGroundRejectsParallelRay(t *testing.T) {
	// the ray runs downhill at exactly the slope angle
	_, ok := ProjectToGround(Vec3{Z: 2}, SunDirection(sunAt(30, 0)), &PlotSlope{Angle: 30, Aspect: 0})
	require.False(t, ok)
}

func TestNoShadowWhenSunIsDown(t *testing.T) {
	for _, o := range allTypes() {
		for _, alt := range []float64{0, -0.1, -30} {
			p, err := Project(o, sunAt(alt, 180), nil)
			require.NoError(t, err)
			require.Nil(t, p, "%s at %v", o.ID, alt)
		}
	}
}

func TestEveryTypeCastsACCWShadow(t *testing.T) {
	for _, o := range allTypes() {
		for _, slope := range []*PlotSlope{nil, {Angle: 12, Aspect: 135}} {
			p, err := Project(o, sunAt(35, 160), slope)
			require.NoError(t, err)
			require.NotNil(t, p, o.ID)
			require.Equal(t, o.ID, p.ObstacleID)
			require.Equal(t, o.Type, p.ObstacleType)
			require.InDelta(t, o.ShadeIntensity(), p.ShadeIntensity, 1e-12)
			require.GreaterOrEqual(t, len(p.Vertices), 3)
			require.Greater(t, signedArea(p.Vertices), 0.0, o.ID)
		}
	}
}

func TestBuildingShadowIsConvexHull(t *testing.T) {
	house := allTypes()[0]
	for az := 90.0; az <= 270; az += 15 {
		p, err := Project(house, sunAt(30, az), nil)
		require.NoError(t, err)
		require.NotNil(t, p)
		requireConvexCCW(t, p.Vertices)

		// the footprint itself is always in shadow
		for _, c := range buildingFootprint(house, location(house)) {
			for i := range p.Vertices {
				a, b := p.Vertices[i], p.Vertices[(i+1)%len(p.Vertices)]
				require.GreaterOrEqual(t, cross(a, b, c), -1e-9)
			}
		}
	}
}

func TestTreeShadowVertexCount(t *testing.T) {
	for _, o := range allTypes()[3:] {
		p, err := Project(o, sunAt(40, 150), nil)
		require.NoError(t, err)
		require.NotNil(t, p)
		require.GreaterOrEqual(t, len(p.Vertices), 12)
		require.LessOrEqual(t, len(p.Vertices), 18)
	}

	sapling := obstacle.Obstacle{ID: "sapling", Type: obstacle.DeciduousTree, Direction: 0, Distance: 2, Height: 2, Width: 0.2}
	p, err := Project(sapling, sunAt(40, 150), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.GreaterOrEqual(t, len(p.Vertices), 12)
}

func TestWallShadow(t *testing.T) {
	fence := allTypes()[1]

	p, err := Project(fence, sunAt(45, 180), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Vertices, 4)
	require.InDelta(t, 8, signedArea(p.Vertices), 1e-9)

	// sun shining along the fence line
	p, err = Project(fence, sunAt(30, 90), nil)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestProjectRejectsInvalidInput(t *testing.T) {
	_, err := Project(obstacle.Obstacle{ID: "x", Type: obstacle.Fence}, sunAt(30, 180), nil)
	require.ErrorIs(t, err, obstacle.ErrInvalidObstacle)

	_, err = Project(allTypes()[0], sunAt(30, 180), &PlotSlope{Angle: 95})
	require.ErrorIs(t, err, ErrInvalidSlope)
}

func TestProjectAll(t *testing.T) {
	polys, err := ProjectAll(allTypes(), sunAt(35, 160), nil)
	require.NoError(t, err)
	require.Len(t, polys, 5)
	for i, p := range polys {
		require.Equal(t, allTypes()[i].ID, p.ObstacleID)
	}

	polys, err = ProjectAll(allTypes(), sunAt(-1, 160), nil)
	require.NoError(t, err)
	require.Empty(t, polys)

	bad := append(allTypes(), obstacle.Obstacle{ID: "bad", Type: "shrub", Distance: 1, Height: 1, Width: 1})
	_, err = ProjectAll(bad, sunAt(35, 160), nil)
	require.ErrorIs(t, err, obstacle.ErrInvalidObstacle)
	require.Contains(t, err.Error(), "obstacle 5")
}

func TestConvexHull(t *testing.T) {
	pts := []Vec2{{1, 1}, {2, 2}, {0, 0}, {2, 0}, {1, 0}, {0, 2}, {0, 1}, {0, 0}}
	require.Equal(t, []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, ConvexHull(pts))

	require.Nil(t, ConvexHull([]Vec2{{0, 0}, {1, 1}}))
	require.Nil(t, ConvexHull([]Vec2{{0, 0}, {1, 1}, {2, 2}, {3, 3}}))
	require.Nil(t, ConvexHull([]Vec2{{1, 1}, {1, 1}, {1, 1}}))
}

func TestSlopeAdjustedShadowLength(t *testing.T) {
	require.Equal(t, 10.0, SlopeAdjustedShadowLength(10, 0, nil))

	s := &PlotSlope{Angle: 30, Aspect: 0}
	require.InDelta(t, 10*(1+math.Tan(math.Pi/6)), SlopeAdjustedShadowLength(10, 180, s), 1e-9)
	require.InDelta(t, 10*MinSlopeLengthFactor, SlopeAdjustedShadowLength(10, 0, s), 1e-9)
	require.InDelta(t, 10, SlopeAdjustedShadowLength(10, 90, s), 1e-9)

	steep := &PlotSlope{Angle: 60, Aspect: 0}
	require.InDelta(t, 10*MaxSlopeLengthFactor, SlopeAdjustedShadowLength(10, 180, steep), 1e-9)
}

func TestPlotSlopeValidate(t *testing.T) {
	require.NoError(t, PlotSlope{}.Validate())
	require.NoError(t, PlotSlope{Angle: 45, Aspect: 360}.Validate())
	require.ErrorIs(t, PlotSlope{Angle: -1}.Validate(), ErrInvalidSlope)
	require.ErrorIs(t, PlotSlope{Angle: 90}.Validate(), ErrInvalidSlope)
	require.ErrorIs(t, PlotSlope{Angle: 10, Aspect: 400}.Validate(), ErrInvalidSlope)
}

func TestGeoRoundTrip(t *testing.T) {
	origin := solar.Coordinates{Latitude: 45.5152, Longitude: -122.6784}
	for _, v := range []Vec2{{0, 0}, {30, -20}, {-99.5, 100}, {0.001, 0.002}} {
		back := FromLatLng(origin, ToLatLng(origin, v))
		require.InDelta(t, v.X, back.X, 1e-6)
		require.InDelta(t, v.Y, back.Y, 1e-6)
	}

	// one meter north is the same angle everywhere, one meter east is not
	eq := ToLatLng(solar.Coordinates{}, Vec2{1, 1})
	hi := ToLatLng(solar.Coordinates{Latitude: 60}, Vec2{1, 1})
	require.InDelta(t, eq.Latitude, hi.Latitude-60, 1e-12)
	require.InDelta(t, 2*eq.Longitude, hi.Longitude, 1e-9)

	pole := ToLatLng(solar.Coordinates{Latitude: 90, Longitude: 10}, Vec2{5, 0})
	require.False(t, math.IsNaN(pole.Longitude))
}

func TestToGeo(t *testing.T) {
	origin := solar.Coordinates{Latitude: 45.5152, Longitude: -122.6784}
	p, err := Project(allTypes()[1], sunAt(45, 180), nil)
	require.NoError(t, err)

	g := p.ToGeo(origin)
	require.Equal(t, p.ObstacleID, g.ObstacleID)
	require.Len(t, g.Vertices, len(p.Vertices))
	for i, v := range g.Vertices {
		back := FromLatLng(origin, v)
		require.InDelta(t, p.Vertices[i].X, back.X, 1e-6)
		require.InDelta(t, p.Vertices[i].Y, back.Y, 1e-6)
	}
}
