package obstacle

import (
	"math"

	"github.com/johnhkchen/solar-sim/internal/solar"
)

// BlockingResult is the effect of one obstacle on the sun at one instant.
type BlockingResult struct {
	Blocked        bool    `json:"blocked"`
	ShadeIntensity float64 `json:"shadeIntensity"` // 0 = no shade, 1 = opaque
}

// AngularHeight is the elevation of the obstacle's top seen from the
// observation point, in degrees.
func AngularHeight(o Obstacle) float64 {
	return math.Atan(o.Height/o.Distance) * 180 / math.Pi
}

// AngularHalfWidth is half the horizontal angle the obstacle spans, in degrees.
func AngularHalfWidth(o Obstacle) float64 {
	return math.Atan((o.Width/2)/o.Distance) * 180 / math.Pi
}

// AngularDifference is the shortest arc between two bearings, in [0, 180].
func AngularDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Check decides whether o stands between the observer and the sun.
func Check(sun solar.SolarPosition, o Obstacle) BlockingResult {
	if sun.Altitude > AngularHeight(o) {
		return BlockingResult{}
	}
	if AngularDifference(sun.Azimuth, o.Direction) > AngularHalfWidth(o) {
		return BlockingResult{}
	}
	return BlockingResult{Blocked: true, ShadeIntensity: o.ShadeIntensity()}
}

// Transmittance is the fraction of direct sunlight that reaches the observer.
// Light crossing several obstacles is attenuated by each in turn, so the
// transparencies of all blocking obstacles multiply.
func Transmittance(sun solar.SolarPosition, obstacles []Obstacle) float64 {
	t := 1.0
	for _, o := range obstacles {
		if Check(sun, o).Blocked {
			t *= o.Type.Transparency()
		}
	}
	return t
}

// Combined folds several obstacles into a single BlockingResult.
func Combined(sun solar.SolarPosition, obstacles []Obstacle) BlockingResult {
	t := Transmittance(sun, obstacles)
	if t >= 1 {
		return BlockingResult{}
	}
	return BlockingResult{Blocked: true, ShadeIntensity: 1 - t}
}
