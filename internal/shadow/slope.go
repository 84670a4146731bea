package shadow

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSlope is returned for slopes that are vertical or point nowhere.
var ErrInvalidSlope = errors.New("invalid plot slope")

const (
	// MinSlopeLengthFactor and MaxSlopeLengthFactor bound the scalar slope
	// correction applied by SlopeAdjustedShadowLength.
	MinSlopeLengthFactor = 0.5
	MaxSlopeLengthFactor = 2.0
)

// PlotSlope describes planar terrain under the plot. Aspect is the compass
// bearing the slope faces, i.e. the uphill direction.
type PlotSlope struct {
	Angle  float64 `json:"angle" yaml:"angle" validate:"gte=0,lt=90"`
	Aspect float64 `json:"aspect" yaml:"aspect" validate:"gte=0,lte=360"`
}

// Validate rejects negative or vertical slopes and aspects outside [0, 360].
func (s PlotSlope) Validate() error {
	if math.IsNaN(s.Angle) || s.Angle < 0 || s.Angle >= 90 {
		return fmt.Errorf("%w: angle must be within [0, 90), got %v", ErrInvalidSlope, s.Angle)
	}
	if math.IsNaN(s.Aspect) || s.Aspect < 0 || s.Aspect > 360 {
		return fmt.Errorf("%w: aspect must be within [0, 360], got %v", ErrInvalidSlope, s.Aspect)
	}
	return nil
}

// flat treats a nil slope and gentle slopes as level ground.
func flat(s *PlotSlope) bool {
	return s == nil || s.Angle < FlatSlopeThreshold
}

// groundZ is the terrain height at (x, y), zero on flat ground.
func groundZ(s *PlotSlope, p Vec2) float64 {
	if flat(s) {
		return 0
	}
	up := bearing(s.Aspect)
	return math.Tan(s.Angle*math.Pi/180) * (p.X*up.X + p.Y*up.Y)
}

// SlopeAdjustedShadowLength corrects a flat-ground shadow length for terrain.
// Shadows falling downhill lengthen and shadows falling uphill shorten; the
// result stays within [MinSlopeLengthFactor, MaxSlopeLengthFactor] times base.
func SlopeAdjustedShadowLength(base, shadowAzimuth float64, slope *PlotSlope) float64 {
	if flat(slope) {
		return base
	}
	downhill := bearing(slope.Aspect + 180)
	dir := bearing(shadowAzimuth)
	dot := dir.X*downhill.X + dir.Y*downhill.Y

	factor := 1 + dot*math.Tan(slope.Angle*math.Pi/180)
	factor = math.Max(MinSlopeLengthFactor, math.Min(MaxSlopeLengthFactor, factor))
	return base * factor
}
