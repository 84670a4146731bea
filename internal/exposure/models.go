package exposure

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
	"github.com/johnhkchen/solar-sim/internal/sunhours"
)

// ErrBaseExposureUnavailable is returned by sources that have no data for a
// location or date.
var ErrBaseExposureUnavailable = errors.New("base exposure unavailable")

// BaseExposure is terrain and building shading computed elsewhere. At most one
// field is expected; ShadowHours wins when both are set.
type BaseExposure struct {
	// ShadowHours is direct-sun time lost to terrain and buildings.
	ShadowHours *float64 `json:"shadowHours,omitempty"`
	// ExposureFraction is the share of theoretical sun that survives terrain
	// and buildings, in [0, 1].
	ExposureFraction *float64 `json:"fraction,omitempty"`
}

// terrainHours resolves the shading into hours within [0, theoretical].
func (b BaseExposure) terrainHours(theoretical float64) (float64, bool) {
	var h float64
	switch {
	case b.ShadowHours != nil && !math.IsNaN(*b.ShadowHours):
		h = *b.ShadowHours
	case b.ExposureFraction != nil && !math.IsNaN(*b.ExposureFraction):
		f := math.Max(0, math.Min(1, *b.ExposureFraction))
		h = theoretical * (1 - f)
	default:
		return 0, false
	}
	return math.Max(0, math.Min(theoretical, h)), true
}

// BaseExposureSource supplies terrain and building shading per day.
type BaseExposureSource interface {
	Name() string
	BaseExposure(ctx context.Context, c solar.Coordinates, date time.Time) (BaseExposure, error)
}

// Request describes one observation point and what surrounds it.
type Request struct {
	Coordinates solar.Coordinates   `json:"coordinates"`
	Obstacles   []obstacle.Obstacle `json:"obstacles"`
	// BaseExposure overrides the configured source for every day.
	BaseExposure *BaseExposure `json:"baseExposure,omitempty"`
}

// SunHoursBreakdown splits a day's sun into what the sky offers and what the
// surroundings take away. Effective = Theoretical − TerrainAndBuildingShadow −
// TreeShadow + OverlapShadow.
type SunHoursBreakdown struct {
	Theoretical              float64 `json:"theoretical"`
	TerrainAndBuildingShadow float64 `json:"terrainAndBuildingShadow"`
	TreeShadow               float64 `json:"treeShadow"`
	OverlapShadow            float64 `json:"overlapShadow"`
	Effective                float64 `json:"effective"`
	BaseExposureAvailable    bool    `json:"baseExposureAvailable"`
}

// DailyExposure is the breakdown for one UTC day.
type DailyExposure struct {
	Date           time.Time              `json:"date"`
	PolarCondition solar.PolarCondition   `json:"polarCondition"`
	Breakdown      SunHoursBreakdown      `json:"breakdown"`
	TreeWindows    []sunhours.ShadeWindow `json:"treeWindows,omitempty"`
}

// SeasonalExposure aggregates daily breakdowns over a date range.
type SeasonalExposure struct {
	Coordinates   solar.Coordinates   `json:"coordinates"`
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	Days          []DailyExposure     `json:"days"`
	Average       SunHoursBreakdown   `json:"average"`
	LightCategory LightCategory       `json:"lightCategory"`
	TreeCount     int                 `json:"treeCount"`
	Obstacles     []obstacle.Obstacle `json:"obstacles"`
	ComputedAt    time.Time           `json:"computedAt"`
}
