package solar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidCoordinates is returned when latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

const deg = math.Pi / 180

// Coordinates is a point on Earth in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// Validate fails on out-of-range or NaN values. Values are never clamped.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinates, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinates, c.Longitude)
	}
	return nil
}

// String renders the coordinates with enough precision for cache keys and logs.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}

// NormalizeDegrees maps an angle onto [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
