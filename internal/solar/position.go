package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	msolar "github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// SolarPosition is the sun's place in the local sky at one instant.
type SolarPosition struct {
	Altitude float64   `json:"altitude"` // degrees above the horizon, negative below
	Azimuth  float64   `json:"azimuth"`  // compass bearing, 0 = north, clockwise
	Time     time.Time `json:"time"`     // always UTC
}

// AboveHorizon reports whether the sun's centre is above the geometric horizon.
func (p SolarPosition) AboveHorizon() bool {
	return p.Altitude > 0
}

// Position computes the sun's altitude and azimuth for an observer at c.
func Position(c Coordinates, t time.Time) (SolarPosition, error) {
	if err := c.Validate(); err != nil {
		return SolarPosition{}, err
	}
	return position(c, t), nil
}

func position(c Coordinates, t time.Time) SolarPosition {
	t = t.UTC()
	e := newEphemeris(c, t)
	alt, az := e.horizontal(julian.TimeToJD(t))
	return SolarPosition{Altitude: alt, Azimuth: az, Time: t}
}

// Ephemeris evaluates the sun for one observer over one UTC day. Nutation
// moves the equinox by well under a second of time per day, so the
// equation of the equinoxes is computed once at noon and reused.
type Ephemeris struct {
	c              Coordinates
	sinLat, cosLat float64
	eqEquinoxes    unit.Time
}

// NewEphemeris validates c and prepares an Ephemeris for the UTC day
// containing day.
func NewEphemeris(c Coordinates, day time.Time) (*Ephemeris, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return newEphemeris(c, StartOfDay(day).Add(12*time.Hour)), nil
}

func newEphemeris(c Coordinates, ref time.Time) *Ephemeris {
	φ := c.Latitude * deg
	return &Ephemeris{
		c:           c,
		sinLat:      math.Sin(φ),
		cosLat:      math.Cos(φ),
		eqEquinoxes: nutation.NutationInRA(julian.TimeToJD(ref)).Time(),
	}
}

// At returns the sun's position at t.
func (e *Ephemeris) At(t time.Time) SolarPosition {
	t = t.UTC()
	alt, az := e.horizontal(julian.TimeToJD(t))
	return SolarPosition{Altitude: alt, Azimuth: az, Time: t}
}

// Altitude returns only the altitude at t, in degrees. It matches
// At(t).Altitude exactly.
func (e *Ephemeris) Altitude(t time.Time) float64 {
	jd := julian.TimeToJD(t.UTC())
	ra, dec := msolar.ApparentEquatorial(jd)
	sinδ, cosδ := math.Sincos(dec.Rad())
	return e.altitude(sinδ, cosδ, math.Cos(e.hourAngle(jd, ra.Rad())))
}

// horizontal returns geometric altitude and azimuth in degrees. Refraction is
// not applied.
func (e *Ephemeris) horizontal(jd float64) (alt, az float64) {
	ra, dec := msolar.ApparentEquatorial(jd)
	h := e.hourAngle(jd, ra.Rad())
	sinδ, cosδ := math.Sincos(dec.Rad())
	sinH, cosH := math.Sin(h), math.Cos(h)

	alt = e.altitude(sinδ, cosδ, cosH)

	// atan2 yields the azimuth measured westward from south.
	fromSouth := math.Atan2(sinH, cosH*e.sinLat-sinδ/cosδ*e.cosLat)
	az = NormalizeDegrees(fromSouth/deg + 180)
	return alt, az
}

func (e *Ephemeris) altitude(sinδ, cosδ, cosH float64) float64 {
	sinAlt := e.sinLat*sinδ + e.cosLat*cosδ*cosH
	sinAlt = math.Max(-1, math.Min(1, sinAlt))
	return math.Asin(sinAlt) / deg
}

func (e *Ephemeris) hourAngle(jd, raRad float64) float64 {
	θ := (sidereal.Mean(jd) + e.eqEquinoxes).Mod1().Rad()
	return wrapHourAngle(θ + e.c.Longitude*deg - raRad)
}

// hourAngle is the local hour angle of the sun in radians, wrapped to (-π, π].
func hourAngle(c Coordinates, jd, raRad float64) float64 {
	return wrapHourAngle(sidereal.Apparent(jd).Rad() + c.Longitude*deg - raRad)
}

func wrapHourAngle(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h > math.Pi {
		h -= 2 * math.Pi
	} else if h <= -math.Pi {
		h += 2 * math.Pi
	}
	return h
}

// solarNoon finds the instant the sun crosses the local meridian on the UTC
// day starting at day. The first guess ignores the equation of time; three
// corrections bring it well under a second.
func solarNoon(c Coordinates, day time.Time) time.Time {
	guess := 12*time.Hour - time.Duration(c.Longitude/15*float64(time.Hour))
	t := day.Add(guess)
	for i := 0; i < 3; i++ {
		jd := julian.TimeToJD(t)
		ra, _ := msolar.ApparentEquatorial(jd)
		h := hourAngle(c, jd, ra.Rad())
		t = t.Add(-time.Duration(h / (2 * math.Pi) * float64(24*time.Hour)))
	}
	return t.UTC()
}
