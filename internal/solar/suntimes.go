package solar

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// PolarCondition classifies a calendar day at a location.
type PolarCondition string

const (
	PolarNormal PolarCondition = "normal"
	MidnightSun PolarCondition = "midnight-sun"
	PolarNight  PolarCondition = "polar-night"
)

// SunTimes describes the sun's daily cycle. Sunrise and Sunset are nil when
// the sun does not cross the horizon that day.
type SunTimes struct {
	Sunrise        *time.Time `json:"sunrise"`
	Sunset         *time.Time `json:"sunset"`
	SolarNoon      time.Time  `json:"solarNoon"`
	DayLengthHours float64    `json:"dayLengthHours"`
}

// Polar reports whether rise and set are undefined for the day.
func (s SunTimes) Polar() bool {
	return s.Sunrise == nil || s.Sunset == nil
}

// SunTimesFor returns sunrise, sunset and solar noon for the UTC calendar day
// containing date.
func SunTimesFor(c Coordinates, date time.Time) (SunTimes, error) {
	if err := c.Validate(); err != nil {
		return SunTimes{}, err
	}
	times, _ := sunTimes(c, StartOfDay(date))
	return times, nil
}

// PolarConditionFor classifies the UTC calendar day containing date.
func PolarConditionFor(c Coordinates, date time.Time) (PolarCondition, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	_, cond := sunTimes(c, StartOfDay(date))
	return cond, nil
}

func sunTimes(c Coordinates, day time.Time) (SunTimes, PolarCondition) {
	noon := solarNoon(c, day)
	rise, set := sunrise.SunriseSunset(c.Latitude, c.Longitude, day.Year(), day.Month(), day.Day())

	if rise.IsZero() || set.IsZero() {
		cond := classifyPolar(c, noon)
		times := SunTimes{SolarNoon: noon}
		if cond == MidnightSun {
			times.DayLengthHours = 24
		}
		return times, cond
	}

	rise, set = rise.UTC(), set.UTC()
	return SunTimes{
		Sunrise:        &rise,
		Sunset:         &set,
		SolarNoon:      noon,
		DayLengthHours: set.Sub(rise).Hours(),
	}, PolarNormal
}

// classifyPolar is only consulted when no rise/set exists, so the sun is
// either up all day or down all day. The noon altitude tells which; the
// midnight probe guards the refraction band near the threshold latitude.
func classifyPolar(c Coordinates, noon time.Time) PolarCondition {
	noonAlt := position(c, noon).Altitude
	if noonAlt <= 0 {
		return PolarNight
	}
	midnightAlt := position(c, noon.Add(12*time.Hour)).Altitude
	if midnightAlt > -1 {
		return MidnightSun
	}
	return PolarNormal
}
