package sunhours

import (
	"errors"
	"fmt"
	"time"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// DefaultInterval gives 288 samples per day.
const DefaultInterval = 5 * time.Minute

// MaxRangeDays bounds Range and Days so one call stays cheap.
const MaxRangeDays = 366 * 10

var (
	// ErrInvalidInterval is returned for sampling intervals that do not tile a day.
	ErrInvalidInterval = errors.New("invalid sampling interval")
	// ErrInvalidDateRange is returned when a range ends before it starts or is too long.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Config controls the sampling resolution.
type Config struct {
	Interval time.Duration
}

// DefaultConfig samples every five minutes.
func DefaultConfig() Config {
	return Config{Interval: DefaultInterval}
}

// Validate requires an interval that divides 24h evenly.
func (c Config) Validate() error {
	if c.Interval <= 0 || c.Interval > 24*time.Hour {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	if (24*time.Hour)%c.Interval != 0 {
		return fmt.Errorf("%w: %s does not divide 24h", ErrInvalidInterval, c.Interval)
	}
	return nil
}

// SamplesPerDay is the number of instants examined per UTC day.
func (c Config) SamplesPerDay() int {
	return int(24 * time.Hour / c.Interval)
}

// DailySunData summarises one calendar day at one location.
type DailySunData struct {
	Date           time.Time            `json:"date"`
	SunHours       float64              `json:"sunHours"`
	SunTimes       solar.SunTimes       `json:"sunTimes"`
	PolarCondition solar.PolarCondition `json:"polarCondition"`
}

// Integrator turns sun positions into hours of sunlight by sampling a UTC day
// at a fixed interval.
//
// Sampled totals are accurate to about one interval (±2–3 minutes at the
// default resolution) because crossings of the horizon fall between samples.
// Polar days skip sampling: near the poles the sun can graze the horizon for
// hours and sampling would miscount it.
type Integrator struct {
	cfg Config
}

// New builds an Integrator after validating cfg.
func New(cfg Config) (*Integrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{cfg: cfg}, nil
}

// Config returns the sampling configuration.
func (i *Integrator) Config() Config {
	return i.cfg
}

// Sample is one instant of a sampled day.
type Sample struct {
	Position solar.SolarPosition
	// Sunlit is true when direct sun reaches an unobstructed observer.
	Sunlit bool
}

// SampledDay is one UTC day sampled at the integrator's interval, starting
// at midnight. Theoretical hours, obstacle shading and shade windows can all
// be read from the same samples.
type SampledDay struct {
	Date           time.Time
	PolarCondition solar.PolarCondition
	Interval       time.Duration
	Samples        []Sample
}

// SampleDay evaluates every sample of the UTC day containing date.
func (i *Integrator) SampleDay(c solar.Coordinates, date time.Time) (SampledDay, error) {
	cond, err := solar.PolarConditionFor(c, date)
	if err != nil {
		return SampledDay{}, err
	}
	eph, err := solar.NewEphemeris(c, date)
	if err != nil {
		return SampledDay{}, err
	}

	start := solar.StartOfDay(date)
	n := i.cfg.SamplesPerDay()
	out := make([]Sample, n)
	for k := 0; k < n; k++ {
		pos := eph.At(start.Add(time.Duration(k) * i.cfg.Interval))
		out[k] = Sample{Position: pos, Sunlit: sunlit(cond, pos)}
	}
	return SampledDay{Date: start, PolarCondition: cond, Interval: i.cfg.Interval, Samples: out}, nil
}

// SunHours counts the sunlit samples. It agrees with Integrator.SunHours,
// including the polar fast paths.
func (d SampledDay) SunHours() float64 {
	n := 0
	for _, s := range d.Samples {
		if s.Sunlit {
			n++
		}
	}
	return float64(n) * d.Interval.Hours()
}

// BlockedHours is the sunlit time during which at least one obstacle stands
// in front of the sun, however translucent.
func (d SampledDay) BlockedHours(obstacles []obstacle.Obstacle) float64 {
	if len(obstacles) == 0 {
		return 0
	}
	n := 0
	for _, s := range d.Samples {
		if s.Sunlit && obstacle.Combined(s.Position, obstacles).Blocked {
			n++
		}
	}
	return float64(n) * d.Interval.Hours()
}

// EffectiveSunHours weights every sunlit sample by the fraction of light
// that gets past the obstacles.
func (d SampledDay) EffectiveSunHours(obstacles []obstacle.Obstacle) float64 {
	step := d.Interval.Hours()
	total := 0.0
	for _, s := range d.Samples {
		if s.Sunlit {
			total += step * obstacle.Transmittance(s.Position, obstacles)
		}
	}
	return total
}

// SunHours is the total hours the sun is above the horizon on the UTC day
// containing date.
func (i *Integrator) SunHours(c solar.Coordinates, date time.Time) (float64, error) {
	cond, err := solar.PolarConditionFor(c, date)
	if err != nil {
		return 0, err
	}
	switch cond {
	case solar.MidnightSun:
		return 24, nil
	case solar.PolarNight:
		return 0, nil
	}

	eph, err := solar.NewEphemeris(c, date)
	if err != nil {
		return 0, err
	}
	start := solar.StartOfDay(date)
	count := 0
	for k := 0; k < i.cfg.SamplesPerDay(); k++ {
		if eph.Altitude(start.Add(time.Duration(k)*i.cfg.Interval)) > 0 {
			count++
		}
	}
	return float64(count) * i.cfg.Interval.Hours(), nil
}

// Daily bundles sun hours, sun times and the polar condition for one day.
func (i *Integrator) Daily(c solar.Coordinates, date time.Time) (DailySunData, error) {
	hours, err := i.SunHours(c, date)
	if err != nil {
		return DailySunData{}, err
	}
	day := solar.StartOfDay(date)
	times, err := solar.SunTimesFor(c, day)
	if err != nil {
		return DailySunData{}, err
	}
	cond, err := solar.PolarConditionFor(c, day)
	if err != nil {
		return DailySunData{}, err
	}
	return DailySunData{Date: day, SunHours: hours, SunTimes: times, PolarCondition: cond}, nil
}

// Range returns DailySunData for every day from..to inclusive.
func (i *Integrator) Range(c solar.Coordinates, from, to time.Time) ([]DailySunData, error) {
	days, err := Days(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]DailySunData, 0, len(days))
	for _, d := range days {
		data, err := i.Daily(c, d)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// EffectiveSunHours weights every sunlit sample by the fraction of light that
// gets past the obstacles.
func (i *Integrator) EffectiveSunHours(c solar.Coordinates, date time.Time, obstacles []obstacle.Obstacle) (float64, error) {
	if err := obstacle.ValidateAll(obstacles); err != nil {
		return 0, err
	}
	day, err := i.SampleDay(c, date)
	if err != nil {
		return 0, err
	}
	return day.EffectiveSunHours(obstacles), nil
}

// Days lists the UTC calendar days from..to inclusive.
func Days(from, to time.Time) ([]time.Time, error) {
	start, end := solar.StartOfDay(from), solar.StartOfDay(to)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	n := int(end.Sub(start).Hours()/24) + 1
	if n > MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days exceeds %d", ErrInvalidDateRange, n, MaxRangeDays)
	}
	days := make([]time.Time, 0, n)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

func sunlit(cond solar.PolarCondition, pos solar.SolarPosition) bool {
	switch cond {
	case solar.MidnightSun:
		return true
	case solar.PolarNight:
		return false
	default:
		return pos.AboveHorizon()
	}
}
