package sunhours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

var (
	portland = solar.Coordinates{Latitude: 45.5152, Longitude: -122.6784}
	svalbard = solar.Coordinates{Latitude: 80, Longitude: 15}
)

func newIntegrator(t *testing.T) *Integrator {
	t.Helper()
	i, err := New(DefaultConfig())
	require.NoError(t, err)
	return i
}

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.Equal(t, 288, DefaultConfig().SamplesPerDay())
	require.NoError(t, Config{Interval: 15 * time.Minute}.Validate())

	for _, d := range []time.Duration{0, -time.Minute, 7 * time.Minute, 25 * time.Hour} {
		_, err := New(Config{Interval: d})
		require.ErrorIs(t, err, ErrInvalidInterval, d.String())
	}
}

func TestSunHoursPortland(t *testing.T) {
	i := newIntegrator(t)

	summer, err := i.SunHours(portland, date("2024-06-21"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, summer, 15.0)
	require.LessOrEqual(t, summer, 16.0)

	winter, err := i.SunHours(portland, date("2024-12-21"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, winter, 8.0)
	require.LessOrEqual(t, winter, 9.5)
}

func TestSunHoursPolar(t *testing.T) {
	i := newIntegrator(t)

	h, err := i.SunHours(svalbard, date("2024-06-21"))
	require.NoError(t, err)
	require.Equal(t, 24.0, h)

	h, err = i.SunHours(svalbard, date("2024-12-21"))
	require.NoError(t, err)
	require.Equal(t, 0.0, h)
}

func TestSunHoursCoarseIntervalAgrees(t *testing.T) {
	fine := newIntegrator(t)
	coarse, err := New(Config{Interval: 15 * time.Minute})
	require.NoError(t, err)

	d := date("2024-03-20")
	a, err := fine.SunHours(portland, d)
	require.NoError(t, err)
	b, err := coarse.SunHours(portland, d)
	require.NoError(t, err)
	require.InDelta(t, a, b, 0.5)
}

func TestSunHoursRejectsInvalidCoordinates(t *testing.T) {
	_, err := newIntegrator(t).SunHours(solar.Coordinates{Latitude: 91}, date("2024-06-21"))
	require.ErrorIs(t, err, solar.ErrInvalidCoordinates)
}

func TestDaily(t *testing.T) {
	d, err := newIntegrator(t).Daily(svalbard, date("2024-06-21").Add(13*time.Hour))
	require.NoError(t, err)
	require.Equal(t, date("2024-06-21"), d.Date)
	require.Equal(t, solar.MidnightSun, d.PolarCondition)
	require.Equal(t, 24.0, d.SunHours)
	require.Nil(t, d.SunTimes.Sunrise)
}

func TestRange(t *testing.T) {
	i := newIntegrator(t)

	days, err := i.Range(portland, date("2024-06-01"), date("2024-06-07"))
	require.NoError(t, err)
	require.Len(t, days, 7)
	for k, d := range days {
		require.Equal(t, date("2024-06-01").AddDate(0, 0, k), d.Date)
		require.GreaterOrEqual(t, d.SunHours, 0.0)
		require.LessOrEqual(t, d.SunHours, 24.0)
	}

	_, err = i.Range(portland, date("2024-06-07"), date("2024-06-01"))
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDaysSingleDay(t *testing.T) {
	days, err := Days(date("2024-01-01").Add(5*time.Hour), date("2024-01-01").Add(20*time.Hour))
	require.NoError(t, err)
	require.Len(t, days, 1)
}

func TestEffectiveSunHours(t *testing.T) {
	i := newIntegrator(t)
	d := date("2024-06-21")

	full, err := i.SunHours(portland, d)
	require.NoError(t, err)

	none, err := i.EffectiveSunHours(portland, d, nil)
	require.NoError(t, err)
	require.InDelta(t, full, none, 1e-9)

	// a tall wall to the south still leaves the low morning and evening sun
	wall := obstacle.Obstacle{ID: "wall", Type: obstacle.Building, Direction: 180, Distance: 2, Height: 20, Width: 6}
	eff, err := i.EffectiveSunHours(portland, d, []obstacle.Obstacle{wall})
	require.NoError(t, err)
	require.Less(t, eff, full)
	require.Greater(t, eff, 0.0)

	tree := obstacle.Obstacle{ID: "oak", Type: obstacle.DeciduousTree, Direction: 180, Distance: 2, Height: 20, Width: 6}
	partial, err := i.EffectiveSunHours(portland, d, []obstacle.Obstacle{tree})
	require.NoError(t, err)
	require.Greater(t, partial, eff)
	require.Less(t, partial, full)

	_, err = i.EffectiveSunHours(portland, d, []obstacle.Obstacle{{ID: "bad", Type: obstacle.Fence}})
	require.ErrorIs(t, err, obstacle.ErrInvalidObstacle)
}

func TestShadeWindows(t *testing.T) {
	i := newIntegrator(t)
	d := date("2024-06-21")
	tree := obstacle.Obstacle{ID: "oak", Type: obstacle.DeciduousTree, Direction: 180, Distance: 2, Height: 20, Width: 6}
	hedge := obstacle.Obstacle{ID: "hedge", Type: obstacle.Hedge, Direction: 0, Distance: 5, Height: 1, Width: 1}

	windows, err := i.ShadeWindows(portland, d, []obstacle.Obstacle{tree, hedge})
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	var total time.Duration
	for k, w := range windows {
		require.Equal(t, "oak", w.ObstacleID)
		require.InDelta(t, 0.6, w.ShadeIntensity, 1e-9)
		require.True(t, w.EndTime.After(w.StartTime))
		if k > 0 {
			require.False(t, w.StartTime.Before(windows[k-1].StartTime))
		}
		total += w.Duration()
	}

	full, err := i.SunHours(portland, d)
	require.NoError(t, err)
	eff, err := i.EffectiveSunHours(portland, d, []obstacle.Obstacle{tree})
	require.NoError(t, err)
	// every blocked sample loses 60% of its light
	require.InDelta(t, full-eff, total.Hours()*0.6, 1e-9)
}

func TestShadeWindowsPolarNight(t *testing.T) {
	wall := obstacle.Obstacle{ID: "wall", Type: obstacle.Building, Direction: 180, Distance: 1, Height: 50, Width: 50}
	windows, err := newIntegrator(t).ShadeWindows(svalbard, date("2024-12-21"), []obstacle.Obstacle{wall})
	require.NoError(t, err)
	require.Empty(t, windows)
}

func TestSampledDayAgreesWithSunHours(t *testing.T) {
	i := newIntegrator(t)
	for _, c := range []solar.Coordinates{portland, svalbard, {Latitude: -33.87, Longitude: 151.21}} {
		for _, d := range []string{"2024-03-20", "2024-06-21", "2024-12-21"} {
			want, err := i.SunHours(c, date(d))
			require.NoError(t, err)
			day, err := i.SampleDay(c, date(d).Add(9*time.Hour))
			require.NoError(t, err)

			require.Equal(t, date(d), day.Date)
			require.Len(t, day.Samples, 288)
			require.Equal(t, want, day.SunHours(), "%s %s", c, d)
		}
	}
}

func TestBlockedHours(t *testing.T) {
	day, err := newIntegrator(t).SampleDay(portland, date("2024-06-21"))
	require.NoError(t, err)
	require.Zero(t, day.BlockedHours(nil))

	tree := obstacle.Obstacle{ID: "oak", Type: obstacle.DeciduousTree, Direction: 180, Distance: 2, Height: 20, Width: 6}
	blocked := day.BlockedHours([]obstacle.Obstacle{tree})

	var windows time.Duration
	for _, w := range day.ShadeWindows([]obstacle.Obstacle{tree}) {
		windows += w.Duration()
	}
	require.InDelta(t, windows.Hours(), blocked, 1e-9)
	// blocked time ignores how much light the canopy lets through
	require.InDelta(t, day.SunHours()-day.EffectiveSunHours([]obstacle.Obstacle{tree}), 0.6*blocked, 1e-9)
}

func BenchmarkSunHoursYear(b *testing.B) {
	i, err := New(DefaultConfig())
	require.NoError(b, err)
	days, err := Days(date("2024-01-01"), date("2024-12-31"))
	require.NoError(b, err)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, d := range days {
			if _, err := i.SunHours(portland, d); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkSampleDay(b *testing.B) {
	i, err := New(DefaultConfig())
	require.NoError(b, err)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := i.SampleDay(portland, date("2024-06-21")); err != nil {
			b.Fatal(err)
		}
	}
}
