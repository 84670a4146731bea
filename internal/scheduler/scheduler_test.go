package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/johnhkchen/solar-sim/internal/exposure"
	"github.com/johnhkchen/solar-sim/internal/garden"
	"github.com/johnhkchen/solar-sim/internal/logger"
	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
	"github.com/johnhkchen/solar-sim/internal/store"
	"github.com/johnhkchen/solar-sim/internal/sunhours"
)

func newScheduler(t *testing.T, plots []garden.Plot, st store.Store) *Scheduler {
	t.Helper()
	integ, err := sunhours.New(sunhours.Config{Interval: 15 * time.Minute})
	require.NoError(t, err)
	calc := exposure.NewCalculator(integ, nil, logger.Nop(), exposure.Options{Workers: 2})

	s := New(plots, time.Hour, 3, calc, st, logger.Nop())
	s.now = func() time.Time { return time.Date(2024, 6, 21, 17, 30, 0, 0, time.UTC) }
	return s
}

func TestRunOnceStoresEveryPlot(t *testing.T) {
	plots := []garden.Plot{
		{
			Name:        "north-bed",
			Coordinates: solar.Coordinates{Latitude: 45.5152, Longitude: -122.6784},
			Obstacles: []obstacle.Obstacle{
				{ID: "oak", Type: obstacle.DeciduousTree, Direction: 180, Distance: 5, Height: 12, Width: 8},
			},
		},
		{Name: "herbs", Coordinates: solar.Coordinates{Latitude: 45.515, Longitude: -122.679}},
	}
	st := store.NewMemoryStore(0, 0)
	s := newScheduler(t, plots, st)

	require.Equal(t, 2, s.RunOnce(context.Background()))

	got, err := st.Get(context.Background(), store.PlotKey("north-bed"))
	require.NoError(t, err)
	require.Len(t, got.Days, 3)
	require.Equal(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), got.From)
	require.Equal(t, time.Date(2024, 6, 23, 0, 0, 0, 0, time.UTC), got.To)
	require.Equal(t, 1, got.TreeCount)
	require.Greater(t, got.Average.TreeShadow, 0.0)

	_, err = st.Get(context.Background(), store.PlotKey("herbs"))
	require.NoError(t, err)
}

func TestRunOnceSkipsInvalidPlots(t *testing.T) {
	plots := []garden.Plot{
		{Name: "nowhere", Coordinates: solar.Coordinates{Latitude: 120}},
		{Name: "ok", Coordinates: solar.Coordinates{Latitude: 10, Longitude: 10}},
	}
	st := store.NewMemoryStore(0, 0)
	s := newScheduler(t, plots, st)

	require.Equal(t, 1, s.RunOnce(context.Background()))
	_, err := st.Get(context.Background(), store.PlotKey("nowhere"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStartWithoutPlots(t *testing.T) {
	s := newScheduler(t, nil, store.NewMemoryStore(0, 0))
	require.NoError(t, s.Start())
	s.Stop()
}
