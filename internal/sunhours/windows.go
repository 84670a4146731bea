package sunhours

import (
	"sort"
	"time"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// ShadeWindow is one contiguous interval during which an obstacle cuts the
// direct sun at the observation point.
type ShadeWindow struct {
	ObstacleID     string    `json:"obstacleId"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	ShadeIntensity float64   `json:"shadeIntensity"`
}

// Duration is the length of the window.
func (w ShadeWindow) Duration() time.Duration {
	return w.EndTime.Sub(w.StartTime)
}

// ShadeWindows samples the day and returns, per obstacle, the runs of sunlit
// samples it blocks.
func (i *Integrator) ShadeWindows(c solar.Coordinates, date time.Time, obstacles []obstacle.Obstacle) ([]ShadeWindow, error) {
	if err := obstacle.ValidateAll(obstacles); err != nil {
		return nil, err
	}
	day, err := i.SampleDay(c, date)
	if err != nil {
		return nil, err
	}
	return day.ShadeWindows(obstacles), nil
}

// ShadeWindows returns, per obstacle, the runs of sunlit samples it blocks.
// Window edges fall on sample boundaries. Windows are sorted by start time,
// then obstacle ID.
func (d SampledDay) ShadeWindows(obstacles []obstacle.Obstacle) []ShadeWindow {
	dayEnd := d.Date.Add(24 * time.Hour)
	open := make([]time.Time, len(obstacles))
	isOpen := make([]bool, len(obstacles))
	var windows []ShadeWindow

	closeWindow := func(idx int, end time.Time) {
		o := obstacles[idx]
		windows = append(windows, ShadeWindow{
			ObstacleID:     o.ID,
			StartTime:      open[idx],
			EndTime:        end,
			ShadeIntensity: o.ShadeIntensity(),
		})
		isOpen[idx] = false
	}

	for _, s := range d.Samples {
		t := s.Position.Time
		for idx, o := range obstacles {
			blocked := s.Sunlit && obstacle.Check(s.Position, o).Blocked
			switch {
			case blocked && !isOpen[idx]:
				open[idx] = t
				isOpen[idx] = true
			case !blocked && isOpen[idx]:
				closeWindow(idx, t)
			}
		}
	}
	for idx := range obstacles {
		if isOpen[idx] {
			closeWindow(idx, dayEnd)
		}
	}

	// Obstacles that let all light through never produce windows, so no
	// window ever carries zero intensity.
	out := windows[:0]
	for _, w := range windows {
		if w.ShadeIntensity > 0 {
			out = append(out, w)
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].StartTime.Equal(out[b].StartTime) {
			return out[a].StartTime.Before(out[b].StartTime)
		}
		return out[a].ObstacleID < out[b].ObstacleID
	})
	return out
}
