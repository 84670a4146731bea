package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// ObstacleHash fingerprints an obstacle list. Order matters.
func ObstacleHash(obstacles []obstacle.Obstacle) uint64 {
	d := xxhash.New()
	for _, o := range obstacles {
		// Obstacle holds only plain fields, so encoding cannot fail.
		b, _ := json.Marshal(o)
		_, _ = d.Write(b)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}

// Key identifies a seasonal result by location, obstacle set and date range.
func Key(c solar.Coordinates, obstacles []obstacle.Obstacle, from, to time.Time) string {
	return fmt.Sprintf("exposure:%s:%016x:%s:%s",
		c, ObstacleHash(obstacles),
		solar.StartOfDay(from).Format(time.DateOnly),
		solar.StartOfDay(to).Format(time.DateOnly),
	)
}

// PlotKey identifies the latest scheduled result for a configured plot.
func PlotKey(name string) string {
	return "plot:" + name
}
