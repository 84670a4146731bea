package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/johnhkchen/solar-sim/internal/solar"
)

// parseCoordinates reads lat and lng query parameters.
func parseCoordinates(c *fiber.Ctx) (solar.Coordinates, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return solar.Coordinates{}, errors.New("lat and lng query parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return solar.Coordinates{}, fmt.Errorf("invalid lat: %w", err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return solar.Coordinates{}, fmt.Errorf("invalid lng: %w", err)
	}

	coords := solar.Coordinates{Latitude: lat, Longitude: lng}
	if err := validate.Struct(coords); err != nil {
		return solar.Coordinates{}, err
	}
	return coords, nil
}

func queryDate(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return parseTime(s)
}

func queryRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("from and to query parameters are required")
	}
	return parseRange(from, to)
}

// parseRange parses an inclusive day range no longer than MaxRangeDays.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := parseTime(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	from, to = solar.StartOfDay(from), solar.StartOfDay(to)
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("range of %d days exceeds %d", days, MaxRangeDays)
	}
	return from, to, nil
}

// parseTime accepts a calendar date, RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use YYYY-MM-DD, RFC3339 or unix seconds")
}
