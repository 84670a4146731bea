package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnhkchen/solar-sim/internal/exposure"
	"github.com/johnhkchen/solar-sim/internal/garden"
	"github.com/johnhkchen/solar-sim/internal/metrics"
	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/shadow"
	"github.com/johnhkchen/solar-sim/internal/solar"
	"github.com/johnhkchen/solar-sim/internal/store"
	"github.com/johnhkchen/solar-sim/internal/sunhours"
)

var validate = validator.New()

// MaxRangeDays bounds date ranges accepted over HTTP.
const MaxRangeDays = 366

// Deps are the services the handlers call into.
type Deps struct {
	Integrator *sunhours.Integrator
	Calculator *exposure.Calculator
	Store      store.Store
	// Garden holds the configured plots; nil when no garden file is loaded.
	Garden *garden.Garden
	Log    *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")
	v1.Get("/sun/position", h.sunPosition)
	v1.Get("/sun/times", h.sunTimes)
	v1.Get("/sun/hours", h.sunHours)
	v1.Post("/shadows", h.shadows)
	v1.Post("/exposure/daily", h.dailyExposure)
	v1.Post("/exposure/seasonal", h.seasonalExposure)
	v1.Get("/plots/:name/exposure", h.plotExposure)
	v1.Get("/plots/:name/shadows", h.plotShadows)
}

type handlers struct {
	Deps
}

func (h *handlers) sunPosition(c *fiber.Ctx) error {
	coords, err := parseCoordinates(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	t := time.Now().UTC()
	if s := c.Query("time"); s != "" {
		if t, err = parseTime(s); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	pos, err := solar.Position(coords, t)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(pos)
}

func (h *handlers) sunTimes(c *fiber.Ctx) error {
	coords, err := parseCoordinates(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	date, err := queryDate(c, "date", time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	times, err := solar.SunTimesFor(coords, date)
	if err != nil {
		return toHTTPError(err)
	}
	cond, err := solar.PolarConditionFor(coords, date)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{
		"coordinates":    coords,
		"date":           solar.StartOfDay(date).Format(time.DateOnly),
		"sunTimes":       times,
		"polarCondition": cond,
	})
}

func (h *handlers) sunHours(c *fiber.Ctx) error {
	coords, err := parseCoordinates(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	from, to, err := queryRange(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	days, err := h.Integrator.Range(coords, from, to)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{
		"coordinates": coords,
		"interval":    h.Integrator.Config().Interval.String(),
		"days":        days,
	})
}

// shadowRequest is the body of POST /shadows.
type shadowRequest struct {
	solar.Coordinates
	Time      string              `json:"time"`
	Slope     *shadow.PlotSlope   `json:"slope"`
	Obstacles []obstacle.Obstacle `json:"obstacles" validate:"dive"`
	Geo       bool                `json:"geo"`
}

func (h *handlers) shadows(c *fiber.Ctx) error {
	var req shadowRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	t := time.Now().UTC()
	if req.Time != "" {
		var err error
		if t, err = parseTime(req.Time); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	assignIDs(req.Obstacles)

	return renderShadows(c, req.Coordinates, t, req.Obstacles, req.Slope, req.Geo)
}

// plotShadows projects a configured plot's obstacles onto its own ground
// slope. Query: time (default now), geo.
func (h *handlers) plotShadows(c *fiber.Ctx) error {
	name := c.Params("name")
	var (
		plot garden.Plot
		ok   bool
	)
	if h.Garden != nil {
		plot, ok = h.Garden.Plot(name)
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown plot "+strconv.Quote(name))
	}

	t := time.Now().UTC()
	if s := c.Query("time"); s != "" {
		var err error
		if t, err = parseTime(s); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return renderShadows(c, plot.Coordinates, t, plot.Obstacles, plot.Slope, c.QueryBool("geo"))
}

func renderShadows(c *fiber.Ctx, coords solar.Coordinates, t time.Time, obstacles []obstacle.Obstacle, slope *shadow.PlotSlope, geo bool) error {
	sun, err := solar.Position(coords, t)
	if err != nil {
		return toHTTPError(err)
	}
	polys, err := shadow.ProjectAll(obstacles, sun, slope)
	if err != nil {
		return toHTTPError(err)
	}

	resp := fiber.Map{"sun": sun, "slope": slope}
	if geo {
		out := make([]shadow.GeoShadowPolygon, len(polys))
		for i := range polys {
			out[i] = polys[i].ToGeo(coords)
		}
		resp["polygons"] = out
	} else {
		resp["polygons"] = polys
	}
	return c.JSON(resp)
}

// dailyRequest is the body of POST /exposure/daily.
type dailyRequest struct {
	solar.Coordinates
	Date         string                 `json:"date"`
	Obstacles    []obstacle.Obstacle    `json:"obstacles" validate:"dive"`
	BaseExposure *exposure.BaseExposure `json:"baseExposure"`
}

func (h *handlers) dailyExposure(c *fiber.Ctx) error {
	var req dailyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	date := time.Now().UTC()
	if req.Date != "" {
		var err error
		if date, err = parseTime(req.Date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	assignIDs(req.Obstacles)

	result, err := h.Calculator.Daily(c.UserContext(), exposure.Request{
		Coordinates:  req.Coordinates,
		Obstacles:    req.Obstacles,
		BaseExposure: req.BaseExposure,
	}, date)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(result)
}

// seasonalRequest is the body of POST /exposure/seasonal.
type seasonalRequest struct {
	solar.Coordinates
	From      string              `json:"from" validate:"required"`
	To        string              `json:"to" validate:"required"`
	Obstacles []obstacle.Obstacle `json:"obstacles" validate:"dive"`
}

func (h *handlers) seasonalExposure(c *fiber.Ctx) error {
	var req seasonalRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	// Keyed before ID assignment so repeated anonymous requests share an entry.
	key := store.Key(req.Coordinates, req.Obstacles, from, to)
	assignIDs(req.Obstacles)

	ctx := c.UserContext()
	if cached, err := h.Store.Get(ctx, key); err == nil {
		metrics.CacheHits.WithLabelValues("seasonal").Inc()
		return c.JSON(cached)
	} else if !errors.Is(err, store.ErrNotFound) {
		h.Log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.CacheMisses.WithLabelValues("seasonal").Inc()

	result, err := h.Calculator.Seasonal(ctx, exposure.Request{
		Coordinates: req.Coordinates,
		Obstacles:   req.Obstacles,
	}, from, to)
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.Store.Save(ctx, key, result); err != nil {
		h.Log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return c.JSON(result)
}

func (h *handlers) plotExposure(c *fiber.Ctx) error {
	name := c.Params("name")
	result, err := h.Store.Get(c.UserContext(), store.PlotKey(name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no exposure computed for plot "+strconv.Quote(name))
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load plot exposure")
	}
	return c.JSON(result)
}

// toHTTPError maps validation failures to 400 and everything else to 500.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, solar.ErrInvalidCoordinates),
		errors.Is(err, obstacle.ErrInvalidObstacle),
		errors.Is(err, shadow.ErrInvalidSlope),
		errors.Is(err, sunhours.ErrInvalidDateRange),
		errors.Is(err, sunhours.ErrInvalidInterval):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// assignIDs gives anonymous obstacles an ID so shadows and windows can refer
// to them.
func assignIDs(obstacles []obstacle.Obstacle) {
	for i := range obstacles {
		if obstacles[i].ID == "" {
			obstacles[i].ID = uuid.NewString()
		}
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
