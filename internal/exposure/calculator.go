package exposure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/johnhkchen/solar-sim/internal/metrics"
	"github.com/johnhkchen/solar-sim/internal/observability"
	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/solar"
	"github.com/johnhkchen/solar-sim/internal/sunhours"
)

// Options tunes the calculator.
type Options struct {
	// Workers bounds the days computed concurrently by Seasonal. Values <= 1
	// compute days sequentially.
	Workers int
	// BaseExposureTimeout bounds each call to the base-exposure source.
	BaseExposureTimeout time.Duration
}

// Calculator combines sun hours, tree shading and external terrain shading.
type Calculator struct {
	integrator *sunhours.Integrator
	source     BaseExposureSource
	log        *zap.Logger
	opts       Options
}

// NewCalculator creates a Calculator. source may be nil, in which case every
// day is computed without terrain and building shading unless the request
// carries its own base exposure.
func NewCalculator(integrator *sunhours.Integrator, source BaseExposureSource, log *zap.Logger, opts Options) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		integrator: integrator,
		source:     source,
		log:        log,
		opts:       opts,
	}
}

// Daily computes the breakdown for the UTC day containing date.
func (c *Calculator) Daily(ctx context.Context, req Request, date time.Time) (DailyExposure, error) {
	if err := validate(req); err != nil {
		return DailyExposure{}, err
	}
	start := time.Now()
	defer func() {
		metrics.CalculationDuration.WithLabelValues("daily").Observe(time.Since(start).Seconds())
	}()
	return c.daily(ctx, req, solar.StartOfDay(date))
}

func (c *Calculator) daily(ctx context.Context, req Request, day time.Time) (DailyExposure, error) {
	ctx, span := observability.Tracer().Start(ctx, "exposure.daily")
	defer span.End()
	span.SetAttributes(
		attribute.String("coordinates", req.Coordinates.String()),
		attribute.String("date", day.Format(time.DateOnly)),
		attribute.Int("obstacles", len(req.Obstacles)),
	)

	if err := ctx.Err(); err != nil {
		return DailyExposure{}, spanError(span, err)
	}
	sampled, err := c.integrator.SampleDay(req.Coordinates, day)
	if err != nil {
		return DailyExposure{}, spanError(span, err)
	}

	theoretical := sampled.SunHours()
	trees := obstacle.TreeLike(req.Obstacles)

	terrain, ok := c.baseExposure(ctx, req, day).terrainHours(theoretical)
	if !ok {
		metrics.BaseExposureFallbacks.Inc()
	}
	span.SetAttributes(attribute.Bool("base_exposure_available", ok))

	return DailyExposure{
		Date:           sampled.Date,
		PolarCondition: sampled.PolarCondition,
		Breakdown:      combine(theoretical, terrain, sampled.BlockedHours(trees), ok),
		TreeWindows:    sampled.ShadeWindows(trees),
	}, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// baseExposure prefers the request's own value, then the configured source.
// Any failure degrades to an empty BaseExposure.
func (c *Calculator) baseExposure(ctx context.Context, req Request, day time.Time) BaseExposure {
	if req.BaseExposure != nil {
		return *req.BaseExposure
	}
	if c.source == nil {
		metrics.BaseExposureFetches.WithLabelValues("absent").Inc()
		return BaseExposure{}
	}

	if c.opts.BaseExposureTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.BaseExposureTimeout)
		defer cancel()
	}

	b, err := c.source.BaseExposure(ctx, req.Coordinates, day)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrBaseExposureUnavailable) {
			outcome = "unavailable"
		}
		metrics.BaseExposureFetches.WithLabelValues(outcome).Inc()
		c.log.Warn("base exposure unavailable; using tree shading only",
			zap.String("source", c.source.Name()),
			zap.Stringer("coordinates", req.Coordinates),
			zap.String("date", day.Format(time.DateOnly)),
			zap.Error(err),
		)
		return BaseExposure{}
	}
	metrics.BaseExposureFetches.WithLabelValues("ok").Inc()
	return b
}

// combine assumes terrain and tree shading fall independently across the
// day, so the expected overlap is tree × terrain / theoretical.
func combine(theoretical, terrain, tree float64, baseAvailable bool) SunHoursBreakdown {
	overlap := 0.0
	if theoretical > 0 {
		overlap = tree * terrain / theoretical
	}
	return SunHoursBreakdown{
		Theoretical:              theoretical,
		TerrainAndBuildingShadow: terrain,
		TreeShadow:               tree,
		OverlapShadow:            overlap,
		Effective:                theoretical - terrain - tree + overlap,
		BaseExposureAvailable:    baseAvailable,
	}
}

// Seasonal computes every day from..to inclusive and averages them.
func (c *Calculator) Seasonal(ctx context.Context, req Request, from, to time.Time) (SeasonalExposure, error) {
	if err := validate(req); err != nil {
		return SeasonalExposure{}, err
	}
	days, err := sunhours.Days(from, to)
	if err != nil {
		return SeasonalExposure{}, err
	}

	ctx, span := observability.Tracer().Start(ctx, "exposure.seasonal")
	defer span.End()
	span.SetAttributes(
		attribute.String("coordinates", req.Coordinates.String()),
		attribute.Int("days", len(days)),
		attribute.Int("workers", c.opts.Workers),
	)

	start := time.Now()
	results, err := ParallelMap(ctx, days, c.opts.Workers, func(ctx context.Context, d time.Time) (DailyExposure, error) {
		return c.daily(ctx, req, d)
	})
	metrics.CalculationDuration.WithLabelValues("seasonal").Observe(time.Since(start).Seconds())
	metrics.SeasonalDays.Observe(float64(len(days)))
	if err != nil {
		return SeasonalExposure{}, spanError(span, err)
	}

	avg := Average(results)
	c.log.Debug("seasonal exposure computed",
		zap.Stringer("coordinates", req.Coordinates),
		zap.Int("days", len(results)),
		zap.Float64("avgEffective", avg.Effective),
		zap.Duration("took", time.Since(start)),
	)

	return SeasonalExposure{
		Coordinates:   req.Coordinates,
		From:          days[0],
		To:            days[len(days)-1],
		Days:          results,
		Average:       avg,
		LightCategory: Categorize(avg.Effective),
		TreeCount:     len(obstacle.TreeLike(req.Obstacles)),
		Obstacles:     req.Obstacles,
		ComputedAt:    time.Now().UTC(),
	}, nil
}

// Average is the per-field mean of the daily breakdowns. Base exposure counts
// as available only when every day had it.
func Average(days []DailyExposure) SunHoursBreakdown {
	if len(days) == 0 {
		return SunHoursBreakdown{}
	}

	var sum SunHoursBreakdown
	sum.BaseExposureAvailable = true
	for _, d := range days {
		b := d.Breakdown
		sum.Theoretical += b.Theoretical
		sum.TerrainAndBuildingShadow += b.TerrainAndBuildingShadow
		sum.TreeShadow += b.TreeShadow
		sum.OverlapShadow += b.OverlapShadow
		sum.BaseExposureAvailable = sum.BaseExposureAvailable && b.BaseExposureAvailable
	}

	n := float64(len(days))
	avg := SunHoursBreakdown{
		Theoretical:              sum.Theoretical / n,
		TerrainAndBuildingShadow: sum.TerrainAndBuildingShadow / n,
		TreeShadow:               sum.TreeShadow / n,
		OverlapShadow:            sum.OverlapShadow / n,
		BaseExposureAvailable:    sum.BaseExposureAvailable,
	}
	avg.Effective = avg.Theoretical - avg.TerrainAndBuildingShadow - avg.TreeShadow + avg.OverlapShadow
	return avg
}

func validate(req Request) error {
	if err := req.Coordinates.Validate(); err != nil {
		return err
	}
	return obstacle.ValidateAll(req.Obstacles)
}
