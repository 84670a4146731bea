package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/johnhkchen/solar-sim/internal/exposure"
	"github.com/johnhkchen/solar-sim/internal/garden"
	"github.com/johnhkchen/solar-sim/internal/metrics"
	"github.com/johnhkchen/solar-sim/internal/solar"
	"github.com/johnhkchen/solar-sim/internal/store"
)

// DefaultInterval applies when the configured interval is not positive.
const DefaultInterval = 6 * time.Hour

// Scheduler periodically recomputes seasonal exposure for configured plots.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	calculator *exposure.Calculator
	store      store.Store
	plots      []garden.Plot
	interval   time.Duration
	seasonDays int
	timeout    time.Duration
	log        *zap.Logger

	now func() time.Time
}

// New creates a new Scheduler.
func New(plots []garden.Plot, interval time.Duration, seasonDays int, calc *exposure.Calculator, st store.Store, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if seasonDays <= 0 {
		seasonDays = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		calculator: calc,
		store:      st,
		plots:      plots,
		interval:   interval,
		seasonDays: seasonDays,
		timeout:    2 * time.Minute,
		log:        log.Named("scheduler"),
		now:        time.Now,
	}
}

// Start schedules the refresh job, runs it once immediately and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.plots) == 0 {
		s.log.Info("no plots configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every plot concurrently and waits for all of them. It
// returns how many plots were refreshed successfully.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.log.Debug("running plot refresh job", zap.Int("plots", len(s.plots)))

	from := solar.StartOfDay(s.now())
	to := from.AddDate(0, 0, s.seasonDays-1)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, p := range s.plots {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.refresh(ctx, p, from, to); err != nil {
				metrics.PlotRefreshes.WithLabelValues("error").Inc()
				s.log.Error("plot refresh failed", zap.String("plot", p.Name), zap.Error(err))
				return
			}
			metrics.PlotRefreshes.WithLabelValues("ok").Inc()

			mu.Lock()
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.log.Info("completed plot refresh job", zap.Int("refreshed", ok), zap.Int("plots", len(s.plots)))
	return ok
}

func (s *Scheduler) refresh(ctx context.Context, p garden.Plot, from, to time.Time) error {
	req := exposure.Request{Coordinates: p.Coordinates, Obstacles: p.Obstacles}
	result, err := s.calculator.Seasonal(ctx, req, from, to)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.PlotKey(p.Name), result)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
