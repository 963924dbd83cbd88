package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/logging"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	probeTimeout    = 30 * time.Second
)

// Processor is the part of weather.Service a probe exercises.
type Processor interface {
	Process(ctx context.Context, city string, provider weather.Provider) (weather.Result, error)
}

// ProbeStore persists probe outcomes.
type ProbeStore interface {
	SaveProbe(res store.ProbeResult)
}

// ProbeRecorder receives probe outcomes for metrics.
type ProbeRecorder interface {
	RecordProbe(provider string, duration time.Duration, err error)
}

// Config describes what is probed and how often.
type Config struct {
	Cities    []string
	Providers []weather.Provider
	Interval  time.Duration
}

// Scheduler periodically calls providers for the configured cities and keeps the outcomes.
type Scheduler struct {
	scheduler *gocron.Scheduler
	processor Processor
	store     ProbeStore
	recorder  ProbeRecorder
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

// New creates a new Scheduler. recorder may be nil.
func New(cfg Config, processor Processor, st ProbeStore, recorder ProbeRecorder, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		processor: processor,
		store:     st,
		recorder:  recorder,
		logger:    logging.OrNop(logger),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cfg.Cities) == 0 || len(s.cfg.Providers) == 0 {
		s.logger.Info("scheduler: no probes configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started",
		zap.Strings("cities", s.cfg.Cities),
		zap.Duration("interval", s.cfg.Interval),
	)
	return nil
}

// RunOnce probes every (city, provider) pair one after another and returns the outcomes.
func (s *Scheduler) RunOnce(ctx context.Context) []store.ProbeResult {
	s.logger.Info("scheduler: running probe job")

	var results []store.ProbeResult
	for _, city := range s.cfg.Cities {
		for _, p := range s.cfg.Providers {
			if ctx.Err() != nil {
				s.logger.Warn("scheduler: probe job cancelled", zap.Error(ctx.Err()))
				return results
			}
			results = append(results, s.probe(ctx, city, p))
		}
	}

	s.logger.Info("scheduler: completed probe job", zap.Int("probes", len(results)))
	return results
}

func (s *Scheduler) probe(parent context.Context, city string, p weather.Provider) store.ProbeResult {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	res := store.ProbeResult{
		ID:       uuid.NewString(),
		Provider: p,
		City:     city,
		At:       s.now().UTC(),
	}

	start := time.Now()
	out, err := s.processor.Process(ctx, city, p)
	res.Duration = time.Since(start)

	if err != nil {
		res.Error = err.Error()
		s.logger.Warn("scheduler: probe failed",
			zap.String(logging.FieldProbeID, res.ID),
			zap.String(logging.FieldProvider, p.String()),
			zap.String(logging.FieldCity, city),
			zap.Bool("location_not_found", errors.Is(err, weather.ErrLocationNotFound)),
			zap.Error(err),
		)
	} else {
		res.OK = true
		res.Result = &out
	}

	if s.recorder != nil {
		s.recorder.RecordProbe(p.String(), res.Duration, err)
	}
	if s.store != nil {
		s.store.SaveProbe(res)
	}
	return res
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
