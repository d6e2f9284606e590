package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Warmer refreshes a cache family ahead of requests.
type Warmer interface {
	Name() string
	Warm(ctx context.Context) error
}

// Scheduler periodically warms the configured caches.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	warmers    []Warmer
	interval   time.Duration
	jobTimeout time.Duration
	logger     *zap.Logger
}

// New creates a new Scheduler. Each run is bounded by jobTimeout.
func New(interval, jobTimeout time.Duration, logger *zap.Logger, warmers ...Warmer) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		warmers:    warmers,
		interval:   interval,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.warmers) == 0 || s.interval <= 0 {
		s.logger.Info("scheduler: nothing to schedule",
			zap.Int("warmers", len(s.warmers)), zap.Duration("interval", s.interval))
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", zap.Duration("interval", s.interval))
	return nil
}

// RunOnce warms every cache concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("scheduler: running warm-up job")
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, w := range s.warmers {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Warm(ctx); err != nil {
				s.logger.Warn("scheduler: warm-up failed", zap.String("cache", w.Name()), zap.Error(err))
			}
		}()
	}
	wg.Wait()

	s.logger.Debug("scheduler: completed warm-up job", zap.Duration("took", time.Since(started)))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
