package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/usecase"
	"github.com/fastygo/tasktracker/usecase/notify"
)

// Scanner runs one reminder scan.
type Scanner interface {
	Scan(ctx context.Context) (notify.Result, error)
}

// SchedulerConfig controls how often the policy is consulted.
type SchedulerConfig struct {
	CheckInterval time.Duration
	ScanTimeout   time.Duration
	Policy        Policy
}

// Scheduler drives the reminder scan off a cron ticker and hosts periodic
// housekeeping jobs.
type Scheduler struct {
	scanner Scanner
	cfg     SchedulerConfig
	clock   usecase.Clock
	logger  *zap.Logger
	cron    *cron.Cron

	mu       sync.Mutex
	lastScan time.Time
	started  bool
	wg       sync.WaitGroup
}

func NewScheduler(scanner Scanner, cfg SchedulerConfig, clock usecase.Clock, logger *zap.Logger) *Scheduler {
	if cfg.CheckInterval < time.Second {
		cfg.CheckInterval = time.Minute
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		scanner: scanner,
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.CheckInterval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ScanTimeout)
		defer cancel()
		s.Tick(ctx)
	})

	return s
}

// Every registers a housekeeping job on the same cron instance.
func (s *Scheduler) Every(name string, interval time.Duration, job func(ctx context.Context) error) error {
	if interval < time.Second {
		return fmt.Errorf("job %s: interval %s is below one second", name, interval)
	}
	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if err := job(ctx); err != nil {
			s.logger.Warn("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	})
	return err
}

// Start launches the cron loop and fires the startup scan in the background.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ScanTimeout)
		defer cancel()
		s.Tick(ctx)
	}()
	s.logger.Info("notification scheduler started",
		zap.Duration("check_interval", s.cfg.CheckInterval),
		zap.Duration("scan_interval", s.cfg.Policy.Interval),
		zap.Int("anchor_hour", s.cfg.Policy.AnchorHour))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("notification scheduler stopped")
	return nil
}

// Tick consults the policy and scans when due. It reports whether a scan ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if !s.cfg.Policy.ShouldRun(now, s.lastScan) {
		return false
	}
	s.scanLocked(ctx, now)
	return true
}

// RunNow scans immediately regardless of the policy.
func (s *Scheduler) RunNow(ctx context.Context) (notify.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanLocked(ctx, s.clock.Now())
}

// LastScan returns when the previous scan started, zero before the first.
func (s *Scheduler) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// scanLocked records the attempt even on failure; the cohort is retried on the
// next due scan rather than on every check.
func (s *Scheduler) scanLocked(ctx context.Context, now time.Time) (notify.Result, error) {
	s.lastScan = now

	result, err := s.scanner.Scan(ctx)
	switch {
	case err == nil:
	case notify.IsSkip(err):
		s.logger.Debug("notification scan skipped", zap.String("reason", err.Error()))
	default:
		s.logger.Warn("notification scan failed",
			zap.String("date", result.Date),
			zap.Int("cohort_size", len(result.Cohort)),
			zap.Error(err))
	}
	return result, err
}
