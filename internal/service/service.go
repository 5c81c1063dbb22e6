// Package service hosts the long-running side of the planner: a periodic
// drift check over the persisted schedule and, when the user opted in,
// automatic replanning of overdue tasks.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"flowstate/internal/planner"
	"flowstate/internal/storage"
	"flowstate/pkg/logx"
)

// Config controls the drift service.
type Config struct {
	Enabled  bool
	Interval time.Duration // drift poll cadence; default 1 minute

	// ReplanPerHour caps automatic replans triggered by overdue tasks.
	ReplanPerHour int

	Settings planner.Settings
}

// Snapshot is a point-in-time view of the service for introspection.
type Snapshot struct {
	Enabled   bool
	Interval  time.Duration
	LastDrift int
	LastCheck time.Time
	Replans   uint64
}

// Service polls the stored schedule for drift once per interval. All
// planning work happens through planner entry points over snapshots; the
// service only orchestrates loading, replanning and persisting.
type Service struct {
	mu sync.Mutex

	log   logx.Logger
	cfg   Config
	store storage.Store

	c       *cron.Cron
	limiter *rate.Limiter

	lastDrift int
	lastCheck time.Time
	replans   uint64
}

func New(cfg Config, store storage.Store, log logx.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		log:     log,
		limiter: newReplanLimiter(cfg.ReplanPerHour),
	}
}

func newReplanLimiter(perHour int) *rate.Limiter {
	if perHour <= 0 {
		perHour = 4
	}
	return rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), 1)
}

func (s *Service) Enabled() bool { return s.cfg.Enabled }

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil || !s.cfg.Enabled {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("@every "+s.cfg.Interval.String(), func() { s.tick(ctx) })
	if err != nil {
		return err
	}
	s.c = c
	c.Start()
	s.log.Info("drift service started", logx.Duration("interval", s.cfg.Interval))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	stopCtx := s.c.Stop()
	s.c = nil
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.log.Info("drift service stopped")
}

// Apply swaps the configuration at runtime. An interval change restarts the
// cron trigger; a limiter change takes effect on the next tick.
func (s *Service) Apply(ctx context.Context, cfg Config) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	s.mu.Lock()
	restart := s.c != nil && (cfg.Interval != s.cfg.Interval || cfg.Enabled != s.cfg.Enabled)
	s.cfg = cfg
	s.limiter = newReplanLimiter(cfg.ReplanPerHour)
	s.mu.Unlock()

	if restart {
		s.Stop(ctx)
		if err := s.Start(ctx); err != nil {
			s.log.Warn("drift service restart failed", logx.Err(err))
		}
	}
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Enabled:   s.cfg.Enabled,
		Interval:  s.cfg.Interval,
		LastDrift: s.lastDrift,
		LastCheck: s.lastCheck,
		Replans:   s.replans,
	}
}

// tick recomputes drift over the persisted task set and, when the user
// opted into auto-rescheduling, replans the overdue schedule. The limiter
// keeps bursty ticks from causing replan storms.
func (s *Service) tick(ctx context.Context) {
	if s.store == nil {
		return
	}
	now := time.Now()

	tasks, err := storage.LoadTasks(ctx, s.store)
	if err != nil {
		s.log.Warn("drift check: loading tasks failed", logx.Err(err))
		return
	}

	drift := planner.Drift(tasks, now)

	s.mu.Lock()
	s.lastDrift = drift
	s.lastCheck = now
	settings := s.cfg.Settings
	limiter := s.limiter
	s.mu.Unlock()

	if drift == 0 {
		s.log.Debug("drift check: on plan")
		return
	}
	s.log.Info("schedule drift detected", logx.Int("minutes", drift))

	if !settings.AutoRescheduleOverdue || !limiter.Allow() {
		return
	}

	plan, err := planner.Plan(tasks, now, settings)
	if err != nil {
		s.log.Warn("auto-replan failed", logx.Err(err))
		return
	}
	if err := storage.SavePlan(ctx, s.store, plan); err != nil {
		s.log.Warn("auto-replan: persisting plan failed", logx.Err(err))
		return
	}
	if err := storage.SaveTasks(ctx, s.store, ApplyPlan(tasks, plan)); err != nil {
		s.log.Warn("auto-replan: persisting tasks failed", logx.Err(err))
		return
	}

	s.mu.Lock()
	s.replans++
	s.mu.Unlock()
	s.log.Info("auto-replan complete",
		logx.Int("scheduled", len(plan.Scheduled)),
		logx.Int("unscheduled", len(plan.Unscheduled)))
}

// ApplyPlan folds a plan back into the host task set: done and fixed tasks
// survive untouched, previous breaks are dropped, placed parts replace their
// pending originals, and unplaceable tasks are kept with their schedule
// cleared and the rejection reason attached.
func ApplyPlan(tasks []planner.Task, plan *planner.PlanResult) []planner.Task {
	out := make([]planner.Task, 0, len(plan.Scheduled)+len(plan.Breaks)+len(tasks))
	for _, t := range tasks {
		if t.IsBreak() {
			continue
		}
		if t.Status == planner.StatusDone || t.Fixed {
			out = append(out, t)
		}
	}
	out = append(out, plan.Scheduled...)
	out = append(out, plan.Breaks...)
	for _, u := range plan.Unscheduled {
		t := u.Task
		t.Start = nil
		t.End = nil
		t.Reason = u.Reason
		out = append(out, t)
	}
	return out
}
