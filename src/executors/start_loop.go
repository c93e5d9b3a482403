package executors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/controller"
	"earningsbot/src/model"
	"earningsbot/src/risk"
	"earningsbot/src/strategy"
	"earningsbot/src/utils"
)

const (
	JobScanBMO  = "scan-bmo"
	JobScanAMC  = "scan-amc"
	JobUpdate   = "update"
	JobCalendar = "calendar"
)

// Job is one daily cycle fired at a New York wall-clock time.
type Job struct {
	Name   string
	At     string
	Run    func(ctx context.Context) error
	hour   int
	minute int
}

// Schedule tracks which jobs already ran on the current New York date.
type Schedule struct {
	mu      sync.Mutex
	jobs    []Job
	lastRun map[string]string
	grace   time.Duration
	now     func() time.Time
}

func NewSchedule(grace time.Duration, jobs ...Job) (*Schedule, error) {
	parsed := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		h, m, err := utils.ParseClock(j.At)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		j.hour, j.minute = h, m
		parsed = append(parsed, j)
	}
	sort.SliceStable(parsed, func(a, b int) bool {
		return parsed[a].hour*60+parsed[a].minute < parsed[b].hour*60+parsed[b].minute
	})
	return &Schedule{jobs: parsed, lastRun: map[string]string{}, grace: grace, now: time.Now}, nil
}

// Cycles is what the daily schedule drives.
type Cycles interface {
	RunScan(ctx context.Context, timing string) error
	RunUpdate(ctx context.Context) error
	RunCalendar(ctx context.Context) error
}

type orchestratorCycles struct {
	o *controller.Orchestrator
}

// FromOrchestrator adapts the orchestrator cycles, dropping their reports.
func FromOrchestrator(o *controller.Orchestrator) Cycles {
	return orchestratorCycles{o: o}
}

func (c orchestratorCycles) RunScan(ctx context.Context, timing string) error {
	_, err := c.o.RunScan(ctx, timing)
	return err
}

func (c orchestratorCycles) RunUpdate(ctx context.Context) error {
	_, err := c.o.RunUpdate(ctx)
	return err
}

func (c orchestratorCycles) RunCalendar(ctx context.Context) error {
	_, err := c.o.RunCalendar(ctx)
	return err
}

// DailySchedule wires the four cycles at their configured times.
func DailySchedule(cfg Config, c Cycles) (*Schedule, error) {
	return NewSchedule(cfg.JobGrace,
		Job{Name: JobScanBMO, At: cfg.ScanBMOAt, Run: func(ctx context.Context) error { return c.RunScan(ctx, model.TimingBMO) }},
		Job{Name: JobScanAMC, At: cfg.ScanAMCAt, Run: func(ctx context.Context) error { return c.RunScan(ctx, model.TimingAMC) }},
		Job{Name: JobUpdate, At: cfg.UpdateAt, Run: c.RunUpdate},
		Job{Name: JobCalendar, At: cfg.CalendarAt, Run: c.RunCalendar},
	)
}

// DueJobs returns the jobs that should run at now: today is a trading day, the
// New York clock is at or after the job time, and the job has not run today.
func (s *Schedule) DueJobs(now time.Time) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !risk.IsTradingDay(now) {
		return nil
	}
	et := risk.EasternTime(now)
	today := utils.FormatDate(et)

	var due []Job
	for _, j := range s.jobs {
		at := time.Date(et.Year(), et.Month(), et.Day(), j.hour, j.minute, 0, 0, et.Location())
		if et.Before(at) || s.lastRun[j.Name] == today {
			continue
		}
		if s.grace > 0 && et.Sub(at) > s.grace {
			continue
		}
		due = append(due, j)
	}
	return due
}

// MarkRun records that job ran on the New York date of now.
func (s *Schedule) MarkRun(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[name] = utils.FormatDate(risk.EasternTime(now))
}

// RunDue runs every due job in time order. Failures are logged; only the live
// trading hard stop is returned.
func (s *Schedule) RunDue(ctx context.Context) error {
	now := s.now()
	for _, job := range s.DueJobs(now) {
		s.MarkRun(job.Name, now)

		log := logger.WithFields(logger.Fields{"job": job.Name, "at": job.At})
		log.Info("job started")
		start := time.Now()

		err := job.Run(ctx)
		if errors.Is(err, strategy.ErrLiveTradingNotImplemented) {
			log.WithError(err).Error("live trading requested, stopping scheduler")
			return err
		}
		if err != nil {
			log.WithError(err).Error("job failed")
			continue
		}
		log.WithField("duration", time.Since(start).String()).Info("job finished")
	}
	return nil
}

// StartLoop checks the schedule every period until ctx is done. Jobs run in the
// loop goroutine, so cycles never overlap.
func StartLoop(ctx context.Context, schedule *Schedule, period time.Duration) error {
	if period <= 0 {
		period = 30 * time.Second
	}
	ticker := time.NewTicker(period) // Set up a ticker that fires periodically
	defer ticker.Stop()

	logger.WithField("period", period.String()).Info("scheduler loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler loop stopped")
			return nil

		case <-ticker.C:
			if err := schedule.RunDue(ctx); err != nil {
				return err
			}
		}
	}
}
