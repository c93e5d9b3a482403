package executors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"earningsbot/src/model"
	"earningsbot/src/risk"
	"earningsbot/src/strategy"
)

type fakeCycles struct {
	calls []string
	err   map[string]error
}

func (f *fakeCycles) RunScan(_ context.Context, timing string) error {
	f.calls = append(f.calls, "scan-"+timing)
	return f.err["scan-"+timing]
}

func (f *fakeCycles) RunUpdate(context.Context) error {
	f.calls = append(f.calls, JobUpdate)
	return f.err[JobUpdate]
}

func (f *fakeCycles) RunCalendar(context.Context) error {
	f.calls = append(f.calls, JobCalendar)
	return f.err[JobCalendar]
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04", s, risk.EasternLocation())
	require.NoError(t, err)
	return v
}

func defaultConfig() Config {
	return Config{LoopPeriod: time.Second, ScanBMOAt: "09:15", ScanAMCAt: "16:15", UpdateAt: "16:30", CalendarAt: "19:00"}
}

func names(jobs []Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Name)
	}
	return out
}

func TestDueJobs(t *testing.T) {
	s, err := DailySchedule(defaultConfig(), &fakeCycles{})
	require.NoError(t, err)

	require.Empty(t, s.DueJobs(at(t, "2026-10-15 09:14")))
	require.Equal(t, []string{JobScanBMO}, names(s.DueJobs(at(t, "2026-10-15 09:15"))))
	require.Equal(t, []string{JobScanBMO, JobScanAMC, JobUpdate}, names(s.DueJobs(at(t, "2026-10-15 16:45"))))

	s.MarkRun(JobScanBMO, at(t, "2026-10-15 09:15"))
	require.Equal(t, []string{JobScanAMC}, names(s.DueJobs(at(t, "2026-10-15 16:20"))))

	// next day the marks no longer apply
	require.Equal(t, []string{JobScanBMO}, names(s.DueJobs(at(t, "2026-10-16 09:20"))))
}

func TestDueJobsSkipsNonTradingDays(t *testing.T) {
	s, err := DailySchedule(defaultConfig(), &fakeCycles{})
	require.NoError(t, err)

	// Saturday, Christmas, Thanksgiving
	require.Empty(t, s.DueJobs(at(t, "2026-10-17 17:00")))
	require.Empty(t, s.DueJobs(at(t, "2026-12-25 17:00")))
	require.Empty(t, s.DueJobs(at(t, "2026-11-26 17:00")))
	require.NotEmpty(t, s.DueJobs(at(t, "2026-11-27 17:00")))
}

func TestDueJobsGrace(t *testing.T) {
	cfg := defaultConfig()
	cfg.JobGrace = time.Hour
	s, err := DailySchedule(cfg, &fakeCycles{})
	require.NoError(t, err)

	require.Equal(t, []string{JobScanAMC, JobUpdate}, names(s.DueJobs(at(t, "2026-10-15 17:00"))))
}

func TestNewScheduleRejectsBadClock(t *testing.T) {
	cfg := defaultConfig()
	cfg.UpdateAt = "25:00"
	_, err := DailySchedule(cfg, &fakeCycles{})
	require.Error(t, err)
}

func TestRunDueRunsSequentiallyAndOnce(t *testing.T) {
	cycles := &fakeCycles{err: map[string]error{"scan-" + model.TimingAMC: errors.New("fmp down")}}
	s, err := DailySchedule(defaultConfig(), cycles)
	require.NoError(t, err)
	s.now = func() time.Time { return at(t, "2026-10-15 16:31") }

	require.NoError(t, s.RunDue(context.Background()))
	require.Equal(t, []string{"scan-bmo", "scan-amc", "update"}, cycles.calls)

	require.NoError(t, s.RunDue(context.Background()))
	require.Len(t, cycles.calls, 3)
}

func TestRunDueStopsOnLiveTrading(t *testing.T) {
	cycles := &fakeCycles{err: map[string]error{"scan-" + model.TimingBMO: strategy.ErrLiveTradingNotImplemented}}
	s, err := DailySchedule(defaultConfig(), cycles)
	require.NoError(t, err)
	s.now = func() time.Time { return at(t, "2026-10-15 16:31") }

	err = s.RunDue(context.Background())
	require.ErrorIs(t, err, strategy.ErrLiveTradingNotImplemented)
	require.Equal(t, []string{"scan-bmo"}, cycles.calls)
}

func TestStartLoopStopsOnContext(t *testing.T) {
	s, err := NewSchedule(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartLoop(ctx, s, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestStartLoopReturnsLiveTradingError(t *testing.T) {
	s, err := NewSchedule(0, Job{Name: "scan", At: "00:00", Run: func(context.Context) error {
		return strategy.ErrLiveTradingNotImplemented
	}})
	require.NoError(t, err)
	s.now = func() time.Time { return at(t, "2026-10-15 10:00") }

	err = StartLoop(context.Background(), s, 5*time.Millisecond)
	require.ErrorIs(t, err, strategy.ErrLiveTradingNotImplemented)
}
