// services/scheduler.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned when a trigger arrives while a check is
// already executing. It is a control-flow rejection, not a failure.
var ErrRunInProgress = errors.New("a streak check is already running")

// Scheduler states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
)

// SchedulerStatus is what the status endpoint exposes.
type SchedulerStatus struct {
	State     string     `json:"state"`
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
	LastRun   *RunReport `json:"lastRun,omitempty"`
}

// DailyCheck owns the single Idle/Running flag for the whole process.
// The cron tick and the manual trigger endpoint funnel into the same
// compare-and-swap guard, so two runs can never interleave their side
// effects.
type DailyCheck struct {
	run     func(ctx context.Context) RunReport
	timeout time.Duration

	cron    *cron.Cron
	entryID cron.EntryID

	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	lastRun *RunReport
}

func NewDailyCheck(run func(ctx context.Context) RunReport, timeout time.Duration) *DailyCheck {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DailyCheck{run: run, timeout: timeout}
}

// Start schedules the check at the given local wall-clock time, once per
// calendar day.
func (d *DailyCheck) Start(hour, minute int) error {
	d.cron = cron.New()
	id, err := d.cron.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), func() {
		if err := d.Trigger(); errors.Is(err, ErrRunInProgress) {
			// Coalesce: the overlapping tick becomes a no-op.
			log.Println("Scheduled streak check skipped: previous run still in progress")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule daily check: %w", err)
	}
	d.entryID = id
	d.cron.Start()
	log.Printf("⏰ Scheduler started (daily streak check at %02d:%02d)", hour, minute)
	return nil
}

// Trigger starts a run in the background and returns immediately. While a
// run is in flight every further trigger gets ErrRunInProgress.
func (d *DailyCheck) Trigger() error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	d.wg.Add(1)
	go d.execute()
	return nil
}

func (d *DailyCheck) execute() {
	defer d.wg.Done()
	defer d.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	report := d.run(ctx)

	d.mu.Lock()
	d.lastRun = &report
	d.mu.Unlock()
}

// Status reports the scheduler state, the next scheduled run when the cron
// is active, and the last run's report.
func (d *DailyCheck) Status() SchedulerStatus {
	status := SchedulerStatus{State: StateIdle}
	if d.running.Load() {
		status.State = StateRunning
	}
	if d.cron != nil {
		next := d.cron.Entry(d.entryID).Next
		if !next.IsZero() {
			status.NextRunAt = &next
		}
	}
	d.mu.Lock()
	status.LastRun = d.lastRun
	d.mu.Unlock()
	return status
}

// Stop halts the cron and waits for an in-flight run to finish.
func (d *DailyCheck) Stop() {
	if d.cron != nil {
		d.cron.Stop()
	}
	d.wg.Wait()
}
