// services/streak.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"
)

// Run outcomes.
const (
	RunCompleted           = "completed"
	RunCompletedWithErrors = "completed-with-errors"
	RunErrored             = "errored"
)

// RunReport summarizes one streak-check execution for the status endpoint.
type RunReport struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcome    string    `json:"outcome"`
	Dispatches int       `json:"dispatches"`
	ToolCalls  int       `json:"toolCalls"`
	Detail     string    `json:"detail,omitempty"`
}

type StreakConfig struct {
	LookbackDays int
	Pattern      PatternConfig
	OracleBudget int
	PortalURL    string
}

// StreakService is the nightly workflow: read the booking window, derive the
// attendance digest, and hand the delinquency decision to the oracle, whose
// reminder intents flow back through the dispatcher.
type StreakService struct {
	store      BookingStore
	dispatcher *Dispatcher
	oracle     Oracle // nil when no oracle is configured
	cfg        StreakConfig
}

func NewStreakService(store BookingStore, dispatcher *Dispatcher, oracle Oracle, cfg StreakConfig) *StreakService {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	if cfg.Pattern.Weeks <= 0 {
		cfg.Pattern = DefaultPatternConfig()
	}
	return &StreakService{store: store, dispatcher: dispatcher, oracle: oracle, cfg: cfg}
}

// Run executes one streak check. It never panics and never returns an error:
// every failure mode is folded into the report so the scheduler stays alive.
func (s *StreakService) Run(ctx context.Context) RunReport {
	report := RunReport{StartedAt: time.Now().UTC()}
	today := utils.UTCDay(report.StartedAt)
	log.Printf("⏰ STARTING DAILY STREAK CHECK for %s (%s)", today.Format("2006-01-02"), today.Weekday())

	since := today.AddDate(0, 0, -s.cfg.LookbackDays)
	bookings, err := s.store.Recent(ctx, since, DefaultHistoryLimit)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		report.Outcome = RunErrored
		report.Detail = fmt.Sprintf("history fetch failed: %v", err)
		log.Printf("❌ %s", report.Detail)
		return report
	}

	digest := BuildDigest(bookings, today, s.cfg.Pattern)
	delinquents := digest.Delinquents()
	log.Printf("Digest built: %d members, %d delinquent", len(digest.Members), len(delinquents))

	if s.oracle == nil {
		report.FinishedAt = time.Now().UTC()
		report.Outcome = RunCompleted
		report.Detail = "oracle not configured; digest logged only"
		for _, m := range delinquents {
			log.Printf("Delinquent (not reminded, no oracle): %s missed %s", m.MemberID, m.MissedWeekday)
		}
		return report
	}

	rendered, err := digest.RenderJSON()
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		report.Outcome = RunErrored
		report.Detail = err.Error()
		return report
	}

	broker := NewToolBroker(s.store, s.dispatcher, digest, s.cfg.OracleBudget, s.cfg.LookbackDays)
	answer, err := s.oracle.Run(ctx, s.instruction(today, rendered), broker)

	report.FinishedAt = time.Now().UTC()
	report.Dispatches = len(broker.Dispatches())
	report.ToolCalls = broker.Calls()

	switch {
	case err == nil:
		report.Outcome = RunCompleted
		for _, d := range broker.Dispatches() {
			if d.Outcome == models.DispatchFailed {
				report.Outcome = RunCompletedWithErrors
				report.Detail = "one or more dispatches failed"
			}
		}
		log.Printf("✅ Daily check complete. Oracle response: %s", answer)
	case errors.Is(err, ErrToolBudget):
		report.Outcome = RunCompletedWithErrors
		report.Detail = fmt.Sprintf("capability budget exceeded after %d calls; digest had %d delinquent members", broker.Calls(), len(delinquents))
		log.Printf("❌ %s", report.Detail)
	case ctx.Err() != nil:
		report.Outcome = RunErrored
		report.Detail = fmt.Sprintf("run aborted: %v", ctx.Err())
		log.Printf("❌ %s", report.Detail)
	default:
		report.Outcome = RunCompletedWithErrors
		report.Detail = fmt.Sprintf("oracle error: %v", err)
		log.Printf("❌ Error running daily check: %v", err)
	}
	return report
}

func (s *StreakService) instruction(today time.Time, digestJSON string) string {
	return fmt.Sprintf(`You are the Badminton Club Manager. Today is %s (%s).

Goal: identify regular members who missed their session today and remind them.

Attendance digest (schema v%d), derived from the last %d days of bookings:
%s

1. Call get_booking_history if you need more detail than the digest gives you.
2. For each member with "is_delinquent": true, craft a UNIQUE reminder for that member (no copy/paste text):
   - Mention their name, their usual weekday, and the last date they played.
   - Include the bookings portal link once per message: %s
   Then call send_reminder with that personalized copy and the member's member_id.
3. Never remind a member who is not delinquent.

If no one missed a streak, just answer "No reminders needed."`,
		today.Format("2006-01-02"), today.Weekday(),
		DigestSchemaVersion, s.cfg.LookbackDays, digestJSON, s.cfg.PortalURL)
}
