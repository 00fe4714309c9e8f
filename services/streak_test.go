package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"
)

type fakeStore struct {
	bookings []models.Booking
	err      error
}

func (f *fakeStore) Recent(_ context.Context, since time.Time, limit int) ([]models.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if !b.SessionDate.Before(since) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionDate.After(out[j].SessionDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ByMember(ctx context.Context, memberID string, since time.Time) ([]models.Booking, error) {
	all, err := f.Recent(ctx, since, 0)
	if err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range all {
		if b.MemberID == memberID {
			out = append(out, b)
		}
	}
	return out, nil
}

// scriptedOracle runs an arbitrary interaction against the broker, standing
// in for the external reasoning service.
type scriptedOracle struct {
	script func(ctx context.Context, broker *ToolBroker) (string, error)
}

func (o *scriptedOracle) Run(ctx context.Context, _ string, broker *ToolBroker) (string, error) {
	return o.script(ctx, broker)
}

// remindDelinquents mirrors what the real oracle is instructed to do.
func remindDelinquents() *scriptedOracle {
	return &scriptedOracle{script: func(ctx context.Context, broker *ToolBroker) (string, error) {
		for _, m := range broker.digest.Delinquents() {
			if _, err := broker.SendReminder(ctx, m.MemberID, "We missed you on "+m.MissedWeekday+", "+m.MemberName+"!"); err != nil {
				return "", err
			}
		}
		return "done", nil
	}}
}

// weeklyBookings seeds one booking per week on the given weekday, newest
// first, optionally omitting the most recent occurrence.
func weeklyBookings(memberID, contact, venue string, wd time.Weekday, weeks int, skipLatest bool, today time.Time) []models.Booking {
	latest := utils.MostRecentWeekday(utils.UTCDay(today), wd)
	var out []models.Booking
	for offset := 0; offset < weeks; offset++ {
		if skipLatest && offset == 0 {
			continue
		}
		b := booking(memberID, latest.AddDate(0, 0, -7*offset), venue, true)
		b.ContactAddress = contact
		out = append(out, b)
	}
	return out
}

func newStreak(store BookingStore, audit DispatchAudit, oracle Oracle, budget int) *StreakService {
	return NewStreakService(store, NewDispatcher(nil, audit), oracle, StreakConfig{
		LookbackDays: 30,
		Pattern:      DefaultPatternConfig(),
		OracleBudget: budget,
		PortalURL:    "https://example.com/book",
	})
}

func TestRunRemindsLapsedRegular(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_lara", "whatsapp:+15550000002", "Court B", time.Tuesday, 10, true, today)}
	audit := &memoryAudit{}

	report := newStreak(store, audit, remindDelinquents(), 16).Run(context.Background())

	if report.Outcome != RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", report.Outcome, report.Detail)
	}
	if report.Dispatches != 1 {
		t.Fatalf("expected one dispatch, got %d", report.Dispatches)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit record, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.MemberID != "demo_lara" {
		t.Errorf("reminder went to %s, expected demo_lara", entry.MemberID)
	}
	if entry.Outcome != models.DispatchSimulated && entry.Outcome != models.DispatchSent {
		t.Errorf("unexpected outcome %s", entry.Outcome)
	}
}

func TestRunUnbrokenStreakDispatchesNothing(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_sri", "whatsapp:+15550000001", "Court A", time.Monday, 10, false, today)}
	audit := &memoryAudit{}

	report := newStreak(store, audit, remindDelinquents(), 16).Run(context.Background())

	if report.Outcome != RunCompleted {
		t.Fatalf("expected completed run, got %s", report.Outcome)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("unbroken streak produced %d dispatch records", len(audit.entries))
	}
}

func TestRunTwiceProducesTwoRecords(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_lara", "whatsapp:+15550000002", "Court B", time.Tuesday, 10, true, today)}
	audit := &memoryAudit{}
	streak := newStreak(store, audit, remindDelinquents(), 16)

	streak.Run(context.Background())
	streak.Run(context.Background())

	// No cross-run dedup: the same lapsed member is reminded again.
	if len(audit.entries) != 2 {
		t.Fatalf("expected two independent audit records, got %d", len(audit.entries))
	}
}

func TestRunWithinRunDedup(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_lara", "whatsapp:+15550000002", "Court B", time.Tuesday, 10, true, today)}
	audit := &memoryAudit{}

	oracle := &scriptedOracle{script: func(ctx context.Context, broker *ToolBroker) (string, error) {
		if _, err := broker.SendReminder(ctx, "demo_lara", "first nudge"); err != nil {
			return "", err
		}
		res, err := broker.SendReminder(ctx, "demo_lara", "second nudge")
		if err != nil {
			return "", err
		}
		if !strings.Contains(res, "already reminded") {
			t.Errorf("second send not coalesced: %q", res)
		}
		return "done", nil
	}}

	report := newStreak(store, audit, oracle, 16).Run(context.Background())

	if report.Outcome != RunCompleted {
		t.Fatalf("expected completed run, got %s", report.Outcome)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("within-run duplicate reached the dispatcher: %d records", len(audit.entries))
	}
}

func TestRunBudgetExceeded(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_lara", "whatsapp:+15550000002", "Court B", time.Tuesday, 10, true, today)}
	audit := &memoryAudit{}

	oracle := &scriptedOracle{script: func(ctx context.Context, broker *ToolBroker) (string, error) {
		for {
			if _, err := broker.GetBookingHistory(ctx, "", 30); err != nil {
				return "", err
			}
		}
	}}

	report := newStreak(store, audit, oracle, 2).Run(context.Background())

	if report.Outcome != RunCompletedWithErrors {
		t.Fatalf("expected completed-with-errors, got %s", report.Outcome)
	}
	if !strings.Contains(report.Detail, "budget") {
		t.Errorf("report detail does not mention the budget: %q", report.Detail)
	}
	if report.ToolCalls != 3 {
		t.Errorf("expected the third call to blow a budget of 2, counted %d", report.ToolCalls)
	}
}

func TestRunStoreUnreachable(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	audit := &memoryAudit{}

	report := newStreak(store, audit, remindDelinquents(), 16).Run(context.Background())

	if report.Outcome != RunErrored {
		t.Fatalf("expected errored run, got %s", report.Outcome)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("errored run still dispatched %d reminders", len(audit.entries))
	}
}

func TestRunWithoutOracleOnlyLogs(t *testing.T) {
	today := time.Now()
	store := &fakeStore{bookings: weeklyBookings(
		"demo_lara", "whatsapp:+15550000002", "Court B", time.Tuesday, 10, true, today)}
	audit := &memoryAudit{}

	report := newStreak(store, audit, nil, 16).Run(context.Background())

	if report.Outcome != RunCompleted {
		t.Fatalf("expected completed run, got %s", report.Outcome)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("oracle-less run dispatched %d reminders", len(audit.entries))
	}
}
