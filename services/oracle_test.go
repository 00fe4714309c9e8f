package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"
)

func TestToolBrokerHistoryCSV(t *testing.T) {
	today := time.Now()
	tue := utils.MostRecentWeekday(utils.UTCDay(today), time.Tuesday)
	store := &fakeStore{bookings: []models.Booking{booking("demo_lara", tue, "Court B", true)}}

	broker := NewToolBroker(store, NewDispatcher(nil, &memoryAudit{}), Digest{}, 16, 30)

	out, err := broker.GetBookingHistory(context.Background(), "", 30)
	if err != nil {
		t.Fatalf("history call failed: %v", err)
	}
	if !strings.HasPrefix(out, "member_id,member,contact,venue,date,day\n") {
		t.Errorf("missing CSV header: %q", out)
	}
	if !strings.Contains(out, "demo_lara") {
		t.Errorf("member row missing: %q", out)
	}
	if !strings.Contains(out, tue.Format("2006-01-02")) {
		t.Errorf("session date missing: %q", out)
	}

	out, err = broker.GetBookingHistory(context.Background(), "nobody", 30)
	if err != nil {
		t.Fatalf("filtered history call failed: %v", err)
	}
	if out != "No bookings found in database." {
		t.Errorf("expected empty-history message, got %q", out)
	}
}

func TestToolBrokerContactFallsBackToStore(t *testing.T) {
	today := time.Now()
	tue := utils.MostRecentWeekday(utils.UTCDay(today), time.Tuesday)
	b := booking("demo_ken", tue, "Court C", true)
	b.ContactAddress = "whatsapp:+15550000004"
	store := &fakeStore{bookings: []models.Booking{b}}
	audit := &memoryAudit{}

	// Empty digest: the member is unknown to this run's window.
	broker := NewToolBroker(store, NewDispatcher(nil, audit), Digest{}, 16, 30)

	res, err := broker.SendReminder(context.Background(), "demo_ken", "come back!")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !strings.Contains(res, "SIMULATION") {
		t.Errorf("expected simulation result, got %q", res)
	}
	if len(audit.entries) != 1 || audit.entries[0].ContactAddress != "whatsapp:+15550000004" {
		t.Fatalf("contact not resolved from store: %+v", audit.entries)
	}
}

func TestToolBrokerUnknownMember(t *testing.T) {
	broker := NewToolBroker(&fakeStore{}, NewDispatcher(nil, &memoryAudit{}), Digest{}, 16, 30)

	res, err := broker.SendReminder(context.Background(), "ghost", "hello?")
	if err != nil {
		t.Fatalf("unknown member should not be fatal: %v", err)
	}
	if !strings.Contains(res, "no contact address") {
		t.Errorf("expected a no-contact explanation, got %q", res)
	}
}

func TestToolBrokerBudget(t *testing.T) {
	broker := NewToolBroker(&fakeStore{}, NewDispatcher(nil, &memoryAudit{}), Digest{}, 1, 30)

	if _, err := broker.GetBookingHistory(context.Background(), "", 30); err != nil {
		t.Fatalf("first call should fit the budget: %v", err)
	}
	if _, err := broker.GetBookingHistory(context.Background(), "", 30); err != ErrToolBudget {
		t.Fatalf("second call should blow a budget of 1, got %v", err)
	}
}
