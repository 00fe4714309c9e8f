package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sujalrawat884/BadmintonAIManager/models"
)

type memoryAudit struct {
	entries []models.DispatchLog
	fail    error
}

func (m *memoryAudit) Record(_ context.Context, entry *models.DispatchLog) error {
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, *entry)
	return nil
}

// flakyChannel fails for specific addresses and succeeds for the rest.
type flakyChannel struct {
	failFor map[string]error
	sent    []string
}

func (f *flakyChannel) Send(to, body string) (string, error) {
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, to)
	return "SM" + to, nil
}

func TestDispatcherSimulationMode(t *testing.T) {
	audit := &memoryAudit{}
	d := NewDispatcher(nil, audit)

	if !d.Simulated() {
		t.Fatal("dispatcher with nil channel should report simulation mode")
	}

	entry := d.Dispatch(context.Background(), "demo_lara", "whatsapp:+15550000002", "see you Tuesday")

	if entry.Outcome != models.DispatchSimulated {
		t.Fatalf("expected outcome simulated, got %s", entry.Outcome)
	}
	if entry.Channel != models.ChannelSimulated {
		t.Errorf("expected channel simulated, got %s", entry.Channel)
	}
	if entry.Message != "see you Tuesday" {
		t.Errorf("message not recorded verbatim: %q", entry.Message)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audit.entries))
	}
}

func TestDispatcherPartialFailureIsolation(t *testing.T) {
	audit := &memoryAudit{}
	channel := &flakyChannel{failFor: map[string]error{
		"whatsapp:+15550000001": errors.New("provider rejected number"),
	}}
	d := NewDispatcher(channel, audit)

	a := d.Dispatch(context.Background(), "demo_sri", "whatsapp:+15550000001", "hello A")
	b := d.Dispatch(context.Background(), "demo_lara", "whatsapp:+15550000002", "hello B")

	if a.Outcome != models.DispatchFailed {
		t.Fatalf("expected A to fail, got %s", a.Outcome)
	}
	if a.ErrorMessage == "" {
		t.Error("failed dispatch lost its error reason")
	}
	if b.Outcome != models.DispatchSent {
		t.Fatalf("B should be unaffected by A's failure, got %s", b.Outcome)
	}
	if b.ConfirmationSID == "" {
		t.Error("sent dispatch missing confirmation SID")
	}
	if len(audit.entries) != 2 {
		t.Fatalf("expected two audit rows, got %d", len(audit.entries))
	}
}

func TestDispatcherOneRecordPerAttempt(t *testing.T) {
	audit := &memoryAudit{}
	d := NewDispatcher(nil, audit)

	d.Dispatch(context.Background(), "demo_ken", "whatsapp:+15550000004", "first")
	d.Dispatch(context.Background(), "demo_ken", "whatsapp:+15550000004", "second")

	// The dispatcher never dedupes; that policy lives in the tool broker.
	if len(audit.entries) != 2 {
		t.Fatalf("expected two audit rows for two attempts, got %d", len(audit.entries))
	}
}

func TestDispatcherSurvivesAuditFailure(t *testing.T) {
	audit := &memoryAudit{fail: errors.New("db down")}
	d := NewDispatcher(nil, audit)

	entry := d.Dispatch(context.Background(), "demo_bia", "whatsapp:+15550000003", "hi")
	if entry.Outcome != models.DispatchSimulated {
		t.Fatalf("audit failure corrupted the dispatch outcome: %s", entry.Outcome)
	}
}
