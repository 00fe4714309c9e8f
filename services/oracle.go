// services/oracle.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"
)

// ErrToolBudget means the oracle tried to invoke more capabilities than a
// single run allows. The run ends "completed with errors" instead of
// retrying indefinitely.
var ErrToolBudget = errors.New("oracle capability budget exceeded")

// Oracle is the external reasoning dependency: given an instruction and a
// digest (already folded into the instruction), it may invoke the broker's
// capabilities zero or more times and finally answers in plain text. The
// workflow prescribes nothing about its internal reasoning.
type Oracle interface {
	Run(ctx context.Context, instruction string, broker *ToolBroker) (string, error)
}

// ToolBroker is the workflow-owned gate between the oracle and the club's
// real capabilities. It enforces the per-run invocation budget and the
// within-run one-reminder-per-member rule; the oracle itself is untrusted
// with both.
type ToolBroker struct {
	store      BookingStore
	dispatcher *Dispatcher
	digest     Digest

	budget       int
	calls        int
	lookbackDays int

	reminded   map[string]bool
	dispatched []DispatchOutcome
}

// DispatchOutcome pairs a reminder intent with what actually happened to it.
type DispatchOutcome struct {
	MemberID string
	Outcome  string
}

func NewToolBroker(store BookingStore, dispatcher *Dispatcher, digest Digest, budget, lookbackDays int) *ToolBroker {
	if budget <= 0 {
		budget = 16
	}
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &ToolBroker{
		store:        store,
		dispatcher:   dispatcher,
		digest:       digest,
		budget:       budget,
		lookbackDays: lookbackDays,
		reminded:     map[string]bool{},
	}
}

func (b *ToolBroker) consume() error {
	b.calls++
	if b.calls > b.budget {
		return ErrToolBudget
	}
	return nil
}

// Calls reports how many capability invocations the oracle has made so far.
func (b *ToolBroker) Calls() int { return b.calls }

// Dispatches returns the outcomes of every send the oracle requested.
func (b *ToolBroker) Dispatches() []DispatchOutcome { return b.dispatched }

// GetBookingHistory renders recent bookings as CSV for the oracle. An empty
// memberID means all members. Data problems come back as readable text, not
// errors — only a blown budget is fatal to the interaction.
func (b *ToolBroker) GetBookingHistory(ctx context.Context, memberID string, days int) (string, error) {
	if err := b.consume(); err != nil {
		return "", err
	}
	if days <= 0 {
		days = b.lookbackDays
	}
	since := utils.UTCDay(time.Now()).AddDate(0, 0, -days)

	var bookings []models.Booking
	var err error
	if memberID != "" {
		bookings, err = b.store.ByMember(ctx, memberID, since)
	} else {
		bookings, err = b.store.Recent(ctx, since, DefaultHistoryLimit)
	}
	if err != nil {
		return fmt.Sprintf("Error fetching data: %v", err), nil
	}
	if len(bookings) == 0 {
		return "No bookings found in database.", nil
	}

	var sb strings.Builder
	sb.WriteString("member_id,member,contact,venue,date,day\n")
	for _, bk := range bookings {
		day := bk.SessionDay()
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s\n",
			bk.MemberID, bk.MemberName, bk.ContactAddress, bk.Venue,
			day.Format("2006-01-02"), day.Weekday())
	}
	return sb.String(), nil
}

// SendReminder routes one reminder intent through the dispatcher. A second
// send to the same member within this run is coalesced into an informative
// no-op so the oracle's own duplicate decisions cannot double-message anyone.
func (b *ToolBroker) SendReminder(ctx context.Context, memberID, message string) (string, error) {
	if err := b.consume(); err != nil {
		return "", err
	}
	if memberID == "" || message == "" {
		return "Error: member_id and message are both required.", nil
	}
	if b.reminded[memberID] {
		return fmt.Sprintf("Member %s was already reminded during this run; not sending again.", memberID), nil
	}

	contact, name, err := b.resolveContact(ctx, memberID)
	if err != nil {
		return fmt.Sprintf("Error: no contact address on record for member %s.", memberID), nil
	}

	entry := b.dispatcher.Dispatch(ctx, memberID, contact, message)
	b.reminded[memberID] = true
	b.dispatched = append(b.dispatched, DispatchOutcome{MemberID: memberID, Outcome: entry.Outcome})

	switch entry.Outcome {
	case models.DispatchSent:
		return fmt.Sprintf("Message sent successfully to %s. SID: %s", name, entry.ConfirmationSID), nil
	case models.DispatchSimulated:
		return fmt.Sprintf("SIMULATION: Message '%s' sent to %s", message, contact), nil
	default:
		return fmt.Sprintf("Failed to send message: %s", entry.ErrorMessage), nil
	}
}

func (b *ToolBroker) resolveContact(ctx context.Context, memberID string) (contact, name string, err error) {
	if m, ok := b.digest.Member(memberID); ok && m.ContactAddress != "" {
		return m.ContactAddress, m.MemberName, nil
	}
	// Member absent from the digest window; fall back to the store.
	since := utils.UTCDay(time.Now()).AddDate(0, 0, -b.lookbackDays*2)
	bookings, err := b.store.ByMember(ctx, memberID, since)
	if err != nil {
		return "", "", err
	}
	if len(bookings) == 0 {
		return "", "", fmt.Errorf("member %s has no booking history", memberID)
	}
	return bookings[0].ContactAddress, bookings[0].MemberName, nil
}
