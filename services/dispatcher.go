// services/dispatcher.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"

	"gorm.io/gorm"
)

// DispatchAudit persists one append-only record per dispatch attempt.
type DispatchAudit interface {
	Record(ctx context.Context, entry *models.DispatchLog) error
}

type GormDispatchAudit struct {
	db *gorm.DB
}

func NewGormDispatchAudit(db *gorm.DB) *GormDispatchAudit {
	return &GormDispatchAudit{db: db}
}

func (a *GormDispatchAudit) Record(ctx context.Context, entry *models.DispatchLog) error {
	return a.db.WithContext(ctx).Create(entry).Error
}

// Dispatcher sends a single reminder through the configured channel.
// A nil channel means simulation mode: the message is logged verbatim and
// recorded, no network call happens. Every call produces exactly one audit
// record and never propagates a provider error to the caller — one member's
// delivery failure must not abort reminders to others.
type Dispatcher struct {
	channel Channel
	audit   DispatchAudit
}

func NewDispatcher(channel Channel, audit DispatchAudit) *Dispatcher {
	return &Dispatcher{channel: channel, audit: audit}
}

// Simulated reports whether the dispatcher is running without a real channel.
func (d *Dispatcher) Simulated() bool {
	return d.channel == nil
}

// Dispatch attempts delivery and returns the audit record describing what
// happened. The returned record always carries an outcome, even on failure.
func (d *Dispatcher) Dispatch(ctx context.Context, memberID, contactAddress, message string) models.DispatchLog {
	entry := models.DispatchLog{
		MemberID:       memberID,
		ContactAddress: contactAddress,
		Message:        message,
		DispatchedAt:   time.Now().UTC(),
	}

	if d.channel == nil {
		entry.Channel = models.ChannelSimulated
		entry.Outcome = models.DispatchSimulated
		log.Printf("📢 SIMULATION: reminder for %s (%s): %s", memberID, contactAddress, message)
	} else {
		entry.Channel = models.ChannelTwilio
		sid, err := d.channel.Send(contactAddress, message)
		if err != nil {
			entry.Outcome = models.DispatchFailed
			entry.ErrorMessage = err.Error()
			log.Printf("Failed to send reminder to %s: %v", contactAddress, err)
		} else {
			entry.Outcome = models.DispatchSent
			entry.ConfirmationSID = sid
			log.Printf("Reminder sent to %s, SID: %s", contactAddress, sid)
		}
	}

	if err := d.audit.Record(ctx, &entry); err != nil {
		// The attempt already happened; losing the audit row is logged
		// loudly but cannot be undone by failing the dispatch.
		log.Printf("Failed to record dispatch for member %s: %v", memberID, err)
	}
	return entry
}
