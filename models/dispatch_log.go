// models/dispatch_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dispatch outcomes. Append-only: one row per attempt, duplicates across
// runs included — the workflow never dedupes historical reminders.
const (
	DispatchSent      = "sent"
	DispatchSimulated = "simulated"
	DispatchFailed    = "failed"
)

// Dispatch channels.
const (
	ChannelTwilio    = "twilio"
	ChannelSimulated = "simulated"
)

type DispatchLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MemberID        string    `gorm:"index;not null" json:"memberId"`
	ContactAddress  string    `gorm:"not null" json:"contactAddress"`
	Message         string    `gorm:"type:text" json:"message"`
	Channel         string    `gorm:"type:varchar(20)" json:"channel"` // twilio, simulated
	Outcome         string    `gorm:"type:varchar(20);index" json:"outcome"`
	ConfirmationSID string    `json:"confirmationSid,omitempty"` // provider message SID when available
	ErrorMessage    string    `gorm:"type:text" json:"errorMessage,omitempty"`
	DispatchedAt    time.Time `json:"dispatchedAt"`

	gorm.Model `json:"-"`
}

func (d *DispatchLog) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
