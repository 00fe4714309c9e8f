// models/booking.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is one attendance record. (member_id, session_date, venue) should
// be unique in practice; the pattern model dedupes on that key so a stray
// duplicate row never double-counts attendance.
type Booking struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MemberID       string    `gorm:"index;not null" json:"memberId"`
	MemberName     string    `gorm:"not null" json:"memberName"`
	ContactAddress string    `gorm:"not null" json:"contactAddress"` // e.g. "whatsapp:+15550000002"
	Venue          string    `gorm:"not null" json:"venue"`
	SessionDate    time.Time `gorm:"index;not null" json:"sessionDate"` // UTC midnight of the day played
	IsRegularSlot  bool      `gorm:"default:true" json:"isRegularSlot"`

	gorm.Model `json:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// SessionDay normalizes the stored timestamp back to a UTC calendar day.
func (b *Booking) SessionDay() time.Time {
	return time.Date(b.SessionDate.Year(), b.SessionDate.Month(), b.SessionDate.Day(), 0, 0, 0, 0, time.UTC)
}
