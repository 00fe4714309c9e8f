// services/history.go
package services

import (
	"context"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"

	"gorm.io/gorm"
)

// DefaultHistoryLimit caps how many rows a single history read returns,
// which also bounds the digest handed to the oracle.
const DefaultHistoryLimit = 200

// BookingStore is the read side of the booking collection as the streak
// workflow sees it. Bookings are written by the intake endpoints and the
// seeder; the workflow never mutates them.
type BookingStore interface {
	// Recent returns bookings for all members with a session date on or
	// after since, newest first. An empty result is not an error.
	Recent(ctx context.Context, since time.Time, limit int) ([]models.Booking, error)
	// ByMember is Recent restricted to a single member.
	ByMember(ctx context.Context, memberID string, since time.Time) ([]models.Booking, error)
}

type GormBookingStore struct {
	db *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{db: db}
}

func (s *GormBookingStore) Recent(ctx context.Context, since time.Time, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("session_date >= ?", since).
		Order("session_date DESC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (s *GormBookingStore) ByMember(ctx context.Context, memberID string, since time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND session_date >= ?", memberID, since).
		Order("session_date DESC").
		Limit(DefaultHistoryLimit).
		Find(&bookings).Error
	return bookings, err
}
