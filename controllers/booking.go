// controllers/booking.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/gin-gonic/gin"
)

// CreateBookingInput defines the expected JSON structure
type CreateBookingInput struct {
	MemberID       string `json:"memberId" binding:"required"`
	MemberName     string `json:"memberName" binding:"required"`
	ContactAddress string `json:"contactAddress" binding:"required"`
	Venue          string `json:"venue" binding:"required"`
	SessionDate    string `json:"sessionDate" binding:"required"` // YYYY-MM-DD
	IsRegularSlot  *bool  `json:"isRegularSlot"`
}

// CreateBooking records one attendance booking
func CreateBooking(c *gin.Context) {
	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidateContactAddress(input.ContactAddress) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact address format")
		return
	}

	day, err := time.ParseInLocation("2006-01-02", input.SessionDate, time.UTC)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "sessionDate must be YYYY-MM-DD")
		return
	}

	booking := models.Booking{
		MemberID:       input.MemberID,
		MemberName:     input.MemberName,
		ContactAddress: input.ContactAddress,
		Venue:          input.Venue,
		SessionDate:    day,
		IsRegularSlot:  true,
	}
	if input.IsRegularSlot != nil {
		booking.IsRegularSlot = *input.IsRegularSlot
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": booking.ID, "message": "Booking confirmed"})
}

// GetBookings lists bookings newest first, optionally filtered by member
// and lookback days.
func GetBookings(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	query := config.DB.Model(&models.Booking{}).Order("session_date DESC").Limit(limit)

	if memberID := c.Query("member_id"); memberID != "" {
		query = query.Where("member_id = ?", memberID)
	}
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		since := utils.UTCDay(time.Now()).AddDate(0, 0, -days)
		query = query.Where("session_date >= ?", since)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}
