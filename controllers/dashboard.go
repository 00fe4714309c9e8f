// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/services"
	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalBookings    int64                    `json:"totalBookings"`
	TotalMembers     int                      `json:"totalMembers"`
	DelinquentToday  int                      `json:"delinquentToday"`
	Members          []services.MemberPattern `json:"members"`
	RecentDispatches []models.DispatchLog     `json:"recentDispatches"`
}

// DashboardController renders the attendance overview for the admin UI.
type DashboardController struct {
	Store        services.BookingStore
	Pattern      services.PatternConfig
	LookbackDays int
}

func (d *DashboardController) GetOverview(c *gin.Context) {
	now := time.Now()
	since := utils.UTCDay(now).AddDate(0, 0, -d.LookbackDays)

	var totalBookings int64
	config.DB.Model(&models.Booking{}).Where("session_date >= ?", since).Count(&totalBookings)

	bookings, err := d.Store.Recent(c.Request.Context(), since, services.DefaultHistoryLimit)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to read booking history")
		return
	}
	digest := services.BuildDigest(bookings, now, d.Pattern)

	var recent []models.DispatchLog
	config.DB.Order("dispatched_at DESC").Limit(10).Find(&recent)

	overview := DashboardOverview{
		TotalBookings:    totalBookings,
		TotalMembers:     len(digest.Members),
		DelinquentToday:  len(digest.Delinquents()),
		Members:          digest.Members,
		RecentDispatches: recent,
	}

	c.JSON(http.StatusOK, overview)
}
