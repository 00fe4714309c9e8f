// controllers/admin.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/services"
	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/gin-gonic/gin"
)

// AdminController exposes the manual trigger and status surface of the
// daily check scheduler.
type AdminController struct {
	Scheduler *services.DailyCheck
}

// TriggerCheck enqueues a streak check and returns without waiting for it.
// A run already in flight yields 409, per the mutual exclusion guarantee.
func (a *AdminController) TriggerCheck(c *gin.Context) {
	if err := a.Scheduler.Trigger(); err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			utils.RespondWithError(c, http.StatusConflict, "A streak check is already running")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to trigger check")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Streak check triggered in background."})
}

// GetStatus reports scheduler state, next scheduled run, and the last
// run's report.
func (a *AdminController) GetStatus(c *gin.Context) {
	status := a.Scheduler.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"scheduler": status.State,
		"nextRunAt": status.NextRunAt,
		"lastRun":   status.LastRun,
	})
}

// GetDispatchLogs lists recent dispatch audit records, newest first.
func (a *AdminController) GetDispatchLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var logs []models.DispatchLog
	if err := config.DB.Order("dispatched_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve dispatch logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}
