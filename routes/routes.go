package routes

import (
	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/controllers"
	"github.com/sujalrawat884/BadmintonAIManager/services"
	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg config.App, scheduler *services.DailyCheck, store services.BookingStore) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	admin := controllers.AdminController{Scheduler: scheduler}
	dashboard := controllers.DashboardController{
		Store:        store,
		Pattern:      services.PatternConfig{Weeks: cfg.PatternWeeks, MinSessions: cfg.PatternMinSessions},
		LookbackDays: cfg.LookbackDays,
	}

	// Public status probe, shaped like the original root endpoint
	r.GET("/", admin.GetStatus)

	auth := r.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/")
	api.Use(utils.AuthMiddleware())
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", controllers.CreateBooking)
			bookings.GET("", controllers.GetBookings)
		}

		adminRoutes := api.Group("/admin")
		{
			adminRoutes.POST("/trigger-check", admin.TriggerCheck)
			adminRoutes.GET("/status", admin.GetStatus)
			adminRoutes.GET("/dispatch-logs", admin.GetDispatchLogs)
		}

		api.GET("/api/dashboard", dashboard.GetOverview)
	}

	return r
}
