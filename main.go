package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/routes"
	"github.com/sujalrawat884/BadmintonAIManager/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	config.ConnectDB(cfg.DBURL)
	config.DB.AutoMigrate(
		&models.Booking{},
		&models.DispatchLog{},
	)
	log.Println("✅ Connected to database")

	store := services.NewGormBookingStore(config.DB)
	audit := services.NewGormDispatchAudit(config.DB)

	var channel services.Channel
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		channel = services.NewTwilioChannel(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
	} else {
		log.Println("Twilio credentials absent — dispatcher running in simulation mode")
	}
	dispatcher := services.NewDispatcher(channel, audit)

	var oracle services.Oracle
	if cfg.GeminiAPIKey != "" {
		oracle = services.NewGeminiOracle(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Println("GEMINI_API_KEY absent — nightly check will only log the digest")
	}

	streak := services.NewStreakService(store, dispatcher, oracle, services.StreakConfig{
		LookbackDays: cfg.LookbackDays,
		Pattern:      services.PatternConfig{Weeks: cfg.PatternWeeks, MinSessions: cfg.PatternMinSessions},
		OracleBudget: cfg.OracleMaxToolCalls,
		PortalURL:    cfg.BookingPortalURL,
	})

	scheduler := services.NewDailyCheck(streak.Run, time.Duration(cfg.RunTimeoutMin)*time.Minute)
	if err := scheduler.Start(cfg.DailyCheckHour, cfg.DailyCheckMinute); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	r := routes.SetupRouter(cfg, scheduler, store)
	printRoutes(r)
	r.Run(":" + cfg.Port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
