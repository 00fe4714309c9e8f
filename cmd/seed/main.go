// cmd/seed/main.go
//
// Seeds demo booking data for the streak workflow, or imports a legacy
// JSON export. Skipping a member's latest week manufactures a delinquency
// so the nightly check has someone to remind.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/config"
	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type profile struct {
	MemberID       string
	MemberName     string
	ContactAddress string
	Venue          string
	Weekday        time.Weekday
}

var demoProfiles = []profile{
	{"demo_sri", "Sri Sampath", "whatsapp:+15550000001", "Court A", time.Monday},
	{"demo_lara", "Lara Patel", "whatsapp:+15550000002", "Court B", time.Wednesday},
	{"demo_bia", "Bia Rodrigues", "whatsapp:+15550000003", "Court A", time.Friday},
	{"demo_ken", "Ken Ito", "whatsapp:+15550000004", "Court C", time.Saturday},
}

func main() {
	mockWeeks := flag.Int("mock-weeks", 8, "Weeks of synthetic recurring data to generate")
	skipLatest := flag.String("skip-latest", "demo_lara", "Comma-separated member IDs to skip for the most recent week")
	purge := flag.String("purge-member", "", "Comma-separated member IDs to purge before inserting")
	file := flag.String("file", "", "Path to an exported JSON bookings file")
	dryRun := flag.Bool("dry-run", false, "Parse and preview without writing to the database")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var payload []models.Booking
	if *file != "" {
		log.Printf("Loading seed data from %s", *file)
		imported, err := readExport(*file)
		if err != nil {
			log.Fatalf("Failed to read export: %v", err)
		}
		payload = append(payload, imported...)
	}
	if *mockWeeks > 0 {
		payload = append(payload, generateMock(*mockWeeks, splitIDs(*skipLatest))...)
	}

	if *dryRun {
		log.Printf("Prepared %d records (dry-run).", len(payload))
		if len(payload) > 0 {
			example, _ := json.MarshalIndent(payload[0], "", "  ")
			fmt.Println(string(example))
		}
		return
	}

	config.ConnectDB(cfg.DBURL)
	config.DB.AutoMigrate(&models.Booking{}, &models.DispatchLog{})

	if ids := splitIDs(*purge); len(ids) > 0 {
		result := config.DB.Unscoped().Where("member_id IN ?", ids).Delete(&models.Booking{})
		if result.Error != nil {
			log.Fatalf("Purge failed: %v", result.Error)
		}
		log.Printf("Purged %d existing records for %v", result.RowsAffected, ids)
	}

	if len(payload) == 0 {
		log.Println("No records to insert. Provide -file or set -mock-weeks > 0.")
		return
	}

	inserted := 0
	for _, doc := range payload {
		if upsert(config.DB, doc) {
			inserted++
		}
	}
	log.Printf("Upserted %d booking records", inserted)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func generateMock(weeks int, skipLatest []string) []models.Booking {
	skip := map[string]bool{}
	for _, id := range skipLatest {
		skip[id] = true
	}

	monday := utils.MostRecentWeekday(utils.UTCDay(time.Now()), time.Monday)
	var docs []models.Booking
	for _, p := range demoProfiles {
		for offset := 0; offset < weeks; offset++ {
			if skip[p.MemberID] && offset == 0 {
				continue // leave a gap so the oracle sends a reminder
			}
			dayInWeek := (int(p.Weekday) - int(time.Monday) + 7) % 7
			day := monday.AddDate(0, 0, -7*offset+dayInWeek)
			docs = append(docs, models.Booking{
				MemberID:       p.MemberID,
				MemberName:     p.MemberName,
				ContactAddress: p.ContactAddress,
				Venue:          p.Venue,
				SessionDate:    day,
				IsRegularSlot:  true,
			})
		}
	}
	return docs
}

// exportRecord tolerates the legacy field names of older exports.
type exportRecord struct {
	MemberID       string `json:"member_id"`
	UserID         string `json:"user_id"`
	LegacyID       string `json:"_id"`
	MemberName     string `json:"member_name"`
	UserName       string `json:"user_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ContactAddress string `json:"contact_address"`
	WhatsApp       string `json:"whatsapp_number"`
	Phone          string `json:"phone"`
	Venue          string `json:"venue"`
	CourtName      string `json:"court_name"`
	SessionDate    string `json:"session_date"`
	BookingDate    string `json:"booking_date"`
	Date           string `json:"date"`
	IsRegularSlot  *bool  `json:"is_regular_slot"`
}

func readExport(path string) ([]models.Booking, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []exportRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// Tolerate a single object export
		var one exportRecord
		if err2 := json.Unmarshal(raw, &one); err2 != nil {
			return nil, err
		}
		records = []exportRecord{one}
	}

	var out []models.Booking
	for _, rec := range records {
		booking, err := normalize(rec)
		if err != nil {
			log.Printf("Skipping record due to error: %v", err)
			continue
		}
		out = append(out, booking)
	}
	return out, nil
}

func normalize(rec exportRecord) (models.Booking, error) {
	rawDate := firstNonEmpty(rec.SessionDate, rec.BookingDate, rec.Date)
	if rawDate == "" {
		return models.Booking{}, errors.New("booking date missing")
	}
	day, err := parseDay(rawDate)
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking date invalid: %w", err)
	}

	name := firstNonEmpty(rec.MemberName, rec.UserName, strings.TrimSpace(rec.FirstName+" "+rec.LastName))
	if name == "" {
		name = "Unknown Member"
	}

	memberID := firstNonEmpty(rec.MemberID, rec.UserID, rec.LegacyID)
	if memberID == "" {
		return models.Booking{}, errors.New("member id missing")
	}

	booking := models.Booking{
		MemberID:       memberID,
		MemberName:     name,
		ContactAddress: firstNonEmpty(rec.ContactAddress, rec.WhatsApp, rec.Phone, "whatsapp:+10000000000"),
		Venue:          firstNonEmpty(rec.Venue, rec.CourtName, "Court A"),
		SessionDate:    day,
		IsRegularSlot:  true,
	}
	if rec.IsRegularSlot != nil {
		booking.IsRegularSlot = *rec.IsRegularSlot
	}
	return booking, nil
}

func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return utils.UTCDay(t), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// upsert keys on (member_id, session_date), matching how the legacy data
// was maintained. Returns true when a row was written.
func upsert(db *gorm.DB, doc models.Booking) bool {
	var existing models.Booking
	err := db.Where("member_id = ? AND session_date = ?", doc.MemberID, doc.SessionDate).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(&doc).Error; err != nil {
			log.Printf("Insert failed for %s on %s: %v", doc.MemberID, doc.SessionDate.Format("2006-01-02"), err)
			return false
		}
		return true
	case err != nil:
		log.Printf("Lookup failed for %s: %v", doc.MemberID, err)
		return false
	default:
		updates := map[string]interface{}{
			"member_name":     doc.MemberName,
			"contact_address": doc.ContactAddress,
			"venue":           doc.Venue,
			"is_regular_slot": doc.IsRegularSlot,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			log.Printf("Update failed for %s: %v", doc.MemberID, err)
			return false
		}
		return true
	}
}
