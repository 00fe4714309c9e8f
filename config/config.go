package config

import (
	"github.com/kelseyhightower/envconfig"
)

// App holds every tunable the club manager reads from the environment.
type App struct {
	Port  string `envconfig:"PORT" default:"8080"`
	DBURL string `envconfig:"DB_URL" required:"true"`

	// Decision oracle (Gemini). Empty key disables the oracle and the
	// nightly run only logs the digest.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// Twilio. Leaving SID or token empty switches the dispatcher to
	// simulation mode — a supported operating state, not an error.
	TwilioAccountSID     string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `envconfig:"TWILIO_WHATSAPP_NUMBER" default:"whatsapp:+14155238886"`

	// Daily streak check schedule (local wall clock).
	DailyCheckHour   int `envconfig:"DAILY_CHECK_HOUR" default:"22"`
	DailyCheckMinute int `envconfig:"DAILY_CHECK_MINUTE" default:"0"`

	// Attendance pattern knobs.
	LookbackDays       int `envconfig:"LOOKBACK_DAYS" default:"30"`
	PatternWeeks       int `envconfig:"PATTERN_WEEKS" default:"4"`
	PatternMinSessions int `envconfig:"PATTERN_MIN_SESSIONS" default:"2"`

	// Hardening bounds for a single run.
	OracleMaxToolCalls int `envconfig:"ORACLE_MAX_TOOL_CALLS" default:"16"`
	RunTimeoutMin      int `envconfig:"RUN_TIMEOUT_MIN" default:"5"`

	BookingPortalURL string `envconfig:"BOOKING_PORTAL_URL" default:"https://www.royalbadmintonclub.com/book-court"`

	JWTSecret         string `envconfig:"JWT_SECRET"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
